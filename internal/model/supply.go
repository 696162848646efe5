package model

// Supply is a billable wound-care item identified by a stable code.
type Supply struct {
	Base
	Code        string  `json:"code" db:"code"`
	Description string  `json:"description" db:"description"`
	HCPCS       string  `json:"hcpcs,omitempty" db:"hcpcs"`
	UnitCost    float64 `json:"unitCost" db:"unit_cost"`
	IsCustom    bool    `json:"isCustom" db:"is_custom"`
}

type CreateSupplyRequest struct {
	Code        string  `json:"code" binding:"required"`
	Description string  `json:"description" binding:"required"`
	HCPCS       string  `json:"hcpcs"`
	UnitCost    float64 `json:"unitCost" binding:"min=0"`
}

type UpdateSupplyRequest struct {
	Description string  `json:"description" binding:"required"`
	HCPCS       string  `json:"hcpcs"`
	UnitCost    float64 `json:"unitCost" binding:"min=0"`
}

// RetireSuppliesRequest names an inclusive code range to remove, together
// with every usage row that references it.
type RetireSuppliesRequest struct {
	CodeStart string `json:"codeStart" binding:"required"`
	CodeEnd   string `json:"codeEnd" binding:"required"`
}

// RetireSuppliesResult reports what the retirement transaction removed.
type RetireSuppliesResult struct {
	SuppliesDeleted int `json:"suppliesDeleted"`
	UsageDeleted    int `json:"usageDeleted"`
}
