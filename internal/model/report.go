package model

import "github.com/google/uuid"

// ReportMode tells whether a report was produced by the full aggregation or
// by the reduced fallback query.
type ReportMode string

const (
	ReportModePrimary  ReportMode = "primary"
	ReportModeDegraded ReportMode = "degraded"
)

// DashboardRow is one patient's aggregate line: totals over every usage
// record plus deduplicated diagnosis and code listings. Zero-usage patients
// appear with zero totals.
type DashboardRow struct {
	PatientID    uuid.UUID `json:"patientId" db:"patient_id"`
	PatientName  string    `json:"patientName" db:"patient_name"`
	Month        string    `json:"month" db:"month"`
	MRN          string    `json:"mrn,omitempty" db:"mrn"`
	FacilityName string    `json:"facilityName" db:"facility_name"`
	TotalUnits   int       `json:"totalUnits" db:"total_units"`
	TotalCost    float64   `json:"totalCost" db:"total_cost"`
	Diagnoses    string    `json:"diagnoses" db:"diagnoses"`
	SupplyCodes  string    `json:"supplyCodes" db:"supply_codes"`
	HCPCSCodes   string    `json:"hcpcsCodes" db:"hcpcs_codes"`
}

// ItemizedRow is one (patient, supply) line with nonzero summed quantity.
type ItemizedRow struct {
	PatientID      uuid.UUID `json:"patientId" db:"patient_id"`
	PatientName    string    `json:"patientName" db:"patient_name"`
	Month          string    `json:"month" db:"month"`
	FacilityName   string    `json:"facilityName" db:"facility_name"`
	SupplyCode     string    `json:"supplyCode" db:"supply_code"`
	Description    string    `json:"description" db:"description"`
	HCPCS          string    `json:"hcpcs,omitempty" db:"hcpcs"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitCost       float64   `json:"unitCost" db:"unit_cost"`
	LineCost       float64   `json:"lineCost" db:"line_cost"`
	WoundDiagnosis string    `json:"woundDiagnosis,omitempty" db:"wound_diagnosis"`
}

// ReportFilters narrows report queries. FacilityID nil means every facility
// the identity may see.
type ReportFilters struct {
	FacilityID *uuid.UUID
	Month      string
}
