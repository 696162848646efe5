package model

// Facility is an organizational site (hospital, clinic) that owns patients
// and scopes non-admin users.
type Facility struct {
	Base
	Name string `json:"name" db:"name"`
}

type CreateFacilityRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateFacilityRequest struct {
	Name string `json:"name" binding:"required"`
}
