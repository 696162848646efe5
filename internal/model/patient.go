package model

import "github.com/google/uuid"

// Patient is a per-month registration scoped to a facility. The same name
// cannot be registered twice in the same facility for the same month.
type Patient struct {
	Base
	Name       string    `json:"name" db:"name"`
	Month      string    `json:"month" db:"month"`
	MRN        string    `json:"mrn,omitempty" db:"mrn"`
	FacilityID uuid.UUID `json:"facilityId" db:"facility_id"`
}

type CreatePatientRequest struct {
	Name       string `json:"name" binding:"required"`
	Month      string `json:"month" binding:"required"`
	MRN        string `json:"mrn"`
	FacilityID string `json:"facilityId" binding:"required,uuid"`
}

type UpdatePatientRequest struct {
	Name  string `json:"name" binding:"required"`
	Month string `json:"month" binding:"required"`
	MRN   string `json:"mrn"`
}

// PatientFilters narrows patient listings.
type PatientFilters struct {
	FacilityID *uuid.UUID
	Month      string
}
