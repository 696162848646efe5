package model

import "github.com/google/uuid"

// UsageRecord is the ledger's atomic fact: quantity of one supply used by
// one patient on one day of the month. At most one record exists per
// (patient, supply, day); repeated writes replace the quantity.
type UsageRecord struct {
	Base
	PatientID      uuid.UUID `json:"patientId" db:"patient_id"`
	SupplyID       uuid.UUID `json:"supplyId" db:"supply_id"`
	DayOfMonth     int       `json:"dayOfMonth" db:"day_of_month"`
	Quantity       int       `json:"quantity" db:"quantity"`
	WoundDiagnosis string    `json:"woundDiagnosis,omitempty" db:"wound_diagnosis"`
}

type RecordUsageRequest struct {
	PatientID      string `json:"patientId" binding:"required,uuid"`
	SupplyID       string `json:"supplyId" binding:"required,uuid"`
	DayOfMonth     int    `json:"dayOfMonth" binding:"required"`
	Quantity       *int   `json:"quantity" binding:"required"`
	WoundDiagnosis string `json:"woundDiagnosis"`
}
