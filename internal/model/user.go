package model

import "github.com/google/uuid"

// User is an account holder. Non-admin users are scoped to exactly one
// facility; unapproved users cannot authenticate.
type User struct {
	Base
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	FacilityID   *uuid.UUID `json:"facilityId,omitempty" db:"facility_id"`
	IsApproved   bool       `json:"isApproved" db:"is_approved"`
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FacilityID string `json:"facilityId" binding:"required,uuid"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
