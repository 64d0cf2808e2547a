// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package medication manages the medication records a member keeps.

Every record belongs to exactly one account and every operation is scoped to
the authenticated caller: a record owned by someone else is reported as not
found. Records are soft-deleted so a name can be reused afterwards.
*/
package medication

import "time"

// # Domain Entities

// Medication is a single medication a member takes or used to take.
type Medication struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Dosage      *int      `json:"dosage"`
	Unit        string    `json:"unit"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter narrows a medication listing.
type Filter struct {
	UserID   string
	IsActive *bool // nil lists both
}

// CreateInput holds the fields accepted when recording a medication.
type CreateInput struct {
	Name        string `json:"name"`
	Dosage      *int   `json:"dosage"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string `json:"name"`
	Dosage      *int    `json:"dosage"`
	Unit        *string `json:"unit"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Field names used in validation errors.
const (
	FieldName        = "name"
	FieldDosage      = "dosage"
	FieldUnit        = "unit"
	FieldDescription = "description"
	FieldIsActive    = "is_active"
)

const (
	nameMaxLength        = 255
	unitMaxLength        = 50
	descriptionMaxLength = 1000
)

// Messages.
const (
	MsgCreated       = "Medication created successfully"
	MsgUpdated       = "Medication updated successfully"
	MsgDeleted       = "Medication deleted successfully"
	MsgDuplicateName = "A medication with this name already exists"
)
