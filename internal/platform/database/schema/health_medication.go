// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// MedicationTable represents the 'health.medication' table
type MedicationTable struct {
	Table       string
	ID          string
	UserID      string
	Name        string
	Dosage      string
	Unit        string
	Description string
	IsActive    string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// Medication is the schema definition for health.medication
var Medication = MedicationTable{
	Table:       "health.medication",
	ID:          "id",
	UserID:      "userid",
	Name:        "name",
	Dosage:      "dosage",
	Unit:        "unit",
	Description: "description",
	IsActive:    "isactive",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	DeletedAt:   "deletedat",
}

// Columns returns the columns hydrated into a medication entity, in scan order.
func (t MedicationTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Name, t.Dosage, t.Unit, t.Description,
		t.IsActive, t.CreatedAt, t.UpdatedAt,
	}
}
