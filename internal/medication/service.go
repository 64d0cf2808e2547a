// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package medication

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/ctxutil"
	"github.com/taibuivan/healthlog/internal/platform/validate"
	"github.com/taibuivan/healthlog/pkg/pagination"
	"github.com/taibuivan/healthlog/pkg/pointer"
	"github.com/taibuivan/healthlog/pkg/uuid"
)

// Service applies validation and ownership rules on top of a [Repository].
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a medication [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: time.Now}
}

// List returns one page of the caller's medications.
func (service *Service) List(context context.Context, userID string, isActive *bool, params pagination.Params) (pagination.Page[*Medication], error) {
	items, total, err := service.repository.List(context, Filter{UserID: userID, IsActive: isActive}, params.Limit, params.Offset())
	if err != nil {
		return pagination.Page[*Medication]{}, fmt.Errorf("medication_service_list_failed: %w", err)
	}
	return pagination.NewPage(items, params, total), nil
}

// Get returns a single medication of the caller.
func (service *Service) Get(context context.Context, userID, id string) (*Medication, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound(resourceMedication)
	}
	return service.repository.FindByID(context, userID, id)
}

/*
Create validates and records a new medication for userID.

Description: Records are active unless the caller says otherwise. Names are
trimmed before the uniqueness check.

Parameters:
  - context: context.Context
  - userID: string (owner)
  - input: CreateInput

Returns:
  - *Medication: Created entity
  - error: ValidationError, Conflict or storage errors
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Medication, error) {
	name := strings.TrimSpace(input.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, nameMaxLength)
	checkDetails(validator, input.Dosage, input.Unit, input.Description)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := service.now().UTC()
	medication := &Medication{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Dosage:      input.Dosage,
		Unit:        strings.TrimSpace(input.Unit),
		Description: input.Description,
		IsActive:    pointer.Or(input.IsActive, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.repository.Create(context, medication); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "medication_created",
		slog.String("user_id", userID), slog.String("medication_id", medication.ID))
	return medication, nil
}

/*
Update applies a partial update to a medication of userID.

Parameters:
  - context: context.Context
  - userID: string (owner)
  - id: string
  - input: UpdateInput (nil fields untouched)

Returns:
  - *Medication: Updated entity
  - error: ValidationError ("No fields to update" on an empty patch), NotFound, Conflict
*/
func (service *Service) Update(context context.Context, userID, id string, input UpdateInput) (*Medication, error) {
	if pointer.AllNil(input.Name, input.Dosage, input.Unit, input.Description, input.IsActive) {
		return nil, validate.ErrNoFieldsToUpdate
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
		validator.Required(FieldName, trimmed).MaxLen(FieldName, trimmed, nameMaxLength)
	}
	checkDetails(validator, input.Dosage, pointer.Val(input.Unit), pointer.Val(input.Description))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	medication, err := service.Get(context, userID, id)
	if err != nil {
		return nil, err
	}

	medication.Name = pointer.Or(input.Name, medication.Name)
	if input.Dosage != nil {
		medication.Dosage = input.Dosage
	}
	if input.Unit != nil {
		medication.Unit = strings.TrimSpace(*input.Unit)
	}
	medication.Description = pointer.Or(input.Description, medication.Description)
	medication.IsActive = pointer.Or(input.IsActive, medication.IsActive)

	if err := service.repository.Update(context, medication); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "medication_updated",
		slog.String("user_id", userID), slog.String("medication_id", id))
	return medication, nil
}

// Delete soft-deletes a medication of userID.
func (service *Service) Delete(context context.Context, userID, id string) error {
	if !uuid.IsValid(id) {
		return apperr.NotFound(resourceMedication)
	}
	if err := service.repository.SoftDelete(context, userID, id); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "medication_deleted",
		slog.String("user_id", userID), slog.String("medication_id", id))
	return nil
}

// checkDetails validates the optional descriptive fields.
func checkDetails(validator *validate.Validator, dosage *int, unit, description string) {
	if dosage != nil {
		validator.NonNegative(FieldDosage, float64(*dosage))
	}
	validator.MaxLen(FieldUnit, unit, unitMaxLength).
		MaxLen(FieldDescription, description, descriptionMaxLength)
}
