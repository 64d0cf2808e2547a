// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/healthlog/internal/platform/apperr"
	"github.com/taibuivan/healthlog/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Aspirin", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_NumericRules checks NonNegative and UUID.
*/
func TestValidator_NumericRules(t *testing.T) {
	v := &validate.Validator{}
	v.NonNegative("dosage", 0).NonNegative("dosage", 2.5)
	assert.False(t, v.HasErrors())

	v.NonNegative("dosage", -0.1).UUID("id", "not-a-uuid")
	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 2)
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "Aspirin").
		MinLen("name", "Aspirin", 1).
		MaxLen("name", "Aspirin", 255).
		OneOf("unit", "mg", "mg", "ml").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").
		MinLen("name", "", 1).
		OneOf("unit", "stone", "mg").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "Validation failed", ae.Message)
}

/*
TestValidator_SingleFailureKeepsMessage surfaces the concrete reason.
*/
func TestValidator_SingleFailureKeepsMessage(t *testing.T) {
	err := (&validate.Validator{}).MaxLen("unit", "milligrams-per-kilogram-per-day-and-then-some-more-text", 50).Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Maximum 50 characters", ae.Message)
}

/*
TestValidator_Merge folds value-object failures into the collector.
*/
func TestValidator_Merge(t *testing.T) {
	v := &validate.Validator{}

	v.Merge("email", nil)
	assert.False(t, v.HasErrors())

	v.Merge("email", apperr.FieldInvalid("email", "Email format is invalid"))
	v.Merge("nickname", errors.New("boom"))

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 2)
	assert.Equal(t, "email", ae.Details[0].Field)
	assert.Equal(t, "nickname", ae.Details[1].Field)
	assert.Equal(t, "boom", ae.Details[1].Message)
}
