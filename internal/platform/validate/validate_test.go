// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/validate"
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
		{"valid_string", "name", "Ravi", false},
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
				assert.Equal(t, apperr.KindValidation, ae.Kind)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the loose local@domain.tld rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"plus_alias", "ravi+garage@example.co.in", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"missing_tld", "test@example", false},
		{"inner_space", "te st@example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Phone checks the +91 rule and separator tolerance.
*/
func TestValidator_Phone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		isValid bool
	}{
		{"compact", "+919876543210", true},
		{"separated", "+91 98765-43210", true},
		{"missing_prefix", "9876543210", false},
		{"too_short", "+91987654321", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Phone("phone", tt.phone)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").                // Fails
		MinLen("password", "abc", 6).        // Fails
		Email("email", "not-an-email").      // Fails
		Range("rating", 3, 1, 5).            // Passes
		Custom("terms", false, "must tick"). // Passes
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "This field is required", ae.Message)
}

/*
TestNormalisation verifies trimming, case folding and NFC composition.
*/
func TestNormalisation(t *testing.T) {
	assert.Equal(t, "ravi@example.com", validate.EmailAddress("  Ravi@Example.COM "))

	decomposed := "José"
	assert.Equal(t, "José", validate.Text(decomposed))

	v := &validate.Validator{}
	v.MinLen("name", validate.Text("É"), 2)
	assert.True(t, v.HasErrors(), "a composed single rune must count once")
}
