// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used in the service layer before any remote call is made.
// A validation failure never reaches the network.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/autocare/internal/platform/apperr"
)

var (
	// emailRegex is deliberately loose: something@something.tld, no whitespace.
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// phoneRegex is the +91 mobile format the booking desk accepts.
	phoneRegex = regexp.MustCompile(`^\+91[0-9]{10}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// Email fails if the value does not look like local@domain.tld.
func (v *Validator) Email(field, value string) *Validator {
	if !emailRegex.MatchString(value) {
		v.add(field, "Please enter a valid email address")
	}
	return v
}

// Phone fails unless the value is +91 followed by ten digits.
// Spaces and hyphens are ignored.
func (v *Validator) Phone(field, value string) *Validator {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(value)
	if !phoneRegex.MatchString(clean) {
		v.add(field, "Phone number must start with +91 followed by 10 digits")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("rating", rating < 1 || rating > 5, "Please select a rating between 1 and 5 stars")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// It is the only output method, so call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(v.errs[0].Message, v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// # Normalisation

// Text trims and NFC-normalises free text so that composed and decomposed
// forms of the same name compare and count equally.
func Text(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// EmailAddress normalises an address the way the remote API stores it.
func EmailAddress(value string) string {
	return strings.ToLower(Text(value))
}
