// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appointment

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/platform/validate"
)

// Gate reports who is signed in.
type Gate interface {
	Identity() (userID string, role string, ok bool)
}

// dateLayouts are the date inputs accepted from the booking form.
var dateLayouts = []string{time.DateOnly, time.RFC3339Nano, "2006-01-02T15:04"}

// Service implements appointment use cases.
type Service struct {
	repo   Repository
	gate   Gate
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, gate Gate, logger *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, logger: logger}
}

// # Customer Operations

/*
Book normalises booking and submits it for the signed-in customer.

Description: Names and contact fields are trimmed, the email lower-cased,
the date rewritten as YYYY-MM-DD, the registration upper-cased and a blank
make replaced by [DefaultMake]. A 401 from the API means the session is gone.

Parameters:
  - ctx: context.Context
  - booking: *Appointment

Returns:
  - *Appointment: The stored appointment
  - error: Validation, authentication or remote failures
*/
func (service *Service) Book(ctx context.Context, booking *Appointment) (*Appointment, error) {
	if _, _, ok := service.gate.Identity(); !ok {
		return nil, apperr.AuthRequired(MsgLoginToBook)
	}

	normalized, err := Normalize(booking)
	if err != nil {
		return nil, err
	}

	created, err := service.repo.Create(ctx, normalized)
	if err != nil {
		return nil, bookingFailure(err)
	}

	service.logger.Info("appointment_booked",
		slog.String("appointment_id", created.ID),
		slog.String("service", created.Service),
		slog.String("date", created.Date),
	)
	return created, nil
}

// BookViaChatbot submits a booking without credentials. The payload is forwarded as given.
func (service *Service) BookViaChatbot(ctx context.Context, booking *Appointment) (*Appointment, error) {
	created, err := service.repo.CreateAnonymous(ctx, booking)
	if err != nil {
		return nil, err
	}

	service.logger.Info("appointment_booked_via_chatbot", slog.String("appointment_id", created.ID))
	return created, nil
}

// ListMine returns the signed-in customer's appointments.
func (service *Service) ListMine(ctx context.Context) ([]*Appointment, error) {
	return service.repo.ListMine(ctx)
}

// Get returns one appointment.
func (service *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return service.repo.Get(ctx, id)
}

// Update changes the editable fields of an appointment.
func (service *Service) Update(ctx context.Context, id string, changes *Appointment) (*Appointment, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	updated, err := service.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	service.logger.Info("appointment_updated", slog.String("appointment_id", id))
	return updated, nil
}

// Cancel cancels an appointment.
func (service *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	cancelled, err := service.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	service.logger.Info("appointment_cancelled", slog.String("appointment_id", id))
	return cancelled, nil
}

// Rate attaches a 1..5 rating and an optional comment to an appointment.
func (service *Service) Rate(ctx context.Context, id string, rating int, comment string) (*Appointment, error) {
	validator := &validate.Validator{}
	validator.Required(FieldID, id).Range(FieldRating, rating, MinRating, MaxRating)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	rated, err := service.repo.Rate(ctx, id, rating, strings.TrimSpace(comment))
	if err != nil {
		return nil, err
	}

	service.logger.Info("appointment_rated", slog.String("appointment_id", id), slog.Int("rating", rating))
	return rated, nil
}

// # Admin Operations

// ListAll returns every appointment. Admin only.
func (service *Service) ListAll(ctx context.Context) ([]*Appointment, error) {
	if err := service.requireAdmin(); err != nil {
		return nil, err
	}
	return service.repo.ListAll(ctx)
}

// UpdateStatus moves an appointment through its workflow. Admin only.
func (service *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	if err := service.requireAdmin(); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldID, id).Custom(FieldStatus, !status.Valid(), "Unknown status")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	service.logger.Info("appointment_status_changed",
		slog.String("appointment_id", id),
		slog.String("status", string(status)),
	)
	return updated, nil
}

// Stats summarises appointments by status. Admin only.
func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	if err := service.requireAdmin(); err != nil {
		return nil, err
	}
	return service.repo.Stats(ctx)
}

// # Helpers

/*
Normalize returns a copy of booking in the shape the appointment API expects.

Returns:
  - *Appointment: The normalised copy
  - error: VALIDATION_ERROR if the date cannot be parsed
*/
func Normalize(booking *Appointment) (*Appointment, error) {
	if booking == nil {
		return nil, apperr.ValidationError(MsgBookingInvalid)
	}

	normalized := *booking
	normalized.ID = ""
	normalized.UserID = ""
	normalized.Status = ""

	normalized.CustomerName = validate.Text(booking.CustomerName)
	normalized.Email = validate.EmailAddress(booking.Email)
	normalized.PhoneNumber = strings.TrimSpace(booking.PhoneNumber)

	date, ok := parseDate(booking.Date)
	if !ok {
		return nil, apperr.ValidationError(MsgBookingInvalid, apperr.FieldError{Field: FieldDate, Message: "Invalid date"})
	}
	normalized.Date = date.Format(time.DateOnly)

	normalized.Vehicle.Make = strings.TrimSpace(booking.Vehicle.Make)
	if normalized.Vehicle.Make == "" {
		normalized.Vehicle.Make = DefaultMake
	}
	normalized.Vehicle.Model = strings.TrimSpace(booking.Vehicle.Model)
	normalized.Vehicle.Year = strings.TrimSpace(booking.Vehicle.Year)
	normalized.Vehicle.RegistrationNumber = strings.ToUpper(strings.TrimSpace(booking.Vehicle.RegistrationNumber))

	return &normalized, nil
}

// parseDate accepts a calendar date or a timestamp. Timestamps are read in UTC.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func requireID(id string) error {
	return (&validate.Validator{}).Required(FieldID, id).Err()
}

func (service *Service) requireAdmin() error {
	_, role, ok := service.gate.Identity()
	if !ok {
		return apperr.AuthRequired(apperr.MsgAuthRequired)
	}
	if !sec.UserRole(role).AtLeast(sec.RoleAdmin) {
		return apperr.Forbidden(MsgAdminRequired)
	}
	return nil
}

// bookingFailure turns any 401 into the session-expired prompt and keeps other
// failures, falling back to the booking message for bare 400s.
func bookingFailure(err error) error {
	failure := apperr.As(err)
	if failure == nil {
		return err
	}

	switch {
	case failure.HTTPStatus == http.StatusUnauthorized:
		expired := apperr.WithMessage(apperr.SessionExpired(), MsgSessionExpired)
		expired.Cause = failure
		return expired
	case failure.Code == "BAD_REQUEST" && failure.ServerMessage == "":
		return apperr.WithMessage(failure, MsgBookingInvalid)
	default:
		return failure
	}
}
