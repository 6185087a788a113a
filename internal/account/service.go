// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/autocare/internal/appointment"
	"github.com/taibuivan/autocare/internal/order"
	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/platform/validate"
	"github.com/taibuivan/autocare/internal/session"
	"github.com/taibuivan/autocare/pkg/pointer"
	"github.com/taibuivan/autocare/pkg/slice"
)

// Sessions is the view of the session manager the account area needs.
type Sessions interface {
	Identity() (userID string, role string, ok bool)
	User() *session.User
	UpdateUser(ctx context.Context, user *session.User) error
	Adopt(ctx context.Context, token string) (*session.User, error)
}

// AppointmentLister lists the signed-in customer's appointments.
type AppointmentLister interface {
	ListMine(ctx context.Context) ([]*appointment.Appointment, error)
}

// OrderLister lists the signed-in customer's orders.
type OrderLister interface {
	ListMine(ctx context.Context) ([]*order.Order, error)
}

// Service implements account use cases.
type Service struct {
	sessions     Sessions
	repo         Repository
	appointments AppointmentLister
	orders       OrderLister
	logger       *slog.Logger
}

// NewService constructs a new [Service].
func NewService(sessions Sessions, repo Repository, appointments AppointmentLister, orders OrderLister, logger *slog.Logger) *Service {
	return &Service{sessions: sessions, repo: repo, appointments: appointments, orders: orders, logger: logger}
}

// # Profile

// Profile returns the cached session user, asking the API only when none is cached.
func (service *Service) Profile(ctx context.Context) (*session.User, error) {
	if _, _, ok := service.sessions.Identity(); !ok {
		return nil, apperr.AuthRequired(apperr.MsgAuthRequired)
	}
	if user := service.sessions.User(); user != nil {
		return user, nil
	}
	return service.repo.Me(ctx)
}

/*
UpdateProfile saves a partial profile edit and replaces the cached user with
the API's answer.

Returns:
  - *session.User: The updated user
  - error: AUTH_REQUIRED, VALIDATION_ERROR or a remote failure
*/
func (service *Service) UpdateProfile(ctx context.Context, update *ProfileUpdate) (*session.User, error) {
	if _, _, ok := service.sessions.Identity(); !ok {
		return nil, apperr.AuthRequired(apperr.MsgAuthRequired)
	}
	if update == nil {
		update = &ProfileUpdate{}
	}

	cleaned := ProfileUpdate{}
	validator := &validate.Validator{}
	if update.Name != nil {
		name := validate.Text(*update.Name)
		validator.Required(FieldName, name).MinLen(FieldName, name, session.MinNameLength)
		cleaned.Name = pointer.To(name)
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		if phone != "" {
			validator.Phone(FieldPhone, phone)
		}
		cleaned.Phone = pointer.To(phone)
	}
	if update.Address != nil {
		cleaned.Address = pointer.To(validate.Text(*update.Address))
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.repo.UpdateMe(ctx, &cleaned)
	if err != nil {
		return nil, err
	}

	if err := service.sessions.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	service.logger.Info("profile_updated", slog.String("user_id", user.ID))
	return user.Clone(), nil
}

// # Dashboard

/*
Dashboard loads appointments and orders concurrently and computes the counters.

Description: A section that fails to load is returned empty with its message
in [Dashboard.Problems]. A failure that ends or requires the session aborts the
whole dashboard.

Returns:
  - *Dashboard
  - error: AUTH_REQUIRED or SESSION_EXPIRED
*/
func (service *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if _, _, ok := service.sessions.Identity(); !ok {
		return nil, apperr.AuthRequired(apperr.MsgAuthRequired)
	}

	var (
		appointments        []*appointment.Appointment
		orders              []*order.Order
		appointmentsProblem error
		ordersProblem       error
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		appointments, err = service.appointments.ListMine(groupCtx)
		if sessionLost(err) {
			return err
		}
		appointmentsProblem = err
		return nil
	})

	group.Go(func() error {
		var err error
		orders, err = service.orders.ListMine(groupCtx)
		if sessionLost(err) {
			return err
		}
		ordersProblem = err
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Appointments: appointments,
		Orders:       orders,
	}
	dashboard.addProblem(SectionAppointments, appointmentsProblem)
	dashboard.addProblem(SectionOrders, ordersProblem)

	if dashboard.Appointments == nil {
		dashboard.Appointments = []*appointment.Appointment{}
	}
	if dashboard.Orders == nil {
		dashboard.Orders = []*order.Order{}
	}

	dashboard.Stats = computeStats(dashboard.Appointments, dashboard.Orders)
	return dashboard, nil
}

func (dashboard *Dashboard) addProblem(section string, err error) {
	if err == nil {
		return
	}
	if dashboard.Problems == nil {
		dashboard.Problems = make(map[string]string)
	}
	dashboard.Problems[section] = err.Error()
	if section == SectionAppointments {
		dashboard.Appointments = nil
	} else {
		dashboard.Orders = nil
	}
}

func computeStats(appointments []*appointment.Appointment, orders []*order.Order) Stats {
	return Stats{
		TotalBookings: len(appointments),
		CompletedServices: slice.Count(appointments, func(booked *appointment.Appointment) bool {
			return booked.Status == appointment.StatusCompleted
		}),
		TotalOrders: len(orders),
		TotalSpent: slice.Reduce(orders, 0.0, func(total float64, placed *order.Order) float64 {
			return total + placed.TotalAmount
		}),
	}
}

// sessionLost reports whether err means the customer is no longer signed in.
func sessionLost(err error) bool {
	failure := apperr.As(err)
	return failure != nil && (failure.Kind == apperr.KindAuthenticationRejected || failure.RequiresAuth)
}

// # Password Reset

// RequestPasswordReset asks the API to email a reset link. No session is needed.
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = validate.EmailAddress(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return "", err
	}

	message, err := service.repo.RequestPasswordReset(ctx, email)
	if err != nil {
		return "", err
	}
	if message == "" {
		message = MsgResetRequested
	}

	service.logger.Info("password_reset_requested")
	return message, nil
}

/*
ResetPassword sets a new password with the emailed token and signs the
customer in with the credential the API returns.

Returns:
  - *session.User: The signed-in user
  - error: VALIDATION_ERROR, or the remote failure with the reset fallback message
*/
func (service *Service) ResetPassword(ctx context.Context, token, password string) (*session.User, error) {
	token = strings.TrimSpace(token)

	validator := &validate.Validator{}
	validator.Required(FieldToken, token).MinLen(FieldPassword, password, sec.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	issued, err := service.repo.ResetPassword(ctx, token, password)
	if err != nil {
		return nil, resetFailure(err)
	}

	user, err := service.sessions.Adopt(ctx, issued)
	if err != nil {
		return nil, err
	}

	service.logger.Info("password_reset", slog.String("user_id", user.ID))
	return user, nil
}

// resetFailure keeps connection errors and server messages, and replaces anything else with the reset fallback.
func resetFailure(err error) error {
	failure := apperr.As(err)
	if failure == nil || failure.Kind == apperr.KindConnection || failure.ServerMessage != "" {
		return err
	}
	return apperr.WithMessage(failure, MsgResetFailed)
}
