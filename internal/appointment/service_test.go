// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appointment_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/appointment"
	"github.com/taibuivan/autocare/internal/authtest"
	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/session"
)

const password = "secret-42"

type fixture struct {
	fake    *authtest.Server
	manager *session.Manager
	service *appointment.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fake := authtest.New(t)
	fake.Seed(t, "Asha Rao", "asha@example.com", password, string(sec.RoleCustomer))
	fake.Seed(t, "Ravi Admin", "ravi@example.com", password, string(sec.RoleAdmin))

	auth := session.NewAuthAPI(apiclient.New(fake.AuthURL()))
	manager := session.NewManager(session.NewMemoryStore(), auth, session.WithLogger(logging.Discard()))

	client := apiclient.New(fake.AppointmentsURL(), apiclient.WithTransport(session.NewTransport(manager, nil)))
	anonymous := apiclient.New(fake.AppointmentsURL())
	service := appointment.NewService(appointment.NewRemoteRepository(client, anonymous), manager, logging.Discard())

	return &fixture{fake: fake, manager: manager, service: service}
}

func (f *fixture) login(t *testing.T, email string) {
	t.Helper()
	_, err := f.manager.Login(context.Background(), email, password)
	require.NoError(t, err)
}

func booking() *appointment.Appointment {
	return &appointment.Appointment{
		CustomerName: "  Asha Rao ",
		Email:        " Asha@Example.COM ",
		PhoneNumber:  " 0400 000 000 ",
		Service:      "Oil Change",
		Date:         "2026-11-03T09:30:00.000Z",
		Time:         "09:30",
		Vehicle:      appointment.Vehicle{Model: "Corolla", Year: "2019", RegistrationNumber: " abc-123 "},
	}
}

/*
TestNormalize verifies the booking shape sent to the API.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		make     string
		wantDate string
		wantMake string
		wantErr  bool
	}{
		{"calendar_date", "2026-11-03", "Toyota", "2026-11-03", "Toyota", false},
		{"iso_timestamp", "2026-11-03T09:30:00.000Z", "", "2026-11-03", appointment.DefaultMake, false},
		{"local_datetime", "2026-11-03T09:30", "  ", "2026-11-03", appointment.DefaultMake, false},
		{"garbage_date", "next tuesday", "Toyota", "", "", true},
		{"empty_date", "", "Toyota", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := booking()
			input.Date = tt.date
			input.Vehicle.Make = tt.make

			normalized, err := appointment.Normalize(input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, normalized.Date)
			assert.Equal(t, tt.wantMake, normalized.Vehicle.Make)
			assert.Equal(t, "Asha Rao", normalized.CustomerName)
			assert.Equal(t, "asha@example.com", normalized.Email)
			assert.Equal(t, "0400 000 000", normalized.PhoneNumber)
			assert.Equal(t, "ABC-123", normalized.Vehicle.RegistrationNumber)
		})
	}
}

/*
TestNormalize_DoesNotMutateInput verifies the caller's booking is left alone.
*/
func TestNormalize_DoesNotMutateInput(t *testing.T) {
	input := booking()
	input.ID = "client-supplied"

	normalized, err := appointment.Normalize(input)
	require.NoError(t, err)

	assert.Empty(t, normalized.ID)
	assert.Equal(t, "client-supplied", input.ID)
	assert.Equal(t, "  Asha Rao ", input.CustomerName)
}

/*
TestService_Book covers the signed-in booking path.
*/
func TestService_Book(t *testing.T) {
	f := newFixture(t)
	f.login(t, "asha@example.com")

	created, err := f.service.Book(context.Background(), booking())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, appointment.StatusPending, created.Status)
	assert.Equal(t, "2026-11-03", created.Date)
	assert.Equal(t, appointment.DefaultMake, created.Vehicle.Make)

	mine, err := f.service.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
}

/*
TestService_Book_Anonymous verifies booking is refused before any network call.
*/
func TestService_Book_Anonymous(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), booking())
	require.Error(t, err)

	failure := apperr.As(err)
	require.NotNil(t, failure)
	assert.Equal(t, appointment.MsgLoginToBook, failure.Message)
	assert.True(t, failure.RequiresAuth)
	assert.Empty(t, f.fake.Appointments())
}

/*
TestService_Book_SessionRejected verifies a dead token tears the session down
and surfaces the booking-specific expiry message.
*/
func TestService_Book_SessionRejected(t *testing.T) {
	f := newFixture(t)
	f.login(t, "asha@example.com")
	f.fake.RejectTokens(true)

	_, err := f.service.Book(context.Background(), booking())
	require.Error(t, err)

	failure := apperr.As(err)
	require.NotNil(t, failure)
	assert.Equal(t, appointment.MsgSessionExpired, failure.Message)
	assert.Equal(t, http.StatusUnauthorized, failure.HTTPStatus)
	assert.True(t, failure.RequiresAuth)
	assert.False(t, f.manager.IsAuthenticated())
}

/*
TestService_Book_Outage verifies a server fault keeps the session.
*/
func TestService_Book_Outage(t *testing.T) {
	f := newFixture(t)
	f.login(t, "asha@example.com")
	f.fake.SetOutage(true)

	_, err := f.service.Book(context.Background(), booking())
	require.Error(t, err)

	assert.True(t, apperr.IsKind(err, apperr.KindServerFault))
	assert.Equal(t, apperr.MsgServerFault, err.Error())
	assert.True(t, f.manager.IsAuthenticated())
}

/*
TestService_BookViaChatbot verifies the anonymous path sends no credential.
*/
func TestService_BookViaChatbot(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.BookViaChatbot(context.Background(), booking())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	stored := f.fake.Appointments()
	require.Len(t, stored, 1)
	assert.NotContains(t, stored[0], "userId")
}

/*
TestService_Lifecycle walks an appointment through edit, rating and cancellation.
*/
func TestService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	f.login(t, "asha@example.com")
	ctx := context.Background()

	created, err := f.service.Book(ctx, booking())
	require.NoError(t, err)

	// 1. Edit
	changes := &appointment.Appointment{Time: "14:00", Message: "Please check brakes"}
	updated, err := f.service.Update(ctx, created.ID, changes)
	require.NoError(t, err)
	assert.Equal(t, "14:00", updated.Time)
	assert.Equal(t, "Please check brakes", updated.Message)

	// 2. Rate
	rated, err := f.service.Rate(ctx, created.ID, 5, "  Great work ")
	require.NoError(t, err)
	assert.Equal(t, 5, rated.Rating)
	assert.Equal(t, "Great work", rated.Comment)

	// 3. Cancel
	cancelled, err := f.service.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, cancelled.Status)

	// 4. Fetch
	fetched, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, fetched.Status)
}

/*
TestService_Rate_Range verifies out-of-range ratings never reach the API.
*/
func TestService_Rate_Range(t *testing.T) {
	f := newFixture(t)
	f.login(t, "asha@example.com")

	for _, rating := range []int{0, 6, -1} {
		_, err := f.service.Rate(context.Background(), "some-id", rating, "")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}
}

/*
TestService_NotFound verifies the API's not-found message is kept.
*/
func TestService_NotFound(t *testing.T) {
	f := newFixture(t)
	f.login(t, "asha@example.com")

	_, err := f.service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, "Appointment not found", err.Error())
	assert.True(t, f.manager.IsAuthenticated())
}

/*
TestService_AdminOperations verifies the role guard and the admin endpoints.
*/
func TestService_AdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 1. Anonymous
	_, err := f.service.Stats(ctx)
	require.Error(t, err)
	assert.True(t, apperr.As(err).RequiresAuth)

	// 2. Customer
	f.login(t, "asha@example.com")
	created, err := f.service.Book(ctx, booking())
	require.NoError(t, err)

	_, err = f.service.ListAll(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorizationDenied))

	// 3. Admin
	f.manager.Logout(ctx)
	f.login(t, "ravi@example.com")

	all, err := f.service.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	confirmed, err := f.service.UpdateStatus(ctx, created.ID, appointment.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, confirmed.Status)

	_, err = f.service.UpdateStatus(ctx, created.ID, appointment.Status("teleported"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Confirmed)
}
