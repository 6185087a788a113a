// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/account"
	"github.com/taibuivan/autocare/internal/appointment"
	"github.com/taibuivan/autocare/internal/order"
	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/session"
)

type signedIn struct{}

func (signedIn) Identity() (string, string, bool) { return "u-1", "customer", true }
func (signedIn) User() *session.User              { return &session.User{ID: "u-1", Name: "Asha"} }
func (signedIn) UpdateUser(context.Context, *session.User) error {
	return errors.New("not used")
}
func (signedIn) Adopt(context.Context, string) (*session.User, error) {
	return nil, errors.New("not used")
}

type appointmentList func() ([]*appointment.Appointment, error)

func (list appointmentList) ListMine(context.Context) ([]*appointment.Appointment, error) {
	return list()
}

type orderList func() ([]*order.Order, error)

func (list orderList) ListMine(context.Context) ([]*order.Order, error) { return list() }

/*
TestDashboard_Sections verifies counters and per-section degradation.
*/
func TestDashboard_Sections(t *testing.T) {
	booked := func() ([]*appointment.Appointment, error) {
		return []*appointment.Appointment{
			{ID: "a1", Status: appointment.StatusCompleted},
			{ID: "a2", Status: appointment.StatusPending},
			{ID: "a3", Status: appointment.StatusCompleted},
		}, nil
	}
	placed := func() ([]*order.Order, error) {
		return []*order.Order{{ID: "o1", TotalAmount: 499}, {ID: "o2", TotalAmount: 1}}, nil
	}
	outage := func() ([]*order.Order, error) {
		return nil, apperr.Classify(500, "", true, "")
	}

	tests := []struct {
		name         string
		appointments appointmentList
		orders       orderList
		wantStats    account.Stats
		wantProblems []string
	}{
		{"both_loaded", booked, placed, account.Stats{TotalBookings: 3, CompletedServices: 2, TotalOrders: 2, TotalSpent: 500}, nil},
		{"orders_down", booked, outage, account.Stats{TotalBookings: 3, CompletedServices: 2}, []string{account.SectionOrders}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := account.NewService(signedIn{}, nil, tt.appointments, tt.orders, logging.Discard())

			dashboard, err := service.Dashboard(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantStats, dashboard.Stats)
			assert.Len(t, dashboard.Problems, len(tt.wantProblems))
			for _, section := range tt.wantProblems {
				assert.Equal(t, apperr.MsgServerFault, dashboard.Problems[section])
			}
			assert.NotNil(t, dashboard.Orders)
		})
	}
}

/*
TestDashboard_SessionLost verifies a session failure in one section aborts the whole dashboard.
*/
func TestDashboard_SessionLost(t *testing.T) {
	expired := func() ([]*appointment.Appointment, error) { return nil, apperr.SessionExpired() }
	placed := func() ([]*order.Order, error) { return []*order.Order{}, nil }

	service := account.NewService(signedIn{}, nil, appointmentList(expired), orderList(placed), logging.Discard())

	_, err := service.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthenticationRejected))
}
