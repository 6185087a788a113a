// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account serves the "My Account" area: the profile, a dashboard of
bookings and orders, and the anonymous password reset flow.

Profile edits are written through the session so the cached user and the
persisted `user` slot never disagree with what the API returned.
*/
package account

import (
	"github.com/taibuivan/autocare/internal/appointment"
	"github.com/taibuivan/autocare/internal/order"
)

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalBookings     int     `json:"totalBookings"`
	CompletedServices int     `json:"completedServices"`
	TotalOrders       int     `json:"totalOrders"`
	TotalSpent        float64 `json:"totalSpent"`
}

// Dashboard is everything the account page shows at once.
type Dashboard struct {
	Appointments []*appointment.Appointment `json:"appointments"`
	Orders       []*order.Order             `json:"orders"`
	Stats        Stats                      `json:"stats"`

	// Problems holds one message per section that could not be loaded.
	Problems map[string]string `json:"problems,omitempty"`
}

// Dashboard sections.
const (
	SectionAppointments = "appointments"
	SectionOrders       = "orders"
)

const (
	FieldEmail    = "email"
	FieldToken    = "token"
	FieldPassword = "password"
	FieldName     = "name"
	FieldPhone    = "phone"
)

const (
	MsgResetRequested = "Password reset link has been sent to your email"
	MsgResetFailed    = "Password reset failed. Please try again."
)
