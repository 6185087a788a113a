// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package appointment books and manages workshop appointments on behalf of
// the signed-in customer.
//
// # Architecture
//
//   - Repository: The remote appointment API (APPOINTMENTS_API_URL).
//   - Service: Normalises bookings, guards admin operations and reshapes
//     failures into one customer-facing message.
//   - Handler: The gateway's JSON endpoints.
package appointment

// # Domain Entities

// Status is the workflow state of an appointment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Vehicle describes the car being serviced.
type Vehicle struct {
	Make               string `json:"make"`
	Model              string `json:"model"`
	Year               string `json:"year"`
	RegistrationNumber string `json:"registrationNumber"`
}

// Appointment is a booked service slot.
type Appointment struct {
	ID           string  `json:"_id,omitempty"`
	UserID       string  `json:"userId,omitempty"`
	CustomerName string  `json:"customerName"`
	Email        string  `json:"email"`
	PhoneNumber  string  `json:"phoneNumber"`
	Service      string  `json:"service"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Message      string  `json:"message"`
	Vehicle      Vehicle `json:"vehicleDetails"`
	Status       Status  `json:"status,omitempty"`
	Rating       int     `json:"rating,omitempty"`
	Comment      string  `json:"comment,omitempty"`
}

// Stats summarises every appointment by status.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// # Field Identifiers

const (
	FieldID     = "id"
	FieldDate   = "date"
	FieldRating = "rating"
	FieldStatus = "status"
)

// # Business Rules

const (
	// DefaultMake is sent when the customer leaves the make blank.
	DefaultMake = "Not Specified"

	MinRating = 1
	MaxRating = 5
)

// Customer-facing messages.
const (
	MsgLoginToBook     = "Please login to book an appointment."
	MsgSessionExpired  = "Session expired. Please log in again."
	MsgBookingInvalid  = "Invalid input data. Please check your form and try again."
	MsgAdminRequired   = "Admin access required."
	MsgInvalidResponse = "Invalid response format"
)
