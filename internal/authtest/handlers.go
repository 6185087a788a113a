// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authtest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taibuivan/autocare/internal/platform/constants"
	"github.com/taibuivan/autocare/internal/platform/sec"
)

type accountKey struct{}

func accountFrom(request *http.Request) *Account {
	account, _ := request.Context().Value(accountKey{}).(*Account)
	return account
}

// # Middleware

func (server *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		header := request.Header.Get(constants.HeaderAuthorization)
		if header == "" {
			writeMessage(writer, http.StatusUnauthorized, MsgNoToken)
			return
		}
		token := sec.StripBearer(header)

		server.mu.Lock()
		dead := server.rejectAll || server.revoked[token]
		server.mu.Unlock()

		claims, err := server.tokens.VerifyToken(token)
		if dead || err != nil {
			writeMessage(writer, http.StatusUnauthorized, constants.InvalidTokenMessage)
			return
		}

		server.mu.Lock()
		account, ok := server.accounts[claims.Email]
		server.mu.Unlock()
		if !ok {
			writeMessage(writer, http.StatusUnauthorized, constants.InvalidTokenMessage)
			return
		}

		next.ServeHTTP(writer, request.WithContext(context.WithValue(request.Context(), accountKey{}, account)))
	})
}

func (server *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if account := accountFrom(request); account == nil || account.Role != string(sec.RoleAdmin) {
			writeMessage(writer, http.StatusForbidden, MsgAdminOnly)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Auth

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (server *Server) login(writer http.ResponseWriter, request *http.Request) {
	server.loginCalls.Add(1)

	var input credentials
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	server.mu.Lock()
	var account Account
	stored, ok := server.accounts[strings.ToLower(input.Email)]
	if ok {
		account = *stored
	}
	server.mu.Unlock()

	if !ok || !sec.CheckPasswordHash(input.Password, account.password) {
		writeMessage(writer, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	token, err := server.issue(&account)
	if err != nil {
		writeJSON(writer, http.StatusInternalServerError, map[string]any{})
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{"token": token, "user": account})
}

func (server *Server) register(writer http.ResponseWriter, request *http.Request) {
	var input credentials
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		writeMessage(writer, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	email := strings.ToLower(input.Email)
	account := &Account{ID: uuid.NewString(), Name: input.Name, Email: email, Role: string(sec.RoleCustomer), password: hash}

	server.mu.Lock()
	_, taken := server.accounts[email]
	if !taken {
		server.accounts[email] = account
	}
	server.mu.Unlock()

	if taken {
		writeMessage(writer, http.StatusBadRequest, MsgEmailTaken)
		return
	}

	token, err := server.issue(account)
	if err != nil {
		writeJSON(writer, http.StatusInternalServerError, map[string]any{})
		return
	}
	writeJSON(writer, http.StatusCreated, map[string]any{"token": token, "user": account})
}

func (server *Server) validate(writer http.ResponseWriter, request *http.Request) {
	server.validateCalls.Add(1)

	server.mu.Lock()
	account := *accountFrom(request)
	server.mu.Unlock()
	writeJSON(writer, http.StatusOK, map[string]any{"user": account})
}

func (server *Server) refresh(writer http.ResponseWriter, request *http.Request) {
	server.refreshCalls.Add(1)

	server.mu.Lock()
	delay, failure := server.refreshDelay, server.refreshFail
	server.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-request.Context().Done():
			return
		}
	}

	if failure != 0 {
		message := "Token refresh failed"
		if failure == http.StatusUnauthorized {
			message = constants.InvalidTokenMessage
		}
		writeMessage(writer, failure, message)
		return
	}

	token, err := server.issue(accountFrom(request))
	if err != nil {
		writeJSON(writer, http.StatusInternalServerError, map[string]any{})
		return
	}
	writeJSON(writer, http.StatusOK, map[string]string{"token": token})
}

func (server *Server) me(writer http.ResponseWriter, request *http.Request) {
	server.mu.Lock()
	account := *accountFrom(request)
	server.mu.Unlock()
	writeJSON(writer, http.StatusOK, map[string]any{"user": account})
}

func (server *Server) updateMe(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Name    *string `json:"name"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	server.mu.Lock()
	account := accountFrom(request)
	if input.Name != nil {
		account.Name = *input.Name
	}
	if input.Phone != nil {
		account.Phone = *input.Phone
	}
	if input.Address != nil {
		account.Address = *input.Address
	}
	updated := *account
	server.mu.Unlock()

	writeJSON(writer, http.StatusOK, map[string]any{"user": updated})
}

func (server *Server) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input credentials
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	server.mu.Lock()
	_, ok := server.accounts[strings.ToLower(input.Email)]
	server.mu.Unlock()

	if !ok {
		writeMessage(writer, http.StatusNotFound, "User not found")
		return
	}
	server.ResetToken(input.Email)
	writeMessage(writer, http.StatusOK, "Password reset link has been sent to your email")
}

func (server *Server) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		writeMessage(writer, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	server.mu.Lock()
	email, ok := server.resetTokens[input.Token]
	account := server.accounts[email]
	if ok && account != nil {
		delete(server.resetTokens, input.Token)
		account.password = hash
	}
	server.mu.Unlock()

	if !ok || account == nil {
		writeMessage(writer, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	token, err := server.issue(account)
	if err != nil {
		writeJSON(writer, http.StatusInternalServerError, map[string]any{})
		return
	}
	writeJSON(writer, http.StatusOK, map[string]string{"message": "Password reset successful", "token": token})
}

// # Appointments

func decodeRecord(request *http.Request) (map[string]any, bool) {
	record := map[string]any{}
	if err := json.NewDecoder(request.Body).Decode(&record); err != nil {
		return nil, false
	}
	return record, true
}

func (server *Server) storeAppointment(writer http.ResponseWriter, request *http.Request, owner *Account) {
	record, ok := decodeRecord(request)
	if !ok {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}

	record["_id"] = uuid.NewString()
	record["status"] = "pending"
	if owner != nil {
		record["userId"] = owner.ID
	}

	server.mu.Lock()
	server.appointments = append(server.appointments, record)
	stored := cloneRecords([]map[string]any{record})[0]
	server.mu.Unlock()

	writeJSON(writer, http.StatusCreated, map[string]any{"success": true, "data": stored})
}

func (server *Server) bookAppointment(writer http.ResponseWriter, request *http.Request) {
	server.storeAppointment(writer, request, accountFrom(request))
}

func (server *Server) bookAnonymous(writer http.ResponseWriter, request *http.Request) {
	server.storeAppointment(writer, request, nil)
}

func (server *Server) listMyAppointments(writer http.ResponseWriter, request *http.Request) {
	account := accountFrom(request)

	server.mu.Lock()
	mine := make([]map[string]any, 0)
	for _, record := range cloneRecords(server.appointments) {
		if record["userId"] == account.ID {
			mine = append(mine, record)
		}
	}
	server.mu.Unlock()

	writeJSON(writer, http.StatusOK, map[string]any{"success": true, "appointments": mine})
}

func (server *Server) listAllAppointments(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]any{"success": true, "data": server.Appointments()})
}

func (server *Server) appointmentStats(writer http.ResponseWriter, request *http.Request) {
	stats := map[string]int{"total": 0, "pending": 0, "confirmed": 0, "completed": 0, "cancelled": 0}
	for _, record := range server.Appointments() {
		stats["total"]++
		if status, ok := record["status"].(string); ok {
			stats[status]++
		}
	}
	writeJSON(writer, http.StatusOK, map[string]any{"success": true, "data": stats})
}

// mutateAppointment applies change to the appointment named by the URL, if the caller may see it.
func (server *Server) mutateAppointment(writer http.ResponseWriter, request *http.Request, change func(map[string]any) string) {
	account := accountFrom(request)
	id := chi.URLParam(request, "id")

	server.mu.Lock()
	var found map[string]any
	for _, record := range server.appointments {
		if record["_id"] == id && (record["userId"] == account.ID || account.Role == string(sec.RoleAdmin)) {
			found = record
			break
		}
	}
	var problem string
	var snapshot map[string]any
	if found != nil {
		if change != nil {
			problem = change(found)
		}
		snapshot = cloneRecords([]map[string]any{found})[0]
	}
	server.mu.Unlock()

	switch {
	case found == nil:
		writeMessage(writer, http.StatusNotFound, "Appointment not found")
	case problem != "":
		writeMessage(writer, http.StatusBadRequest, problem)
	default:
		writeJSON(writer, http.StatusOK, map[string]any{"success": true, "data": snapshot})
	}
}

func (server *Server) getAppointment(writer http.ResponseWriter, request *http.Request) {
	server.mutateAppointment(writer, request, nil)
}

func (server *Server) updateAppointment(writer http.ResponseWriter, request *http.Request) {
	fields, ok := decodeRecord(request)
	if !ok {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}
	server.mutateAppointment(writer, request, func(record map[string]any) string {
		for key, value := range fields {
			if key == "_id" || key == "userId" || key == "status" {
				continue
			}
			record[key] = value
		}
		return ""
	})
}

func (server *Server) cancelAppointment(writer http.ResponseWriter, request *http.Request) {
	server.mutateAppointment(writer, request, func(record map[string]any) string {
		if record["status"] == "completed" {
			return "Completed appointments cannot be cancelled"
		}
		record["status"] = "cancelled"
		return ""
	})
}

type ratingBody struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (server *Server) rateAppointment(writer http.ResponseWriter, request *http.Request) {
	var input ratingBody
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil || input.Rating < 1 || input.Rating > 5 {
		writeMessage(writer, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	server.mutateAppointment(writer, request, func(record map[string]any) string {
		record["rating"] = input.Rating
		record["comment"] = input.Comment
		return ""
	})
}

func (server *Server) updateAppointmentStatus(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil || input.Status == "" {
		writeMessage(writer, http.StatusBadRequest, "Status is required")
		return
	}
	server.mutateAppointment(writer, request, func(record map[string]any) string {
		record["status"] = input.Status
		return ""
	})
}

// # Ratings

func (server *Server) listRatings(writer http.ResponseWriter, request *http.Request) {
	server.mu.Lock()
	ratings := cloneRecords(server.ratings)
	server.mu.Unlock()
	writeJSON(writer, http.StatusOK, map[string]any{"success": true, "data": ratings})
}

func (server *Server) submitRating(writer http.ResponseWriter, request *http.Request) {
	var input ratingBody
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil || input.Rating < 1 || input.Rating > 5 {
		writeMessage(writer, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	account := accountFrom(request)
	record := map[string]any{
		"_id":      uuid.NewString(),
		"rating":   input.Rating,
		"comment":  input.Comment,
		"userId":   account.ID,
		"userName": account.Name,
	}

	server.mu.Lock()
	server.ratings = append(server.ratings, record)
	server.mu.Unlock()

	writeJSON(writer, http.StatusCreated, map[string]any{"success": true, "data": record})
}

// # Orders

func (server *Server) checkout(writer http.ResponseWriter, request *http.Request) {
	record, ok := decodeRecord(request)
	if !ok {
		writeMessage(writer, http.StatusBadRequest, "Invalid request body")
		return
	}
	if items, _ := record["items"].([]any); len(items) == 0 {
		writeMessage(writer, http.StatusBadRequest, "Order must contain at least one item")
		return
	}

	record["_id"] = uuid.NewString()
	record["userId"] = accountFrom(request).ID
	record["status"] = "pending"
	record["createdAt"] = time.Now().UTC().Format(time.RFC3339)

	server.mu.Lock()
	server.orders = append(server.orders, record)
	stored := cloneRecords([]map[string]any{record})[0]
	server.mu.Unlock()

	writeJSON(writer, http.StatusCreated, map[string]any{"success": true, "data": stored})
}

func (server *Server) listMyOrders(writer http.ResponseWriter, request *http.Request) {
	account := accountFrom(request)

	mine := make([]map[string]any, 0)
	for _, record := range server.Orders() {
		if record["userId"] == account.ID {
			mine = append(mine, record)
		}
	}

	writeJSON(writer, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"orders": mine}})
}
