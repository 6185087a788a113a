// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/taibuivan/autocare/internal/apiclient"
)

// RemoteRepository implements [Repository] over the appointment API.
type RemoteRepository struct {
	client    *apiclient.Client
	anonymous *apiclient.Client
}

// NewRemoteRepository creates a repository. client must carry the session
// transport; anonymous must not (it serves the chatbot endpoint).
func NewRemoteRepository(client, anonymous *apiclient.Client) *RemoteRepository {
	return &RemoteRepository{client: client, anonymous: anonymous}
}

type listEnvelope struct {
	Success      bool           `json:"success"`
	Appointments []*Appointment `json:"appointments"`
}

type rateBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type statusBody struct {
	Status Status `json:"status"`
}

// one performs call and decodes a single appointment from the response.
func one(ctx context.Context, client *apiclient.Client, call apiclient.Call) (*Appointment, error) {
	var payload json.RawMessage
	if err := client.Do(ctx, call, &payload); err != nil {
		return nil, err
	}

	var appointment Appointment
	if err := apiclient.DecodeData(payload, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func path(id string, suffix string) string {
	return "/" + url.PathEscape(id) + suffix
}

// Create calls `POST /`.
func (repo *RemoteRepository) Create(ctx context.Context, booking *Appointment) (*Appointment, error) {
	return one(ctx, repo.client, apiclient.Call{Method: http.MethodPost, Path: "/", Body: booking})
}

// CreateAnonymous calls `POST /chatbot` without credentials.
func (repo *RemoteRepository) CreateAnonymous(ctx context.Context, booking *Appointment) (*Appointment, error) {
	return one(ctx, repo.anonymous, apiclient.Call{Method: http.MethodPost, Path: "/chatbot", Body: booking})
}

// ListMine calls `GET /user`, which answers `{success, appointments}`.
func (repo *RemoteRepository) ListMine(ctx context.Context) ([]*Appointment, error) {
	var envelope listEnvelope
	if err := repo.client.Get(ctx, "/user", &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success || envelope.Appointments == nil {
		return nil, apiclient.Unexpected(errors.New("appointment: " + MsgInvalidResponse))
	}
	return envelope.Appointments, nil
}

// Get calls `GET /{id}`.
func (repo *RemoteRepository) Get(ctx context.Context, id string) (*Appointment, error) {
	return one(ctx, repo.client, apiclient.Call{Method: http.MethodGet, Path: path(id, "")})
}

// Update calls `PUT /{id}`.
func (repo *RemoteRepository) Update(ctx context.Context, id string, changes *Appointment) (*Appointment, error) {
	return one(ctx, repo.client, apiclient.Call{Method: http.MethodPut, Path: path(id, ""), Body: changes})
}

// Cancel calls `PUT /{id}/cancel`.
func (repo *RemoteRepository) Cancel(ctx context.Context, id string) (*Appointment, error) {
	return one(ctx, repo.client, apiclient.Call{Method: http.MethodPut, Path: path(id, "/cancel")})
}

// Rate calls `POST /{id}/rate`.
func (repo *RemoteRepository) Rate(ctx context.Context, id string, rating int, comment string) (*Appointment, error) {
	body := rateBody{Rating: rating, Comment: comment}
	return one(ctx, repo.client, apiclient.Call{Method: http.MethodPost, Path: path(id, "/rate"), Body: body})
}

// ListAll calls `GET /` (admin).
func (repo *RemoteRepository) ListAll(ctx context.Context) ([]*Appointment, error) {
	var payload json.RawMessage
	if err := repo.client.Get(ctx, "/", &payload); err != nil {
		return nil, err
	}

	var appointments []*Appointment
	if err := apiclient.DecodeData(payload, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateStatus calls `PUT /{id}/status` (admin).
func (repo *RemoteRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	return one(ctx, repo.client, apiclient.Call{Method: http.MethodPut, Path: path(id, "/status"), Body: statusBody{Status: status}})
}

// Stats calls `GET /stats` (admin).
func (repo *RemoteRepository) Stats(ctx context.Context) (*Stats, error) {
	var payload json.RawMessage
	if err := repo.client.Get(ctx, "/stats", &payload); err != nil {
		return nil, err
	}

	var stats Stats
	if err := apiclient.DecodeData(payload, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
