// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/taibuivan/autocare/internal/apiclient"
)

// Repository is the remote rating API.
type Repository interface {
	Submit(ctx context.Context, rating *Rating) (*Rating, error)
	List(ctx context.Context) ([]*Rating, error)
}

// RemoteRepository implements [Repository] over `API_BASE_URL/ratings`.
type RemoteRepository struct {
	client *apiclient.Client
}

// NewRemoteRepository creates a repository. client must carry the session transport.
func NewRemoteRepository(client *apiclient.Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

// Submit calls `POST /`.
func (repo *RemoteRepository) Submit(ctx context.Context, rating *Rating) (*Rating, error) {
	var payload json.RawMessage
	call := apiclient.Call{Method: http.MethodPost, Path: "/", Body: rating}
	if err := repo.client.Do(ctx, call, &payload); err != nil {
		return nil, err
	}

	var stored Rating
	if err := apiclient.DecodeData(payload, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// List calls `GET /`.
func (repo *RemoteRepository) List(ctx context.Context) ([]*Rating, error) {
	var payload json.RawMessage
	if err := repo.client.Get(ctx, "/", &payload); err != nil {
		return nil, err
	}

	ratings := []*Rating{}
	if err := apiclient.DecodeData(payload, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}
