// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taibuivan/autocare/internal/apiclient"
)

// Repository is the remote order API.
type Repository interface {
	Checkout(ctx context.Context, order *Order) (*Order, error)
	ListMine(ctx context.Context) ([]*Order, error)
}

// RemoteRepository implements [Repository] over `API_BASE_URL/orders`.
type RemoteRepository struct {
	client *apiclient.Client
}

// NewRemoteRepository creates a repository. client must carry the session transport.
func NewRemoteRepository(client *apiclient.Client) *RemoteRepository {
	return &RemoteRepository{client: client}
}

// Checkout calls `POST /`.
func (repo *RemoteRepository) Checkout(ctx context.Context, order *Order) (*Order, error) {
	var payload json.RawMessage
	if err := repo.client.Do(ctx, apiclient.Call{Method: http.MethodPost, Path: "/", Body: order}, &payload); err != nil {
		return nil, err
	}

	var placed Order
	if err := apiclient.DecodeData(payload, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}

// ListMine calls `GET /user`, which answers `{success, data: {orders}}`.
func (repo *RemoteRepository) ListMine(ctx context.Context) ([]*Order, error) {
	var payload json.RawMessage
	if err := repo.client.Get(ctx, "/user", &payload); err != nil {
		return nil, err
	}

	var page struct {
		Orders []*Order `json:"orders"`
	}
	if err := apiclient.DecodeData(payload, &page); err != nil {
		return nil, err
	}
	if page.Orders == nil {
		return nil, apiclient.Unexpected(errors.New("order: response lacks orders"))
	}
	return page.Orders, nil
}
