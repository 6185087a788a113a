// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/validate"
	"github.com/taibuivan/autocare/internal/session"
)

// Gate is the view of the session checkout needs.
type Gate interface {
	Identity() (userID string, role string, ok bool)
	User() *session.User
}

// Service implements order use cases.
type Service struct {
	repo   Repository
	gate   Gate
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, gate Gate, logger *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, logger: logger}
}

/*
Checkout places cart as an order for the signed-in customer.

Description: Items and the total are sent as given. A missing payment method
becomes [DefaultPaymentMethod] and a blank shipping address is filled from the
session user's name and phone.

Returns:
  - *Order: The placed order
  - error: AUTH_REQUIRED without a session, VALIDATION_ERROR for an empty cart
*/
func (service *Service) Checkout(ctx context.Context, cart *Order) (*Order, error) {
	user := service.gate.User()
	if _, _, ok := service.gate.Identity(); !ok || user == nil {
		return nil, apperr.AuthRequired(MsgLoginToOrder)
	}

	if cart == nil || len(cart.Items) == 0 {
		return nil, apperr.ValidationError(MsgEmptyCart, apperr.FieldError{Field: FieldItems, Message: MsgEmptyCart})
	}

	placing := *cart
	placing.ID = ""
	placing.UserID = ""
	placing.Status = ""
	placing.Notes = strings.TrimSpace(cart.Notes)
	if strings.TrimSpace(placing.PaymentMethod) == "" {
		placing.PaymentMethod = DefaultPaymentMethod
	}
	if placing.ShippingAddress == (Address{}) {
		placing.ShippingAddress = Address{Name: validate.Text(user.Name), Phone: user.Phone}
	}

	placed, err := service.repo.Checkout(ctx, &placing)
	if err != nil {
		return nil, err
	}

	service.logger.Info("order_placed",
		slog.String("order_id", placed.ID),
		slog.Int("items", len(placed.Items)),
		slog.Float64("total_amount", placed.TotalAmount),
	)
	return placed, nil
}

// ListMine returns the signed-in customer's orders.
func (service *Service) ListMine(ctx context.Context) ([]*Order, error) {
	return service.repo.ListMine(ctx)
}
