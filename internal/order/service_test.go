// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/autocare/internal/apiclient"
	"github.com/taibuivan/autocare/internal/authtest"
	"github.com/taibuivan/autocare/internal/order"
	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/logging"
	"github.com/taibuivan/autocare/internal/platform/sec"
	"github.com/taibuivan/autocare/internal/session"
)

func newService(t *testing.T) (*authtest.Server, *session.Manager, *order.Service) {
	t.Helper()

	fake := authtest.New(t)
	fake.Seed(t, "Asha Rao", "asha@example.com", "secret-42", string(sec.RoleCustomer))

	manager := session.NewManager(session.NewMemoryStore(), session.NewAuthAPI(apiclient.New(fake.AuthURL())),
		session.WithLogger(logging.Discard()))
	client := apiclient.New(fake.APIURL()+"/orders", apiclient.WithTransport(session.NewTransport(manager, nil)))

	return fake, manager, order.NewService(order.NewRemoteRepository(client), manager, logging.Discard())
}

func cart() *order.Order {
	return &order.Order{
		Items: []order.Item{
			{ServiceID: "svc-1", ServiceName: "Oil Change", Price: 1499.5, Quantity: 1},
			{ServiceID: "svc-2", ServiceName: "Wheel Alignment", Price: 800, Quantity: 2},
		},
		TotalAmount: 3099.5,
	}
}

/*
TestService_Checkout verifies the cart is forwarded as given with defaults filled in.
*/
func TestService_Checkout(t *testing.T) {
	fake, manager, service := newService(t)
	ctx := context.Background()

	_, err := manager.Login(ctx, "asha@example.com", "secret-42")
	require.NoError(t, err)

	placed, err := service.Checkout(ctx, cart())
	require.NoError(t, err)

	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, 3099.5, placed.TotalAmount)
	assert.Equal(t, order.DefaultPaymentMethod, placed.PaymentMethod)
	assert.Equal(t, "Asha Rao", placed.ShippingAddress.Name)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, 2, placed.Items[1].Quantity)

	stored := fake.Orders()
	require.Len(t, stored, 1)
	assert.Equal(t, 3099.5, stored[0]["totalAmount"])

	mine, err := service.ListMine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, placed.ID, mine[0].ID)
}

/*
TestService_Checkout_Guards verifies nothing is sent without a session or items.
*/
func TestService_Checkout_Guards(t *testing.T) {
	tests := []struct {
		name     string
		login    bool
		cart     *order.Order
		wantKind apperr.Kind
	}{
		{"anonymous", false, cart(), apperr.KindAuthenticationFailed},
		{"nil_cart", true, nil, apperr.KindValidation},
		{"empty_cart", true, &order.Order{TotalAmount: 0}, apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, manager, service := newService(t)
			if tt.login {
				_, err := manager.Login(context.Background(), "asha@example.com", "secret-42")
				require.NoError(t, err)
			}

			_, err := service.Checkout(context.Background(), tt.cart)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.wantKind))
			assert.Empty(t, fake.Orders())
		})
	}
}

/*
TestService_ListMine_SessionRejected verifies a dead token ends the session.
*/
func TestService_ListMine_SessionRejected(t *testing.T) {
	fake, manager, service := newService(t)
	_, err := manager.Login(context.Background(), "asha@example.com", "secret-42")
	require.NoError(t, err)

	fake.RejectTokens(true)

	_, err = service.ListMine(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthenticationRejected))
	assert.False(t, manager.IsAuthenticated())
}
