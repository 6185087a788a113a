// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package order places and lists service orders for the signed-in customer.

Line items and totals are forwarded as the cart computed them; the gateway
does no pricing.
*/
package order

// Item is one cart line.
type Item struct {
	ServiceID   string  `json:"serviceId"`
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Address is where the order is delivered or who collects it.
type Address struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Order is a placed checkout.
type Order struct {
	ID              string  `json:"_id,omitempty"`
	UserID          string  `json:"userId,omitempty"`
	Items           []Item  `json:"items"`
	TotalAmount     float64 `json:"totalAmount"`
	PaymentMethod   string  `json:"paymentMethod"`
	Notes           string  `json:"notes"`
	ShippingAddress Address `json:"shippingAddress"`
	Status          string  `json:"status,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

const (
	FieldItems = "items"

	// DefaultPaymentMethod is used when the cart does not pick one.
	DefaultPaymentMethod = "cash"
)

const (
	MsgLoginToOrder = "Please login to place an order"
	MsgEmptyCart    = "Your cart is empty"
)
