// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
)

// errEmptyUser marks a `user` slot that decodes to nothing.
var errEmptyUser = errors.New("session: user slot is empty")

// # Durable Slot Access

// SlotStore is the durable key-value store behind the session.
//
// # Atomicity
//
// Set and Delete apply to all named slots or to none, so `token` and `user`
// are never observed apart. Slots carry no TTL.
type SlotStore interface {

	/*
		Get returns the values of the named slots.

		Parameters:
		  - ctx: context.Context
		  - names: ...string

		Returns:
		  - map[string]string: Present slots only; absent names are omitted
		  - error: Backend failures
	*/
	Get(ctx context.Context, names ...string) (map[string]string, error)

	/*
		Set writes every slot in values in one atomic step.

		Parameters:
		  - ctx: context.Context
		  - values: map[string]string

		Returns:
		  - error: Backend failures (nothing was written)
	*/
	Set(ctx context.Context, values map[string]string) error

	/*
		Delete removes the named slots in one atomic step. Deleting an absent slot is not an error.

		Parameters:
		  - ctx: context.Context
		  - names: ...string

		Returns:
		  - error: Backend failures
	*/
	Delete(ctx context.Context, names ...string) error
}
