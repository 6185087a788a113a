// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/autocare/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: row not found")

// Wrap inspects a database error and classifies it.
//
//   - pgx.ErrNoRows becomes [ErrNotFound] so callers can treat it as absence.
//   - Connection-class SQLSTATEs (08xxx) and dial failures become [apperr.Connection].
//   - Everything else becomes [apperr.Internal], annotated with action.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. The database is unreachable
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgerrcode.IsConnectionException(pgError.Code) {
		return apperr.Connection(fmt.Errorf("postgres: %s: %w", action, err))
	}
	var connectError *pgconn.ConnectError
	if errors.As(err, &connectError) {
		return apperr.Connection(fmt.Errorf("postgres: %s: %w", action, err))
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("postgres: %s: %w", action, err))
}
