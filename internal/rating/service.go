// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/validate"
)

// Gate reports who is signed in.
type Gate interface {
	Identity() (userID string, role string, ok bool)
}

// Service implements rating use cases.
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
Submit records a rating of stars (1..5) with an optional comment.

Returns:
  - *Rating: The stored rating
  - error: AUTH_REQUIRED without a session, VALIDATION_ERROR before any network call
*/
func (service *Service) Submit(ctx context.Context, stars int, comment string) (*Rating, error) {
	if _, _, ok := service.gate.Identity(); !ok {
		return nil, apperr.AuthRequired(MsgLoginToRate)
	}

	comment = strings.TrimSpace(comment)

	validator := &validate.Validator{}
	validator.Range(FieldRating, stars, MinStars, MaxStars).MaxLen(FieldComment, comment, MaxCommentLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	stored, err := service.repo.Submit(ctx, &Rating{Rating: stars, Comment: comment})
	if err != nil {
		return nil, err
	}

	service.logger.Info("rating_submitted", slog.String("rating_id", stored.ID), slog.Int("rating", stars))
	return stored, nil
}

// List returns every published rating.
func (service *Service) List(ctx context.Context) ([]*Rating, error) {
	return service.repo.List(ctx)
}
