package store

import (
	"context"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// SessionStore persists in-flight session snapshots so an interrupted
// attempt can be resumed at the exact same position after a restart.
// Get returns (nil, nil) when the user has no snapshot.
type SessionStore interface {
	PutInProgress(ctx context.Context, s *models.Session) error
	GetInProgress(ctx context.Context, userID int64) (*models.Session, error)
	DeleteInProgress(ctx context.Context, userID int64) error
}

// ResultFilter narrows ListResults. Zero values mean "any".
type ResultFilter struct {
	SurveyKey  string
	UserID     int64
	SharedOnly bool
}

// ResultStore persists completed results and user profiles.
type ResultStore interface {
	PutResult(ctx context.Context, r *models.Result) error
	GetLatestResult(ctx context.Context, userID int64) (*models.Result, error)
	ListResults(ctx context.Context, f ResultFilter) ([]*models.Result, error)
	MarkShared(ctx context.Context, resultID string) error

	UpsertProfile(ctx context.Context, p *models.UserProfile) error
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
}
