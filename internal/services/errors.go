package services

import (
	"context"
	"errors"
	"time"

	"tailor_shop/internal/repository"
	"tailor_shop/pkg/workflow"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("not allowed for this role")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidStage       = workflow.ErrUnknownStage
	ErrOutOfOrder         = workflow.ErrOutOfOrder
)

// now is swapped in tests.
var now = time.Now

// Cache is the JSON cache used for sessions and dashboard stats.
type Cache interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Notifier delivers a text message to a customer phone.
type Notifier interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// Recorder receives domain counters.
type Recorder interface {
	StageUpdated(stage, status string)
	BillCreated()
	Notification(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) StageUpdated(string, string) {}
func (nopRecorder) BillCreated()                {}
func (nopRecorder) Notification(bool)           {}

const dashboardStatsKey = "dashboard:stats"

func invalidateStats(ctx context.Context, cache Cache) {
	if cache != nil {
		_ = cache.Delete(ctx, dashboardStatsKey)
	}
}
