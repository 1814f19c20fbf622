package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/repository"
)

// Caller is the authenticated user behind a request. The zero value is an
// anonymous caller.
type Caller struct {
	UserID string
	Email  string
	Name   string
	Role   domain.Role
}

func (c Caller) Anonymous() bool { return c.UserID == "" }

func (c Caller) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// Owns reports whether the caller may modify content owned by ownerID.
func (c Caller) Owns(ownerID string) bool {
	return !c.Anonymous() && c.UserID == ownerID
}

func newID() string { return uuid.New().String() }

const backgroundTimeout = 30 * time.Second

// Runner executes side effects that must never fail the request that
// triggered them. Failures are logged by the runner.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type asyncRunner struct{}

func NewAsyncRunner() Runner { return asyncRunner{} }

func (asyncRunner) Go(name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(logger.EventPanic, "Background task panicked", logger.Fields(
					"task", name,
					"panic", r,
				))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Warn(logger.EventGeneral, "Background task failed", logger.Fields(
				"task", name,
				"error", err.Error(),
			))
		}
	}()
}

type inlineRunner struct{}

// NewInlineRunner runs tasks synchronously. Tests use it to observe side
// effects deterministically.
func NewInlineRunner() Runner { return inlineRunner{} }

func (inlineRunner) Go(name string, fn func(ctx context.Context) error) {
	if err := fn(context.Background()); err != nil {
		logger.Warn(logger.EventGeneral, "Background task failed", logger.Fields(
			"task", name,
			"error", err.Error(),
		))
	}
}

// record appends an analytics event without failing the caller.
func record(ctx context.Context, repo repository.AnalyticsRepository, e domain.AnalyticsEvent) {
	if repo == nil {
		return
	}
	e.ID = newID()
	e.CreatedAt = time.Now()
	if err := repo.Insert(ctx, &e); err != nil {
		logger.Warn(logger.EventDBError, "Failed to record analytics event", logger.Fields(
			"action", string(e.Action),
			"error", err.Error(),
		))
	}
}
