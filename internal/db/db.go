// Package db selects between the PostgreSQL backend and an in-memory backend
// used for tests and DB-less development.
package db

import (
	"context"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/config"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
	"github.com/branddesk/branddesk-backend/internal/db/memory"
	"github.com/branddesk/branddesk-backend/internal/db/postgres"
)

// ErrNotFound aliases the interfaces package sentinel for convenience.
var ErrNotFound = interfaces.ErrNotFound

// Database re-exports the backend-agnostic handle.
type Database = interfaces.Database

// New connects to the configured backend. With BD_USE_IN_MEMORY=true (or an
// empty DSN) it returns the in-memory backend.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Database, error) {
	if cfg.Database.UseInMemory || cfg.Database.PostgresDSN == "" {
		logger.Infow("Using in-memory database")
		return memory.NewDatabase(), nil
	}
	return postgres.NewDatabase(ctx, cfg.Database.PostgresDSN)
}

// NewInMemory returns the in-memory backend directly; used in tests.
func NewInMemory() Database {
	return memory.NewDatabase()
}
