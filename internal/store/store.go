// Package store persists terminal decisions. Two backends are provided:
// an embedded sqlite database for single-machine runs and postgres for
// shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
)

// Sink receives terminal decisions. Saving the same company twice must be
// idempotent: the later decision wins. Get returns nil with no error when
// the company has no decision yet.
type Sink interface {
	Save(ctx context.Context, d model.Decision) error
	Get(ctx context.Context, companyID string) (*model.Decision, error)
	Close() error
}

// Open creates a Sink for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Sink, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(ctx, cfg.DatabaseURL)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
