// Package store persists the ticker-to-id mapping set and the append-only
// audit log behind a driver-switched interface: flat files for interchange,
// sqlite for local runs, postgres for shared state.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// Config selects and configures the persistence backend.
type Config struct {
	Driver       string `yaml:"driver" mapstructure:"driver"`
	MappingsPath string `yaml:"mappings_path" mapstructure:"mappings_path"`
	AuditLogPath string `yaml:"audit_log_path" mapstructure:"audit_log_path"`
	SQLitePath   string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL  string `yaml:"database_url" mapstructure:"database_url"`
}

// Store is the persistence interface for the crosswalk pipeline. Mapping
// writes are incremental (PutMapping after every accepted decision) with a
// consolidating SaveMappings at run end; the audit log is append-only, one
// row per decision, flushed per row. LoadMappings after SaveMappings must
// reproduce an identical resume point.
type Store interface {
	LoadMappings(ctx context.Context) (map[string]string, error)
	PutMapping(ctx context.Context, ticker, companyID string) error
	SaveMappings(ctx context.Context, mappings map[string]string) error
	AppendDecision(ctx context.Context, d model.Decision) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the Store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFile(cfg.MappingsPath, cfg.AuditLogPath), nil
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
