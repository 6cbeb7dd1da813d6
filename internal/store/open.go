package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend string
	// Path is the session file (file backend) or database file (sqlite backend).
	// Empty means ~/.classroom/session.json or ~/.classroom/session.db.
	Path  string
	Redis RedisOptions
}

// Open creates the Store named by opts.Backend.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		path := opts.Path
		if path == "" {
			p, err := DefaultSessionPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileStore(path, logger)
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			p, err := DefaultSessionPath()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(filepath.Dir(p), "session.db")
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return nil, fmt.Errorf("create config directory: %w", err)
			}
		}
		st, err := NewSQLiteStore(path, logger)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("migrate %s: %w", path, err)
		}
		return st, nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
