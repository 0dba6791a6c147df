package learning

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/filesort/internal/model"
)

// Store persists the learning record as a whole document
type Store interface {
	// Load returns the stored record, or an empty one if nothing was stored yet
	Load(ctx context.Context) (*model.LearningRecord, error)

	// Save replaces the stored record
	Save(ctx context.Context, record *model.LearningRecord) error
}

// NewStore creates a store for the configured backend
func NewStore(cfg model.LearningConfig) (Store, error) {
	backend := strings.ToLower(cfg.Backend)
	path := ExpandPath(cfg.Path)

	switch backend {
	case "", "json":
		if path == "" {
			return nil, fmt.Errorf("learning path must be set for the json backend")
		}
		return NewFileStore(path), nil

	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("learning path must be set for the sqlite backend")
		}
		return NewSQLiteStore(path)

	case "memory":
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown learning backend: %s (supported: json, sqlite, memory)", cfg.Backend)
	}
}

// ExpandPath expands a leading ~ and environment variables
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}
