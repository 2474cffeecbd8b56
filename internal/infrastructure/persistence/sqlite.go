package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"flightwatch-service/internal/interface/repository"
)

// NewSQLiteStore opens the single-file store, creating its directory first
func NewSQLiteStore(path string) (*repository.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}
	return repository.NewSQLiteStore(path)
}
