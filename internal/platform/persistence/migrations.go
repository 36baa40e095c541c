package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

const fileSourceScheme = "file://"

// ErrDirtySchema is returned when a previous card ledger migration stopped halfway
var ErrDirtySchema = errors.New("card ledger schema is dirty")

// migrationSource turns a migrations directory into a golang-migrate source URL.
// Paths that already carry the file scheme are used as is.
func migrationSource(migrationsPath string) (string, error) {
	path := strings.TrimSpace(migrationsPath)
	if path == "" || path == fileSourceScheme {
		return "", errors.New("card ledger migrations path cannot be empty")
	}
	if strings.HasPrefix(path, fileSourceScheme) {
		return path, nil
	}
	return fileSourceScheme + path, nil
}

// RunMigrations brings the card ledger schema up to date and returns the
// version it ends on
func RunMigrations(logger *slog.Logger, databaseURL, migrationsPath string) (uint, error) {
	sourceURL, err := migrationSource(migrationsPath)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(databaseURL) == "" {
		return 0, errors.New("card ledger database URL cannot be empty")
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to open card ledger migrations at %s: %w", sourceURL, err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil || dbErr != nil {
			logger.Warn("Closing card ledger migrator failed", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to migrate card ledger schema: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		version = 0
	case err != nil:
		return 0, fmt.Errorf("failed to read card ledger schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}

	logger.Info("Card ledger schema is up to date", "version", version, "source", sourceURL)
	return version, nil
}
