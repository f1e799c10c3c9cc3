package sqlstore

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// goose keeps its FS, dialect and logger in package state
var gooseMu sync.Mutex

// Migrate applies all pending migrations for the driver
func Migrate(db *sql.DB, driver Driver, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.SetDialect(driver.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, driver.migrationsDir()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through slog
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}
