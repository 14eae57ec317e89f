package outcomestore

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"pride-notify/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations
var migrationFS embed.FS

const (
	postgresMigrations = "migrations/postgres"
	sqliteMigrations   = "migrations/sqlite"
)

// migrationFile is one NNNNNN_description.up.sql file.
type migrationFile struct {
	version int
	name    string
	path    string
}

func collectMigrations(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var migrations []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		migrations = append(migrations, migrationFile{
			version: version,
			name:    strings.TrimSuffix(parts[1], ".up.sql"),
			path:    dir + "/" + entry.Name(),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// MigrateSQLite applies pending embedded migrations, each in its own transaction.
func MigrateSQLite(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return errs.Wrap(err, "create schema_migrations")
	}

	applied := make(map[int]bool)
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return errs.Wrap(err, "read applied migrations")
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return errs.Wrap(err, "scan applied migration")
		}
		applied[v] = true
	}
	_ = rows.Close()

	migrations, err := collectMigrations(migrationFS, sqliteMigrations)
	if err != nil {
		return errs.Wrap(err, "collect migrations")
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		content, err := fs.ReadFile(migrationFS, m.path)
		if err != nil {
			return errs.Wrapf(err, "read migration %06d", m.version)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return errs.Wrap(err, "begin migration")
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return errs.Wrapf(err, "apply migration %06d_%s", m.version, m.name)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return errs.Wrapf(err, "record migration %06d", m.version)
		}
		if err := tx.Commit(); err != nil {
			return errs.Wrapf(err, "commit migration %06d", m.version)
		}
		logger.Info("migration applied", "version", m.version, "name", m.name)
	}
	return nil
}

// MigratePostgres is the PostgreSQL counterpart of MigrateSQLite.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return errs.Wrap(err, "create schema_migrations")
	}

	applied := make(map[int]bool)
	rows, err := pool.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return errs.Wrap(err, "read applied migrations")
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return errs.Wrap(err, "scan applied migration")
		}
		applied[v] = true
	}
	rows.Close()

	migrations, err := collectMigrations(migrationFS, postgresMigrations)
	if err != nil {
		return errs.Wrap(err, "collect migrations")
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		content, err := fs.ReadFile(migrationFS, m.path)
		if err != nil {
			return errs.Wrapf(err, "read migration %06d", m.version)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return errs.Wrap(err, "begin migration")
		}
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			_ = tx.Rollback(ctx)
			return errs.Wrapf(err, "apply migration %06d_%s", m.version, m.name)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
			_ = tx.Rollback(ctx)
			return errs.Wrapf(err, "record migration %06d", m.version)
		}
		if err := tx.Commit(ctx); err != nil {
			return errs.Wrapf(err, "commit migration %06d", m.version)
		}
		logger.Info("migration applied", "version", m.version, "name", m.name)
	}
	return nil
}
