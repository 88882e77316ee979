package db

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrator is the backend-specific part of running migrations.
type migrator interface {
	ensureTable(ctx context.Context) error
	applied(ctx context.Context, version string) (bool, error)
	apply(ctx context.Context, version, sql string) error
}

// RunMigrations applies the *.up.sql files in migrations to a postgres pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, log *zap.Logger) error {
	return run(ctx, &pgMigrator{pool: pool}, migrations, log)
}

// RunSQLiteMigrations applies the *.up.sql files in migrations to a sqlite database.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB, migrations fs.FS, log *zap.Logger) error {
	return run(ctx, &sqliteMigrator{db: db}, migrations, log)
}

func run(ctx context.Context, m migrator, migrations fs.FS, log *zap.Logger) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return err
	}

	var upFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, f := range upFiles {
		version := strings.TrimSuffix(f, ".up.sql")

		exists, err := m.applied(ctx, version)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		body, err := fs.ReadFile(migrations, f)
		if err != nil {
			return err
		}

		if err := m.apply(ctx, version, string(body)); err != nil {
			return err
		}

		log.Info("migration applied", zap.String("version", version))
	}

	return nil
}

type pgMigrator struct {
	pool *pgxpool.Pool
}

func (m *pgMigrator) ensureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT now()
		)
	`)
	return err
}

func (m *pgMigrator) applied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)", version).Scan(&exists)
	return exists, err
}

func (m *pgMigrator) apply(ctx context.Context, version, sql string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type sqliteMigrator struct {
	db *sql.DB
}

func (m *sqliteMigrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (m *sqliteMigrator) applied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=?)", version).Scan(&exists)
	return exists, err
}

func (m *sqliteMigrator) apply(ctx context.Context, version, sql string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, sql); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
