package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/fruitctl/fruitctl/internal/config"
	"github.com/fruitctl/fruitctl/internal/db"
	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/fruitctl/fruitctl/migrations"
	"go.uber.org/zap"
)

type ProposalStore interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	Resolve(ctx context.Context, id, status string, resolvedBy *string, at time.Time) (*models.Proposal, error)
	List(ctx context.Context, f ProposalFilter) ([]models.Proposal, error)
	ExpirePending(ctx context.Context, cutoff, at time.Time) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry *models.AuditEntry) error
	ListByProposal(ctx context.Context, proposalID string) ([]models.AuditEntry, error)
}

// Stores is an opened, migrated store backend.
type Stores struct {
	Proposals ProposalStore
	Audit     AuditStore
	Close     func()
}

// Open connects to the backend selected by cfg.DBDriver and applies migrations.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.RunMigrations(ctx, pool, migrations.Postgres(), log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &Stores{
			Proposals: NewProposalRepo(pool),
			Audit:     NewAuditRepo(pool),
			Close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		sqlDB, err := db.NewSQLiteDB(ctx, cfg.DBPath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.RunSQLiteMigrations(ctx, sqlDB, migrations.SQLite(), log); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &Stores{
			Proposals: NewSQLiteProposalRepo(sqlDB),
			Audit:     NewSQLiteAuditRepo(sqlDB),
			Close:     func() { _ = sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
}
