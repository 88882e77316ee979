package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const proposalColumns = `id, integration, action, params, status, created_at, resolved_at, resolved_by`

// ProposalRepo is the postgres proposal store.
type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

func (r *ProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO proposals (id, integration, action, params, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Integration, p.Action, string(p.Params), p.Status, p.CreatedAt)
	return err
}

func (r *ProposalRepo) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	p, err := scanPGProposal(r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Resolve moves a pending proposal to status in a single conditional write.
// It returns ErrNotPending when no pending row with id exists.
func (r *ProposalRepo) Resolve(ctx context.Context, id, status string, resolvedBy *string, at time.Time) (*models.Proposal, error) {
	p, err := scanPGProposal(r.pool.QueryRow(ctx, `
		UPDATE proposals SET status = $1, resolved_at = $2, resolved_by = $3
		WHERE id = $4 AND status = 'pending'
		RETURNING `+proposalColumns,
		status, at, resolvedBy, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotPending
	}
	return p, err
}

func (r *ProposalRepo) List(ctx context.Context, f ProposalFilter) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	args := []any{}
	if f.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *f.Status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanPGProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

// ExpirePending expires every pending proposal created before cutoff.
func (r *ProposalRepo) ExpirePending(ctx context.Context, cutoff, at time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE proposals SET status = 'expired', resolved_at = $1, resolved_by = NULL
		WHERE status = 'pending' AND created_at < $2
	`, at, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPGProposal(row rowScanner) (*models.Proposal, error) {
	var p models.Proposal
	var params string
	if err := row.Scan(&p.ID, &p.Integration, &p.Action, &params, &p.Status, &p.CreatedAt, &p.ResolvedAt, &p.ResolvedBy); err != nil {
		return nil, err
	}
	p.Params = json.RawMessage(params)
	return &p, nil
}
