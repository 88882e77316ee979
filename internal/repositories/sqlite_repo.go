package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fruitctl/fruitctl/internal/models"
)

// SQLiteProposalRepo is the embedded proposal store. Timestamps are stored as
// unix nanoseconds so range comparisons and ordering stay numeric.
type SQLiteProposalRepo struct {
	db *sql.DB
}

func NewSQLiteProposalRepo(db *sql.DB) *SQLiteProposalRepo {
	return &SQLiteProposalRepo{db: db}
}

func (r *SQLiteProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO proposals (id, integration, action, params, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Integration, p.Action, string(p.Params), p.Status, p.CreatedAt.UnixNano())
	return err
}

func (r *SQLiteProposalRepo) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	p, err := scanSQLiteProposal(r.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *SQLiteProposalRepo) Resolve(ctx context.Context, id, status string, resolvedBy *string, at time.Time) (*models.Proposal, error) {
	p, err := scanSQLiteProposal(r.db.QueryRowContext(ctx, `
		UPDATE proposals SET status = ?, resolved_at = ?, resolved_by = ?
		WHERE id = ? AND status = 'pending'
		RETURNING `+proposalColumns,
		status, at.UnixNano(), resolvedBy, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotPending
	}
	return p, err
}

func (r *SQLiteProposalRepo) List(ctx context.Context, f ProposalFilter) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	args := []any{}
	if f.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, *f.Status)
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanSQLiteProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

func (r *SQLiteProposalRepo) ExpirePending(ctx context.Context, cutoff, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE proposals SET status = 'expired', resolved_at = ?, resolved_by = NULL
		WHERE status = 'pending' AND created_at < ?
	`, at.UnixNano(), cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSQLiteProposal(row rowScanner) (*models.Proposal, error) {
	var p models.Proposal
	var params string
	var createdAt int64
	var resolvedAt sql.NullInt64
	var resolvedBy sql.NullString
	if err := row.Scan(&p.ID, &p.Integration, &p.Action, &params, &p.Status, &createdAt, &resolvedAt, &resolvedBy); err != nil {
		return nil, err
	}
	p.Params = json.RawMessage(params)
	p.CreatedAt = fromUnixNano(createdAt)
	if resolvedAt.Valid {
		t := fromUnixNano(resolvedAt.Int64)
		p.ResolvedAt = &t
	}
	if resolvedBy.Valid {
		p.ResolvedBy = &resolvedBy.String
	}
	return &p, nil
}

// SQLiteAuditRepo is the embedded audit log.
type SQLiteAuditRepo struct {
	db *sql.DB
}

func NewSQLiteAuditRepo(db *sql.DB) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: db}
}

func (r *SQLiteAuditRepo) Log(ctx context.Context, entry *models.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, proposal_id, integration, action, params, result, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ProposalID, entry.Integration, entry.Action, string(entry.Params),
		nullableJSON(entry.Result), entry.Error, entry.Timestamp.UnixNano())
	return err
}

func (r *SQLiteAuditRepo) ListByProposal(ctx context.Context, proposalID string) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, integration, action, params, result, error, timestamp
		FROM audit_log WHERE proposal_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var params string
		var result, errMsg sql.NullString
		var ts int64
		if err := rows.Scan(&e.ID, &e.ProposalID, &e.Integration, &e.Action, &params, &result, &errMsg, &ts); err != nil {
			return nil, err
		}
		e.Params = json.RawMessage(params)
		if result.Valid {
			e.Result = json.RawMessage(result.String)
		}
		if errMsg.Valid {
			msg := errMsg.String
			e.Error = &msg
		}
		e.Timestamp = fromUnixNano(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
