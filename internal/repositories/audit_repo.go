package repositories

import (
	"context"
	"encoding/json"

	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo is the postgres audit log.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Log(ctx context.Context, entry *models.AuditEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (id, proposal_id, integration, action, params, result, error, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.ProposalID, entry.Integration, entry.Action, string(entry.Params),
		nullableJSON(entry.Result), entry.Error, entry.Timestamp)
	return err
}

func (r *AuditRepo) ListByProposal(ctx context.Context, proposalID string) ([]models.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, proposal_id, integration, action, params, result, error, timestamp
		FROM audit_log WHERE proposal_id = $1
		ORDER BY timestamp ASC
	`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var params string
		var result *string
		if err := rows.Scan(&e.ID, &e.ProposalID, &e.Integration, &e.Action, &params, &result, &e.Error, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Params = json.RawMessage(params)
		if result != nil {
			e.Result = json.RawMessage(*result)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableJSON(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	s := string(raw)
	return &s
}
