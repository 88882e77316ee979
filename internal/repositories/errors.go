package repositories

import "errors"

var (
	ErrNotFound = errors.New("repositories: not found")
	// ErrNotPending means a conditional resolve matched no pending row.
	ErrNotPending = errors.New("repositories: proposal not pending")
)

type ProposalFilter struct {
	Status *string
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
