package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Validation("bad %s", "input"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{ProposalNotFound("p-1"), http.StatusNotFound},
		{AlreadyResolved("p-1", "approved"), http.StatusConflict},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("admin only"), http.StatusForbidden},
		{Internal(), http.StatusInternalServerError},
		{New("SOMETHING_ELSE", "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.status {
				t.Errorf("Status() = %d, want %d", got, tt.status)
			}
			if tt.err.Retryable {
				t.Errorf("%s should not be retryable", tt.err.Code)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("resolve: %w", AlreadyResolved("p-1", "rejected"))

	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatal("expected wrapped error to match ErrAlreadyResolved")
	}
	if errors.Is(err, ErrProposalNotFound) {
		t.Fatal("did not expect match with ErrProposalNotFound")
	}

	e, ok := As(err)
	if !ok {
		t.Fatal("As() failed on wrapped *Error")
	}
	if e.Message != "Proposal p-1 is already rejected" {
		t.Errorf("unexpected message %q", e.Message)
	}
	if e.Details["status"] != "rejected" {
		t.Errorf("details status = %v, want rejected", e.Details["status"])
	}
}

func TestAsOnForeignError(t *testing.T) {
	if _, ok := As(errors.New("boom")); ok {
		t.Fatal("As() should not match a plain error")
	}
}
