package models

import (
	"encoding/json"
	"time"
)

// AuditEntry records one execution of an approved proposal's action.
// Exactly one of Result and Error is set.
type AuditEntry struct {
	ID          string          `json:"id"`
	ProposalID  string          `json:"proposalId"`
	Integration string          `json:"integration"`
	Action      string          `json:"action"`
	Params      json.RawMessage `json:"params"`
	Result      json.RawMessage `json:"result"`
	Error       *string         `json:"error"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (e *AuditEntry) Succeeded() bool {
	return e.Error == nil
}
