package models

import (
	"encoding/json"
	"time"
)

// Proposal statuses
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
	ProposalStatusExpired  = "expired"
)

// Valid state transitions: from -> []to
var ValidProposalTransitions = map[string][]string{
	ProposalStatusPending:  {ProposalStatusApproved, ProposalStatusRejected, ProposalStatusExpired},
	ProposalStatusApproved: {},
	ProposalStatusRejected: {},
	ProposalStatusExpired:  {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidProposalTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s names a known proposal status.
func IsValidStatus(s string) bool {
	_, ok := ValidProposalTransitions[s]
	return ok
}

// Proposal is a requested side effect waiting for (or having received) a human decision.
// ResolvedAt and ResolvedBy are nil while pending. Expiry sets ResolvedAt only.
type Proposal struct {
	ID          string          `json:"id"`
	Integration string          `json:"integration"`
	Action      string          `json:"action"`
	Params      json.RawMessage `json:"params"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt"`
	ResolvedBy  *string         `json:"resolvedBy"`
}
