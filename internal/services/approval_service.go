package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/events"
	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/fruitctl/fruitctl/internal/obs"
	"github.com/fruitctl/fruitctl/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stores the service runs against; see repositories.Open.
type (
	ProposalStore = repositories.ProposalStore
	AuditStore    = repositories.AuditStore
)

type Option func(*ApprovalService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ApprovalService) { s.now = now }
}

func WithIDFunc(newID func() string) Option {
	return func(s *ApprovalService) { s.newID = newID }
}

// WithActionTimeout bounds action execution on approve. Zero disables the bound.
func WithActionTimeout(d time.Duration) Option {
	return func(s *ApprovalService) { s.actionTimeout = d }
}

// ApprovalService owns the proposal lifecycle. The registry is fixed at
// construction; a nil registry records decisions without executing anything.
type ApprovalService struct {
	proposals ProposalStore
	audit     AuditStore
	registry  *integrations.Registry
	publisher events.Publisher
	metrics   *obs.Metrics
	log       *zap.Logger

	now           func() time.Time
	newID         func() string
	actionTimeout time.Duration
}

func NewApprovalService(
	proposals ProposalStore,
	audit AuditStore,
	registry *integrations.Registry,
	publisher events.Publisher,
	metrics *obs.Metrics,
	log *zap.Logger,
	opts ...Option,
) *ApprovalService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if metrics == nil {
		metrics = obs.NewMetrics(nil)
	}
	s := &ApprovalService{
		proposals:     proposals,
		audit:         audit,
		registry:      registry,
		publisher:     publisher,
		metrics:       metrics,
		log:           log,
		now:           time.Now,
		newID:         uuid.NewString,
		actionTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Propose stores a new pending proposal. Params are not interpreted here;
// integrations validate them before proposing.
func (s *ApprovalService) Propose(ctx context.Context, integration, action string, params json.RawMessage) (*models.Proposal, error) {
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	if !json.Valid(params) {
		return nil, apperr.Validation("params must be valid JSON")
	}

	p := &models.Proposal{
		ID:          s.newID(),
		Integration: integration,
		Action:      action,
		Params:      params,
		Status:      models.ProposalStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	s.metrics.ProposalsCreated.WithLabelValues(integration, action).Inc()
	s.log.Info("proposal created",
		zap.String("proposal_id", p.ID),
		zap.String("integration", integration),
		zap.String("action", action),
	)
	_ = s.publisher.Publish(ctx, events.StreamProposals, events.Event{
		Type: events.EventProposalCreated,
		Payload: map[string]any{
			"id":          p.ID,
			"integration": integration,
			"action":      action,
		},
	})
	return p, nil
}

func (s *ApprovalService) Get(ctx context.Context, id string) (*models.Proposal, error) {
	p, err := s.proposals.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.ProposalNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return p, nil
}

// Approve records the decision and then runs the registered action, if any.
// The outcome of the action only reaches the audit log; the returned
// proposal is approved either way. Once called it runs to completion
// regardless of ctx cancellation.
func (s *ApprovalService) Approve(ctx context.Context, id, resolvedBy string) (*models.Proposal, error) {
	ctx = context.WithoutCancel(ctx)
	p, err := s.resolve(ctx, id, models.ProposalStatusApproved, resolvedBy)
	if err != nil {
		return nil, err
	}

	action, ok := s.registry.Lookup(p.Integration, p.Action)
	if !ok {
		s.log.Info("no action registered, decision only",
			zap.String("proposal_id", p.ID),
			zap.String("integration", p.Integration),
			zap.String("action", p.Action),
		)
		return p, nil
	}

	outcome := s.execute(ctx, action, p.Params)
	s.recordOutcome(ctx, p, outcome)
	return p, nil
}

func (s *ApprovalService) Reject(ctx context.Context, id, resolvedBy string) (*models.Proposal, error) {
	ctx = context.WithoutCancel(ctx)
	return s.resolve(ctx, id, models.ProposalStatusRejected, resolvedBy)
}

// List returns proposals ordered by creation time. An empty status lists all.
func (s *ApprovalService) List(ctx context.Context, status string) ([]models.Proposal, error) {
	var f repositories.ProposalFilter
	if status != "" {
		if !models.IsValidStatus(status) {
			return nil, apperr.Validation("invalid status %q", status).
				WithDetails(map[string]any{"status": status})
		}
		f.Status = &status
	}
	items, err := s.proposals.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return items, nil
}

// ExpireStale expires pending proposals created more than ttl ago and
// returns how many were expired.
func (s *ApprovalService) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	if ttl < 0 {
		return 0, apperr.Validation("ttl must not be negative")
	}
	ctx = context.WithoutCancel(ctx)
	now := s.now().UTC()
	n, err := s.proposals.ExpirePending(ctx, now.Add(-ttl), now)
	if err != nil {
		return 0, fmt.Errorf("expire proposals: %w", err)
	}
	if n > 0 {
		s.metrics.ProposalsExpired.Add(float64(n))
		s.log.Info("proposals expired", zap.Int64("count", n), zap.Duration("ttl", ttl))
		_ = s.publisher.Publish(ctx, events.StreamProposals, events.Event{
			Type:    events.EventProposalsExpired,
			Payload: map[string]any{"count": n},
		})
	}
	return int(n), nil
}

// AuditLog returns the execution records of a proposal, oldest first.
func (s *ApprovalService) AuditLog(ctx context.Context, id string) ([]models.AuditEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.audit.ListByProposal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func (s *ApprovalService) resolve(ctx context.Context, id, status, resolvedBy string) (*models.Proposal, error) {
	if !models.IsValidTransition(models.ProposalStatusPending, status) {
		return nil, fmt.Errorf("resolve proposal: invalid target status %q", status)
	}
	p, err := s.proposals.Resolve(ctx, id, status, &resolvedBy, s.now().UTC())
	if errors.Is(err, repositories.ErrNotPending) {
		current, getErr := s.proposals.GetByID(ctx, id)
		if errors.Is(getErr, repositories.ErrNotFound) {
			return nil, apperr.ProposalNotFound(id)
		}
		if getErr != nil {
			return nil, fmt.Errorf("get proposal: %w", getErr)
		}
		return nil, apperr.AlreadyResolved(id, current.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve proposal: %w", err)
	}

	s.metrics.ProposalsResolved.WithLabelValues(status).Inc()
	s.log.Info("proposal resolved",
		zap.String("proposal_id", id),
		zap.String("status", status),
		zap.String("resolved_by", resolvedBy),
	)
	_ = s.publisher.Publish(ctx, events.StreamProposals, events.Event{
		Type: events.EventProposalResolved,
		Payload: map[string]any{
			"id":         id,
			"status":     status,
			"resolvedBy": resolvedBy,
		},
	})
	return p, nil
}

// executionOutcome holds exactly one of an encoded result or an error.
type executionOutcome struct {
	result json.RawMessage
	err    error
}

func (o executionOutcome) failed() bool { return o.err != nil }

// execute runs action bounded by the action timeout. ctx is already
// detached from the caller's cancellation.
func (s *ApprovalService) execute(ctx context.Context, action integrations.Action, params json.RawMessage) (out executionOutcome) {
	var cancel context.CancelFunc
	if s.actionTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.actionTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = executionOutcome{err: fmt.Errorf("action panicked: %v", r)}
		}
	}()

	result, err := action.Execute(ctx, params)
	if err != nil {
		return executionOutcome{err: err}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return executionOutcome{err: fmt.Errorf("encode result: %w", err)}
	}
	return executionOutcome{result: data}
}

func (s *ApprovalService) recordOutcome(ctx context.Context, p *models.Proposal, outcome executionOutcome) {
	entry := &models.AuditEntry{
		ID:          s.newID(),
		ProposalID:  p.ID,
		Integration: p.Integration,
		Action:      p.Action,
		Params:      p.Params,
		Timestamp:   s.now().UTC(),
	}
	if outcome.failed() {
		msg := outcome.err.Error()
		entry.Error = &msg
		s.log.Warn("action execution failed",
			zap.String("proposal_id", p.ID),
			zap.String("integration", p.Integration),
			zap.String("action", p.Action),
			zap.Error(outcome.err),
		)
	} else {
		entry.Result = outcome.result
	}
	label := "success"
	if !entry.Succeeded() {
		label = "error"
	}
	s.metrics.ActionExecutions.WithLabelValues(p.Integration, p.Action, label).Inc()

	if err := s.audit.Log(ctx, entry); err != nil {
		s.log.Error("failed to write audit entry",
			zap.String("proposal_id", p.ID),
			zap.Error(err),
		)
	}
}
