// Package integrations defines the plugin contract for capability providers,
// probes and mounts them at startup, and builds the action registry the
// approval service executes approved proposals against.
package integrations

import (
	"context"
	"encoding/json"

	"github.com/fruitctl/fruitctl/internal/config"
	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NativeDep is a startup check for a tool the integration shells out to.
type NativeDep struct {
	Name  string
	Check func(ctx context.Context) bool
}

// Capability is a read-only query an integration exposes.
type Capability struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	RequiresApproval bool    `json:"requiresApproval"`
	ParamsSchema     *Schema `json:"paramsSchema,omitempty"`
}

// ExecuteFunc performs an approved action. params are the proposal's params.
type ExecuteFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Action is a side effect that only runs once a proposal for it is approved.
type Action struct {
	Name         string
	Description  string
	ParamsSchema *Schema
	Execute      ExecuteFunc
}

type Manifest struct {
	Name         string
	Version      string
	NativeDeps   []NativeDep
	Capabilities []Capability
	Actions      map[string]Action
}

// Proposer records a pending proposal. The approval service implements it.
type Proposer interface {
	Propose(ctx context.Context, integration, action string, params json.RawMessage) (*models.Proposal, error)
}

type MountOptions struct {
	Config   *config.Config
	Approval Proposer
	Log      *zap.Logger
}

// MountFunc registers an integration's routes on a router already scoped to
// the integration's namespace.
type MountFunc func(r fiber.Router, opts MountOptions)

// Integration pairs a manifest with the function that mounts its routes.
type Integration struct {
	Manifest Manifest
	Mount    MountFunc
}
