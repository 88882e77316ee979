package handlers

import (
	"unicode/utf8"

	"github.com/fruitctl/fruitctl/internal/http/dto"
	"github.com/fruitctl/fruitctl/internal/middleware"
	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/fruitctl/fruitctl/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderActor optionally names the person behind an admin decision.
const HeaderActor = "X-Fruitctl-Actor"

const maxActorLength = 128

type ProposalHandler struct {
	approval *services.ApprovalService
	log      *zap.Logger
}

func NewProposalHandler(approval *services.ApprovalService, log *zap.Logger) *ProposalHandler {
	return &ProposalHandler{approval: approval, log: log}
}

func (h *ProposalHandler) ListProposals(c *fiber.Ctx) error {
	var q dto.ListProposalsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}

	items, err := h.approval.List(c.UserContext(), q.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse[models.Proposal]{Items: items})
}

func (h *ProposalHandler) GetProposal(c *fiber.Ctx) error {
	p, err := h.approval.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProposalHandler) ApproveProposal(c *fiber.Ctx) error {
	p, err := h.approval.Approve(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProposalHandler) RejectProposal(c *fiber.Ctx) error {
	p, err := h.approval.Reject(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProposalHandler) GetAuditLog(c *fiber.Ctx) error {
	entries, err := h.approval.AuditLog(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse[models.AuditEntry]{Items: entries})
}

// actor is recorded as resolvedBy: the actor header when present, else the role.
func actor(c *fiber.Ctx) string {
	if a := c.Get(HeaderActor); a != "" {
		return truncate(a, maxActorLength)
	}
	return string(middleware.GetRole(c))
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
