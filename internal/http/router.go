package http

import (
	"context"
	"time"

	"github.com/fruitctl/fruitctl/internal/auth"
	"github.com/fruitctl/fruitctl/internal/config"
	"github.com/fruitctl/fruitctl/internal/http/dto"
	"github.com/fruitctl/fruitctl/internal/http/handlers"
	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/fruitctl/fruitctl/internal/middleware"
	"github.com/fruitctl/fruitctl/internal/obs"
	"github.com/fruitctl/fruitctl/internal/rbac"
	"github.com/fruitctl/fruitctl/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewApp creates the Fiber app with the JSON error envelope.
func NewApp(log *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "fruitctl",
		DisableStartupMessage: true,
		ErrorHandler:          dto.ErrorHandler(log),
	})
}

type Deps struct {
	Config       *config.Config
	Log          *zap.Logger
	Redis        *redis.Client // nil disables the shared rate limiter
	Gate         *auth.Gate
	Approval     *services.ApprovalService
	Registration *integrations.Registration
	Metrics      *obs.Metrics
	Gatherer     prometheus.Gatherer
	WSHub        *handlers.WSHub // nil when there is no event stream
}

func SetupRouter(ctx context.Context, app *fiber.App, d Deps) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, " + handlers.HeaderActor,
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(d.Log))
	if d.Metrics != nil {
		app.Use(middleware.MetricsMiddleware(d.Metrics))
	}

	metaHandler := handlers.NewMetaHandler(d.Registration)

	// Public
	app.Get("/health", metaHandler.Health)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// WebSocket authenticates with ?token=
	if d.WSHub != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws", websocket.New(d.WSHub.HandleWS))
	}

	if d.Redis != nil {
		app.Use(middleware.RateLimitMiddleware(d.Redis, d.Config.RateLimit, time.Minute))
	} else {
		app.Use(middleware.LocalRateLimitMiddleware(ctx, d.Config.RateLimit))
	}

	authn := middleware.AuthMiddleware(d.Gate, d.Log)
	read := middleware.RequirePermission(rbac.PermReadProposals)
	resolve := middleware.RequirePermission(rbac.PermResolveProposals)

	app.Get("/capabilities", authn, read, metaHandler.GetCapabilities)

	// Proposals
	proposalHandler := handlers.NewProposalHandler(d.Approval, d.Log)
	proposals := app.Group("/proposals", authn)
	proposals.Get("/", read, proposalHandler.ListProposals)
	proposals.Get("/:id", read, proposalHandler.GetProposal)
	proposals.Get("/:id/audit", read, proposalHandler.GetAuditLog)
	proposals.Post("/:id/approve", resolve, proposalHandler.ApproveProposal)
	proposals.Post("/:id/reject", resolve, proposalHandler.RejectProposal)

	// Integrations, mounted only after the approval service exists
	if d.Registration != nil {
		d.Registration.Mount(app, integrations.MountOptions{
			Config:   d.Config,
			Approval: d.Approval,
			Log:      d.Log,
		}, authn, middleware.RequirePermission(rbac.PermUseIntegrations))
	}
}
