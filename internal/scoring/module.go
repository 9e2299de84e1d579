// Package scoring provides the lead scoring bounded context module.
// It converts raw client interaction history into a bounded, auditable
// score and derives recommendations from the factor breakdown.
package scoring

import (
	"pulse_crm_backend/internal/events"
	apphttp "pulse_crm_backend/internal/http"
	"pulse_crm_backend/internal/scoring/ports"
	"pulse_crm_backend/internal/scoring/repository"
	"pulse_crm_backend/platform/config"
	"pulse_crm_backend/platform/logger"
	"pulse_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the scoring bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    repository.Repository
}

// NewModule creates and initializes the scoring module with all its
// dependencies. The interaction and communication logs are owned by the
// interactions module and injected as read-only collaborators.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg config.ScoringConfig, log *logger.Logger, interactionLog ports.InteractionLog, communicationLog ports.CommunicationLog) *Module {
	repo := repository.New(pool)
	calc := NewCalculator(interactionLog, communicationLog, NewNoopMonetaryScorer())
	svc := New(repo, calc, bus, cfg, log)
	h := NewHandler(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scoring"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// Repository returns the score store for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// SetMonetaryScorer replaces the default no-op monetary scorer, e.g. once a
// billing integration can supply a revenue signal.
func (m *Module) SetMonetaryScorer(scorer MonetaryScorer) {
	m.service.calc.monetary = scorer
}

// SetRecalculationQueue wires the deferred refresh backend into the service.
func (m *Module) SetRecalculationQueue(queue RecalculationQueue) {
	m.service.SetRecalculationQueue(queue)
}

// RegisterRoutes mounts scoring routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	clients := ctx.Protected.Group("/clients/:clientId")
	clients.GET("/score", m.handler.GetScore)
	clients.GET("/score/calculate", m.handler.Calculate)
	clients.POST("/score/recalculate", m.handler.Recalculate)
	clients.GET("/score/insights", m.handler.GetInsights)

	ctx.Protected.GET("/scores", m.handler.List)
	ctx.Protected.GET("/scores/distribution", m.handler.Distribution)
	ctx.Protected.GET("/scoring/rules", m.handler.Rules)

	ctx.Admin.POST("/scores/recalculate", m.handler.EnqueueRecalculations)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
