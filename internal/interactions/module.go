package interactions

import (
	"pulse_crm_backend/internal/events"
	apphttp "pulse_crm_backend/internal/http"
	"pulse_crm_backend/internal/interactions/repository"
	"pulse_crm_backend/platform/logger"
	"pulse_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the interactions bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    repository.Repository
}

// NewModule creates and initializes the interactions module. The score
// recalculator is wired afterwards via SetScoreRecalculator because the
// scoring module reads this module's repository.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := New(repo, bus, log)
	h := NewHandler(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "interactions"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// Repository returns the interaction store for adapter wiring.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// SetScoreRecalculator wires the scoring dependency into the service.
func (m *Module) SetScoreRecalculator(recalc ScoreRecalculator) {
	m.service.SetScoreRecalculator(recalc)
}

// RegisterRoutes mounts interaction routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	clients := ctx.Protected.Group("/clients/:clientId")
	clients.POST("/interactions", m.handler.Record)
	clients.GET("/interactions", m.handler.List)
	clients.POST("/communications", m.handler.LogCommunication)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
