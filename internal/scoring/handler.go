package scoring

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pulse_crm_backend/internal/scoring/repository"
	"pulse_crm_backend/internal/scoring/transport"
	"pulse_crm_backend/platform/httpkit"
	"pulse_crm_backend/platform/validator"
)

// Handler handles HTTP requests for lead scores.
type Handler struct {
	svc *Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidClientID  = "invalid client ID"
	msgNoScoreHistory   = "client has no score history"
)

// NewHandler creates a new scoring handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetScore retrieves the current score record for a client.
// GET /api/v1/clients/:clientId/score
func (h *Handler) GetScore(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	record, err := h.svc.GetLeadScore(c.Request.Context(), tenantID, clientID)
	if httpkit.HandleError(c, err) {
		return
	}
	if record == nil {
		httpkit.Error(c, http.StatusNotFound, msgNoScoreHistory, nil)
		return
	}
	httpkit.OK(c, toScoreRecordResponse(*record))
}

// Calculate computes a score snapshot without persisting it.
// GET /api/v1/clients/:clientId/score/calculate
func (h *Handler) Calculate(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	var req transport.CalculateScoreRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snapshot, err := h.svc.CalculateLeadScore(c.Request.Context(), tenantID, clientID, req.LookbackDays)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toSnapshotResponse(snapshot))
}

// Recalculate computes and persists a fresh score for a client.
// POST /api/v1/clients/:clientId/score/recalculate
func (h *Handler) Recalculate(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	record, err := h.svc.RecalculateScore(c.Request.Context(), tenantID, clientID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toScoreRecordResponse(record))
}

// GetInsights derives recommendations and next actions from the latest score.
// GET /api/v1/clients/:clientId/score/insights
func (h *Handler) GetInsights(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	insights, err := h.svc.GetScoringInsights(c.Request.Context(), tenantID, clientID)
	if httpkit.HandleError(c, err) {
		return
	}
	if insights == nil {
		httpkit.Error(c, http.StatusNotFound, msgNoScoreHistory, nil)
		return
	}
	httpkit.OK(c, insights)
}

// List retrieves the latest score per client with optional filters.
// GET /api/v1/scores
func (h *Handler) List(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
	if !ok {
		return
	}

	var req transport.ListScoresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	records, total, err := h.svc.ListLeadScores(c.Request.Context(), tenantID, repository.ScoreFilters{
		MinScore: req.MinScore,
		MaxScore: req.MaxScore,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.ScoreRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toScoreRecordResponse(record))
	}
	httpkit.OK(c, transport.ScoreListResponse{Items: items, Total: total})
}

// Distribution buckets every client's latest score into temperature tiers.
// GET /api/v1/scores/distribution
func (h *Handler) Distribution(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
	if !ok {
		return
	}

	dist, err := h.svc.GetLeadScoreDistribution(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.DistributionResponse{
		Hot:   dist.Hot,
		Warm:  dist.Warm,
		Cold:  dist.Cold,
		Total: dist.Total,
	})
}

// EnqueueRecalculations queues a deferred score refresh for every scored
// client of the organization, e.g. after a rule change.
// POST /api/v1/admin/scores/recalculate
func (h *Handler) EnqueueRecalculations(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
	if !ok {
		return
	}

	queued, err := h.svc.EnqueueRecalculations(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": queued})
}

// Rules exposes the read-only scoring rule table.
// GET /api/v1/scoring/rules
func (h *Handler) Rules(c *gin.Context) {
	table := RuleTable()
	rules := make([]transport.RuleResponse, 0, len(table))
	for _, rule := range table {
		rules = append(rules, transport.RuleResponse{
			Factor:      string(rule.Factor),
			Condition:   rule.Condition,
			Points:      rule.Points,
			Description: rule.Description,
		})
	}
	httpkit.OK(c, transport.RuleTableResponse{Rules: rules})
}

func (h *Handler) clientScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidClientID, nil)
		return uuid.UUID{}, uuid.UUID{}, false
	}

	tenantID, ok := h.tenantScope(c)
	if !ok {
		return uuid.UUID{}, uuid.UUID{}, false
	}

	return clientID, tenantID, true
}

func (h *Handler) tenantScope(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.UUID{}, false
	}

	tenantID := identity.TenantID()
	if tenantID == nil {
		httpkit.Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		return uuid.UUID{}, false
	}

	return *tenantID, true
}

func toScoreRecordResponse(record repository.ScoreRecord) transport.ScoreRecordResponse {
	return transport.ScoreRecordResponse{
		ID:                  record.ID,
		ClientID:            record.ClientID,
		Score:               record.Score,
		Factors:             record.Factors,
		PreviousScore:       record.PreviousScore,
		ScoreChange:         record.ScoreChange,
		InteractionsCount:   record.InteractionsCount,
		CommunicationsCount: record.CommunicationsCount,
		PeriodDays:          record.PeriodDays,
		CalculatedAt:        record.CalculatedAt,
		LastUpdated:         record.LastUpdated,
	}
}

func toSnapshotResponse(snapshot Snapshot) transport.SnapshotResponse {
	return transport.SnapshotResponse{
		ClientID: snapshot.ClientID,
		Score:    snapshot.Score,
		Factors: transport.FactorsResponse{
			Engagement: snapshot.Factors.Engagement,
			Recency:    snapshot.Factors.Recency,
			Frequency:  snapshot.Factors.Frequency,
			Monetary:   snapshot.Factors.Monetary,
			Behavior:   snapshot.Factors.Behavior,
		},
		Metadata: transport.MetadataResponse{
			InteractionsCount:   snapshot.Metadata.InteractionsCount,
			CommunicationsCount: snapshot.Metadata.CommunicationsCount,
			CalculatedAt:        snapshot.Metadata.CalculatedAt,
			PeriodDays:          snapshot.Metadata.PeriodDays,
		},
	}
}
