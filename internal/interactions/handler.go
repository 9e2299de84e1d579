package interactions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pulse_crm_backend/internal/interactions/repository"
	"pulse_crm_backend/internal/interactions/transport"
	"pulse_crm_backend/platform/httpkit"
	"pulse_crm_backend/platform/validator"
)

// Handler handles HTTP requests for client interactions and communications.
type Handler struct {
	svc *Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidClientID  = "invalid client ID"
)

// NewHandler creates a new interactions handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Record persists a client touchpoint and refreshes the client's score.
// POST /api/v1/clients/:clientId/interactions
func (h *Handler) Record(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	var req transport.RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := RecordInteractionParams{
		OrganizationID:  tenantID,
		ClientID:        clientID,
		InteractionType: req.InteractionType,
		Source:          req.Source,
		Value:           req.Value,
		Metadata:        req.Metadata,
	}
	if req.OccurredAt != nil {
		params.OccurredAt = *req.OccurredAt
	}

	interaction, err := h.svc.RecordInteraction(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toInteractionResponse(interaction))
}

// List retrieves a client's interaction history, newest first.
// GET /api/v1/clients/:clientId/interactions
func (h *Handler) List(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	var req transport.ListInteractionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	items, total, err := h.svc.ListInteractions(c.Request.Context(), tenantID, clientID, repository.InteractionFilters{
		InteractionType: req.InteractionType,
		DateFrom:        req.DateFrom,
		DateTo:          req.DateTo,
		Limit:           req.Limit,
		Offset:          req.Offset,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.InteractionResponse, 0, len(items))
	for _, interaction := range items {
		responses = append(responses, toInteractionResponse(interaction))
	}
	httpkit.OK(c, transport.InteractionListResponse{Items: responses, Total: total})
}

// LogCommunication persists a client communication.
// POST /api/v1/clients/:clientId/communications
func (h *Handler) LogCommunication(c *gin.Context) {
	clientID, tenantID, ok := h.clientScope(c)
	if !ok {
		return
	}

	var req transport.LogCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := LogCommunicationParams{
		OrganizationID: tenantID,
		ClientID:       clientID,
		Channel:        req.Channel,
		Direction:      req.Direction,
		Subject:        req.Subject,
	}
	if req.OccurredAt != nil {
		params.OccurredAt = *req.OccurredAt
	}

	communication, err := h.svc.LogCommunication(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toCommunicationResponse(communication))
}

func (h *Handler) clientScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidClientID, nil)
		return uuid.UUID{}, uuid.UUID{}, false
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.UUID{}, uuid.UUID{}, false
	}

	tenantID := identity.TenantID()
	if tenantID == nil {
		httpkit.Error(c, http.StatusBadRequest, "tenant ID is required", nil)
		return uuid.UUID{}, uuid.UUID{}, false
	}

	return clientID, *tenantID, true
}

func toInteractionResponse(interaction repository.Interaction) transport.InteractionResponse {
	return transport.InteractionResponse{
		ID:              interaction.ID,
		ClientID:        interaction.ClientID,
		InteractionType: interaction.InteractionType,
		Source:          interaction.Source,
		Value:           interaction.Value,
		OccurredAt:      interaction.OccurredAt,
		CreatedAt:       interaction.CreatedAt,
	}
}

func toCommunicationResponse(communication repository.Communication) transport.CommunicationResponse {
	return transport.CommunicationResponse{
		ID:         communication.ID,
		ClientID:   communication.ClientID,
		Channel:    communication.Channel,
		Direction:  communication.Direction,
		Subject:    communication.Subject,
		OccurredAt: communication.OccurredAt,
		CreatedAt:  communication.CreatedAt,
	}
}
