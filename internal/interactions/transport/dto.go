package transport

import (
	"time"

	"github.com/google/uuid"
)

// RecordInteractionRequest contains the payload for recording a touchpoint.
type RecordInteractionRequest struct {
	InteractionType string                 `json:"interactionType" validate:"required,max=64"`
	Source          string                 `json:"source" validate:"omitempty,max=128"`
	Value           float64                `json:"value" validate:"omitempty,gte=0"`
	Metadata        map[string]interface{} `json:"metadata"`
	OccurredAt      *time.Time             `json:"occurredAt"`
}

// ListInteractionsRequest contains query parameters for listing interactions.
type ListInteractionsRequest struct {
	InteractionType *string    `form:"interactionType" validate:"omitempty,max=64"`
	DateFrom        *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo          *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit           int        `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset          int        `form:"offset" validate:"omitempty,min=0"`
}

// LogCommunicationRequest contains the payload for logging a communication.
type LogCommunicationRequest struct {
	Channel    string     `json:"channel" validate:"required,oneof=email call meeting sms chat"`
	Direction  string     `json:"direction" validate:"omitempty,oneof=inbound outbound"`
	Subject    string     `json:"subject" validate:"omitempty,max=256"`
	OccurredAt *time.Time `json:"occurredAt"`
}

// InteractionResponse represents a persisted interaction in API responses.
type InteractionResponse struct {
	ID              uuid.UUID `json:"id"`
	ClientID        uuid.UUID `json:"clientId"`
	InteractionType string    `json:"interactionType"`
	Source          string    `json:"source,omitempty"`
	Value           float64   `json:"value"`
	OccurredAt      time.Time `json:"occurredAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// InteractionListResponse wraps a paginated list of interactions.
type InteractionListResponse struct {
	Items []InteractionResponse `json:"items"`
	Total int                   `json:"total"`
}

// CommunicationResponse represents a persisted communication in API responses.
type CommunicationResponse struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"clientId"`
	Channel    string    `json:"channel"`
	Direction  string    `json:"direction"`
	Subject    string    `json:"subject,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	CreatedAt  time.Time `json:"createdAt"`
}
