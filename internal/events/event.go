// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"pulse_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// InMemoryBus re-exports the platform bus implementation.
type InMemoryBus = events.InMemoryBus

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Interaction Domain Events
// =============================================================================

// InteractionRecorded is published after a client touchpoint is persisted.
type InteractionRecorded struct {
	BaseEvent
	InteractionID   uuid.UUID `json:"interactionId"`
	OrganizationID  uuid.UUID `json:"organizationId"`
	ClientID        uuid.UUID `json:"clientId"`
	InteractionType string    `json:"interactionType"`
	Source          string    `json:"source,omitempty"`
	InteractionAt   time.Time `json:"interactionAt"`
}

func (e InteractionRecorded) EventName() string { return "interactions.interaction.recorded" }

// CommunicationLogged is published after a client communication is persisted.
type CommunicationLogged struct {
	BaseEvent
	CommunicationID uuid.UUID `json:"communicationId"`
	OrganizationID  uuid.UUID `json:"organizationId"`
	ClientID        uuid.UUID `json:"clientId"`
	Channel         string    `json:"channel"`
}

func (e CommunicationLogged) EventName() string { return "interactions.communication.logged" }

// =============================================================================
// Scoring Domain Events
// =============================================================================

// LeadScoreRecalculated is published after a new score record is persisted.
type LeadScoreRecalculated struct {
	BaseEvent
	ScoreRecordID  uuid.UUID `json:"scoreRecordId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ClientID       uuid.UUID `json:"clientId"`
	Score          int       `json:"score"`
	ScoreChange    int       `json:"scoreChange"`
}

func (e LeadScoreRecalculated) EventName() string { return "scoring.score.recalculated" }
