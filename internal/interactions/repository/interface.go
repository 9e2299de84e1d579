// Package repository provides data access for client interactions and
// communications.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Interaction is a persisted client touchpoint.
type Interaction struct {
	ID              uuid.UUID `json:"id"`
	OrganizationID  uuid.UUID `json:"organizationId"`
	ClientID        uuid.UUID `json:"clientId"`
	InteractionType string    `json:"interactionType"`
	Source          string    `json:"source,omitempty"`
	Value           float64   `json:"value"`
	Metadata        []byte    `json:"-"`
	OccurredAt      time.Time `json:"occurredAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Communication is a persisted client communication (email, call, meeting).
type Communication struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ClientID       uuid.UUID `json:"clientId"`
	Channel        string    `json:"channel"`
	Direction      string    `json:"direction"`
	Subject        string    `json:"subject,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateInteractionParams contains the data needed to record an interaction.
type CreateInteractionParams struct {
	OrganizationID  uuid.UUID
	ClientID        uuid.UUID
	InteractionType string
	Source          string
	Value           float64
	Metadata        []byte
	OccurredAt      time.Time
}

// CreateCommunicationParams contains the data needed to log a communication.
type CreateCommunicationParams struct {
	OrganizationID uuid.UUID
	ClientID       uuid.UUID
	Channel        string
	Direction      string
	Subject        string
	OccurredAt     time.Time
}

// InteractionFilters narrows interaction listings.
type InteractionFilters struct {
	InteractionType *string
	DateFrom        *time.Time
	DateTo          *time.Time
	Limit           int
	Offset          int
}

// InteractionReader defines read operations over interaction history.
type InteractionReader interface {
	ListInteractions(ctx context.Context, organizationID, clientID uuid.UUID, filters InteractionFilters) ([]Interaction, int, error)
	ListInteractionsSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]Interaction, error)
	ListCommunicationsSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]Communication, error)
}

// InteractionWriter defines write operations for touchpoints.
type InteractionWriter interface {
	InsertInteraction(ctx context.Context, params CreateInteractionParams) (Interaction, error)
	InsertCommunication(ctx context.Context, params CreateCommunicationParams) (Communication, error)
}

// Repository combines read and write access to interaction history.
type Repository interface {
	InteractionReader
	InteractionWriter
}
