// Package adapters bridges module repositories to the narrow ports other
// modules consume, keeping the bounded contexts decoupled from each other's
// storage models.
package adapters

import (
	"context"
	"time"

	"pulse_crm_backend/internal/interactions/repository"
	"pulse_crm_backend/internal/scoring/ports"

	"github.com/google/uuid"
)

// InteractionLog adapts the interactions repository to the scoring engine's
// read-only touchpoint port.
type InteractionLog struct {
	repo repository.InteractionReader
}

// NewInteractionLog creates an interaction log adapter.
func NewInteractionLog(repo repository.InteractionReader) *InteractionLog {
	return &InteractionLog{repo: repo}
}

// ListSince returns the client's touchpoints on or after the given instant.
func (a *InteractionLog) ListSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]ports.Touchpoint, error) {
	interactions, err := a.repo.ListInteractionsSince(ctx, organizationID, clientID, since)
	if err != nil {
		return nil, err
	}

	touchpoints := make([]ports.Touchpoint, 0, len(interactions))
	for _, interaction := range interactions {
		touchpoints = append(touchpoints, ports.Touchpoint{
			Type:       interaction.InteractionType,
			Source:     interaction.Source,
			Value:      interaction.Value,
			OccurredAt: interaction.OccurredAt,
		})
	}

	return touchpoints, nil
}

// CommunicationLog adapts the interactions repository to the scoring
// engine's read-only communication port.
type CommunicationLog struct {
	repo repository.InteractionReader
}

// NewCommunicationLog creates a communication log adapter.
func NewCommunicationLog(repo repository.InteractionReader) *CommunicationLog {
	return &CommunicationLog{repo: repo}
}

// ListSince returns the client's communications on or after the given instant.
func (a *CommunicationLog) ListSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]ports.Communication, error) {
	communications, err := a.repo.ListCommunicationsSince(ctx, organizationID, clientID, since)
	if err != nil {
		return nil, err
	}

	mapped := make([]ports.Communication, 0, len(communications))
	for _, communication := range communications {
		mapped = append(mapped, ports.Communication{
			Channel:    communication.Channel,
			OccurredAt: communication.OccurredAt,
		})
	}

	return mapped, nil
}

// Compile-time checks that the adapters satisfy the scoring ports.
var (
	_ ports.InteractionLog   = (*InteractionLog)(nil)
	_ ports.CommunicationLog = (*CommunicationLog)(nil)
)
