// Package ports defines the narrow read interfaces the scoring engine needs
// from the rest of the system. Adapters in internal/adapters bridge these to
// the owning modules, keeping the engine decoupled from their repositories.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Touchpoint is a single client interaction as seen by the scoring engine.
type Touchpoint struct {
	Type       string
	Source     string
	Value      float64
	OccurredAt time.Time
}

// Communication is a logged client communication. The engine only counts
// these today; no scoring rule reads their content.
type Communication struct {
	Channel    string
	OccurredAt time.Time
}

// InteractionLog provides windowed read access to the append-only
// interaction history of a client.
type InteractionLog interface {
	ListSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]Touchpoint, error)
}

// CommunicationLog provides windowed read access to the append-only
// communication history of a client.
type CommunicationLog interface {
	ListSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]Communication, error)
}
