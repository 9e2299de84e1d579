package adapters

import (
	"context"

	"pulse_crm_backend/internal/scheduler"
	"pulse_crm_backend/internal/scoring"

	"github.com/google/uuid"
)

// RecalculationQueue adapts the scheduler client to the scoring service's
// deferred refresh port.
type RecalculationQueue struct {
	client *scheduler.Client
}

// NewRecalculationQueue creates a recalculation queue adapter.
func NewRecalculationQueue(client *scheduler.Client) *RecalculationQueue {
	return &RecalculationQueue{client: client}
}

// EnqueueScoreRecalculation queues a deferred score refresh for the client.
func (a *RecalculationQueue) EnqueueScoreRecalculation(ctx context.Context, organizationID, clientID uuid.UUID) error {
	return a.client.EnqueueScoreRecalculation(ctx, scheduler.ScoreRecalculatePayload{
		OrganizationID: organizationID.String(),
		ClientID:       clientID.String(),
	})
}

// Compile-time check that the adapter satisfies the scoring port.
var _ scoring.RecalculationQueue = (*RecalculationQueue)(nil)
