package adapters

import (
	"context"

	"pulse_crm_backend/internal/interactions"
	"pulse_crm_backend/internal/scoring"

	"github.com/google/uuid"
)

// ScoreRecalculator adapts the scoring service to the error-only
// recalculation port used by the interactions service and the scheduler
// worker.
type ScoreRecalculator struct {
	svc *scoring.Service
}

// NewScoreRecalculator creates a score recalculator adapter.
func NewScoreRecalculator(svc *scoring.Service) *ScoreRecalculator {
	return &ScoreRecalculator{svc: svc}
}

// RecalculateScore computes and persists a fresh score for the client.
func (a *ScoreRecalculator) RecalculateScore(ctx context.Context, organizationID, clientID uuid.UUID) error {
	_, err := a.svc.RecalculateScore(ctx, organizationID, clientID)
	return err
}

// Compile-time check that the adapter satisfies the interactions port.
var _ interactions.ScoreRecalculator = (*ScoreRecalculator)(nil)
