package scoring

import (
	"context"

	"pulse_crm_backend/internal/scoring/ports"

	"github.com/google/uuid"
)

// MonetaryScorer computes the monetary factor for a client. The shipped
// default returns 0: there is no revenue signal until the billing
// integration lands. Wiring a real implementation is the supported
// extension point; the factor stays bounded to its category ceiling
// regardless of what the scorer returns.
type MonetaryScorer interface {
	Score(ctx context.Context, organizationID, clientID uuid.UUID, touchpoints []ports.Touchpoint) (int, error)
}

type noopMonetaryScorer struct{}

// NewNoopMonetaryScorer returns the default monetary scorer, which always
// scores 0 pending revenue-data integration.
func NewNoopMonetaryScorer() MonetaryScorer {
	return noopMonetaryScorer{}
}

func (noopMonetaryScorer) Score(context.Context, uuid.UUID, uuid.UUID, []ports.Touchpoint) (int, error) {
	return 0, nil
}
