package scoring

import (
	"context"
	"time"

	"pulse_crm_backend/internal/scoring/ports"
	"pulse_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Factors holds the five bounded sub-scores of a lead score.
// Each value is non-negative and never exceeds its category ceiling.
type Factors struct {
	Engagement int `json:"engagement"`
	Recency    int `json:"recency"`
	Frequency  int `json:"frequency"`
	Monetary   int `json:"monetary"`
	Behavior   int `json:"behavior"`
}

// Total returns the raw factor sum before the final score clamp.
func (f Factors) Total() int {
	return f.Engagement + f.Recency + f.Frequency + f.Monetary + f.Behavior
}

// Computation is the result of a factor calculation over a lookback window.
type Computation struct {
	Factors             Factors
	InteractionsCount   int
	CommunicationsCount int
	LastActivity        *time.Time
}

// Calculator computes scoring factors from a client's windowed history.
// It is a pure read path: no calculation ever writes anything.
type Calculator struct {
	interactions   ports.InteractionLog
	communications ports.CommunicationLog
	monetary       MonetaryScorer
	now            func() time.Time
}

// NewCalculator creates a factor calculator over the given collaborator logs.
func NewCalculator(interactions ports.InteractionLog, communications ports.CommunicationLog, monetary MonetaryScorer) *Calculator {
	if monetary == nil {
		monetary = NewNoopMonetaryScorer()
	}
	return &Calculator{
		interactions:   interactions,
		communications: communications,
		monetary:       monetary,
		now:            time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (c *Calculator) WithNow(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Compute fetches the client's history for the lookback window and derives
// the five sub-scores. A collaborator failure propagates immediately; no
// partial factors are ever returned.
func (c *Calculator) Compute(ctx context.Context, organizationID, clientID uuid.UUID, lookbackDays int) (Computation, error) {
	if lookbackDays <= 0 {
		return Computation{}, apperr.Validation("lookbackDays must be a positive number of days")
	}

	now := c.now().UTC()
	since := now.AddDate(0, 0, -lookbackDays)

	touchpoints, err := c.interactions.ListSince(ctx, organizationID, clientID, since)
	if err != nil {
		return Computation{}, err
	}

	communications, err := c.communications.ListSince(ctx, organizationID, clientID, since)
	if err != nil {
		return Computation{}, err
	}

	monetary, err := c.monetary.Score(ctx, organizationID, clientID, touchpoints)
	if err != nil {
		return Computation{}, err
	}

	var lastActivity *time.Time
	engagement := 0
	behavior := 0
	for _, tp := range touchpoints {
		engagement += engagementPoints[InteractionType(tp.Type)]
		behavior += behaviorPoints[InteractionType(tp.Type)]

		occurred := tp.OccurredAt
		if lastActivity == nil || occurred.After(*lastActivity) {
			lastActivity = &occurred
		}
	}

	factors := Factors{
		Engagement: clampFactor(engagement, maxEngagement),
		Recency:    recencyScore(now, lastActivity),
		Frequency:  frequencyScore(len(touchpoints)),
		Monetary:   clampFactor(monetary, maxMonetary),
		Behavior:   clampFactor(behavior, maxBehavior),
	}

	return Computation{
		Factors:             factors,
		InteractionsCount:   len(touchpoints),
		CommunicationsCount: len(communications),
		LastActivity:        lastActivity,
	}, nil
}

// recencyScore is a pure step function of days since the last activity.
func recencyScore(now time.Time, lastActivity *time.Time) int {
	if lastActivity == nil {
		return 0
	}

	days := int(now.Sub(*lastActivity) / (24 * time.Hour))
	switch {
	case days <= recencyHotDays:
		return recencyHotPoints
	case days <= recencyWarmDays:
		return recencyWarmPoints
	case days <= recencyColdDays:
		return recencyColdPoints
	default:
		return 0
	}
}

// frequencyScore is a pure step function of the windowed interaction count.
func frequencyScore(count int) int {
	switch {
	case count >= frequencyHighCount:
		return frequencyHighPoints
	case count >= frequencyMidCount:
		return frequencyMidPoints
	case count >= frequencyLowCount:
		return frequencyLowPoints
	default:
		return 0
	}
}

func clampFactor(value, ceiling int) int {
	if value < 0 {
		return 0
	}
	if value > ceiling {
		return ceiling
	}
	return value
}
