package scoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Temperature labels for the three score tiers.
const (
	TemperatureHot  = "hot"
	TemperatureWarm = "warm"
	TemperatureCold = "cold"
)

// Insights is the derived view of a client's current score: the factor
// breakdown plus recommendations and next actions for the sales team.
type Insights struct {
	ClientID        uuid.UUID `json:"clientId"`
	CurrentScore    int       `json:"currentScore"`
	ScoreChange     int       `json:"scoreChange"`
	Temperature     string    `json:"temperature"`
	Factors         Factors   `json:"factors"`
	Recommendations []string  `json:"recommendations"`
	NextActions     []string  `json:"nextActions"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Recommendation thresholds per factor. Each check is independent; every
// matching recommendation is included, in table order.
var recommendationRules = []struct {
	applies func(f Factors) bool
	text    string
}{
	{func(f Factors) bool { return f.Engagement < 10 }, "Increase engagement through targeted campaigns."},
	{func(f Factors) bool { return f.Recency < 10 }, "Re-engage with recent content or offers."},
	{func(f Factors) bool { return f.Frequency < 10 }, "Increase interaction frequency with regular touchpoints."},
	{func(f Factors) bool { return f.Behavior < 5 }, "Encourage specific actions like demo requests or downloads."},
}

var nextActionsByTemperature = map[string][]string{
	TemperatureHot: {
		"Prioritize for immediate sales outreach.",
		"Schedule a meeting or call.",
		"Prepare a tailored proposal.",
	},
	TemperatureWarm: {
		"Continue nurturing with relevant content.",
		"Send a targeted content offer.",
		"Monitor engagement closely.",
	},
	TemperatureCold: {
		"Re-engage with fresh content or offers.",
		"Add to a re-engagement campaign segment.",
		"Reassess lead qualification.",
	},
}

// Classify maps a final score to its temperature tier.
func Classify(score int) string {
	switch {
	case score >= hotScoreMin:
		return TemperatureHot
	case score >= warmScoreMin:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}

// GetScoringInsights derives insights from the client's latest score record.
// Returns nil when the client has no score history yet.
func (s *Service) GetScoringInsights(ctx context.Context, organizationID, clientID uuid.UUID) (*Insights, error) {
	record, err := s.store.GetLatest(ctx, organizationID, clientID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	var factors Factors
	if len(record.Factors) > 0 {
		if err := json.Unmarshal(record.Factors, &factors); err != nil {
			factors = Factors{}
		}
	}

	insights := buildInsights(clientID, record.Score, record.ScoreChange, factors, record.LastUpdated)
	return &insights, nil
}

func buildInsights(clientID uuid.UUID, score, scoreChange int, factors Factors, lastUpdated time.Time) Insights {
	recommendations := make([]string, 0, len(recommendationRules))
	for _, rule := range recommendationRules {
		if rule.applies(factors) {
			recommendations = append(recommendations, rule.text)
		}
	}

	temperature := Classify(score)

	return Insights{
		ClientID:        clientID,
		CurrentScore:    score,
		ScoreChange:     scoreChange,
		Temperature:     temperature,
		Factors:         factors,
		Recommendations: recommendations,
		NextActions:     nextActionsByTemperature[temperature],
		LastUpdated:     lastUpdated,
	}
}
