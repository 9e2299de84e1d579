package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CalculateScoreRequest contains query parameters for an on-demand
// calculation or recalculation.
type CalculateScoreRequest struct {
	LookbackDays int `form:"lookbackDays" json:"lookbackDays" validate:"omitempty,min=1,max=3650"`
}

// ListScoresRequest contains query parameters for listing lead scores.
type ListScoresRequest struct {
	MinScore *int       `form:"minScore" validate:"omitempty,min=0,max=100"`
	MaxScore *int       `form:"maxScore" validate:"omitempty,min=0,max=100"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit    int        `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int        `form:"offset" validate:"omitempty,min=0"`
}

// FactorsResponse is the per-category score breakdown.
type FactorsResponse struct {
	Engagement int `json:"engagement"`
	Recency    int `json:"recency"`
	Frequency  int `json:"frequency"`
	Monetary   int `json:"monetary"`
	Behavior   int `json:"behavior"`
}

// ScoreRecordResponse represents a persisted score record in API responses.
type ScoreRecordResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ClientID            uuid.UUID       `json:"clientId"`
	Score               int             `json:"score"`
	Factors             json.RawMessage `json:"factors"`
	PreviousScore       *int            `json:"previousScore,omitempty"`
	ScoreChange         int             `json:"scoreChange"`
	InteractionsCount   int             `json:"interactionsCount"`
	CommunicationsCount int             `json:"communicationsCount"`
	PeriodDays          int             `json:"periodDays"`
	CalculatedAt        time.Time       `json:"calculatedAt"`
	LastUpdated         time.Time       `json:"lastUpdated"`
}

// ScoreListResponse wraps a paginated list of score records.
type ScoreListResponse struct {
	Items []ScoreRecordResponse `json:"items"`
	Total int                   `json:"total"`
}

// SnapshotResponse represents a computed, unpersisted score.
type SnapshotResponse struct {
	ClientID uuid.UUID        `json:"clientId"`
	Score    int              `json:"score"`
	Factors  FactorsResponse  `json:"factors"`
	Metadata MetadataResponse `json:"metadata"`
}

// MetadataResponse describes the inputs of a score calculation.
type MetadataResponse struct {
	InteractionsCount   int       `json:"interactionsCount"`
	CommunicationsCount int       `json:"communicationsCount"`
	CalculatedAt        time.Time `json:"calculatedAt"`
	PeriodDays          int       `json:"periodDays"`
}

// DistributionResponse buckets clients by score temperature.
type DistributionResponse struct {
	Hot   int `json:"hot"`
	Warm  int `json:"warm"`
	Cold  int `json:"cold"`
	Total int `json:"total"`
}

// RuleResponse is one row of the scoring rule table.
type RuleResponse struct {
	Factor      string `json:"factor"`
	Condition   string `json:"condition"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// RuleTableResponse wraps the full rule table.
type RuleTableResponse struct {
	Rules []RuleResponse `json:"rules"`
}
