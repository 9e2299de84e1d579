package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScoreRecord is one persisted score snapshot. Records are append-only:
// every recalculation inserts a new row and the current score is the most
// recent row by LastUpdated for a client.
type ScoreRecord struct {
	ID                  uuid.UUID `json:"id"`
	OrganizationID      uuid.UUID `json:"organizationId"`
	ClientID            uuid.UUID `json:"clientId"`
	Score               int       `json:"score"`
	Factors             []byte    `json:"-"`
	PreviousScore       *int      `json:"previousScore,omitempty"`
	ScoreChange         int       `json:"scoreChange"`
	InteractionsCount   int       `json:"interactionsCount"`
	CommunicationsCount int       `json:"communicationsCount"`
	PeriodDays          int       `json:"periodDays"`
	CalculatedAt        time.Time `json:"calculatedAt"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// AppendParams contains the fields for a new score record.
type AppendParams struct {
	OrganizationID      uuid.UUID
	ClientID            uuid.UUID
	Score               int
	Factors             []byte
	PreviousScore       *int
	ScoreChange         int
	InteractionsCount   int
	CommunicationsCount int
	PeriodDays          int
	CalculatedAt        time.Time
}

// ScoreFilters narrows score listings. Nil fields are ignored.
type ScoreFilters struct {
	MinScore *int
	MaxScore *int
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Distribution buckets the latest score per client into temperature tiers.
type Distribution struct {
	Hot   int `json:"hot"`
	Warm  int `json:"warm"`
	Cold  int `json:"cold"`
	Total int `json:"total"`
}

// ScoreReader provides read operations over the score log.
type ScoreReader interface {
	// GetLatest returns the most recent record for a client, or nil when the
	// client has no score history yet.
	GetLatest(ctx context.Context, organizationID, clientID uuid.UUID) (*ScoreRecord, error)
	// List returns the latest record per client matching the filters, newest
	// first, plus the total match count before pagination.
	List(ctx context.Context, organizationID uuid.UUID, filters ScoreFilters) ([]ScoreRecord, int, error)
	// Distribution buckets every client's latest score using the given
	// tier boundaries (score >= hotMin is hot, >= warmMin is warm).
	Distribution(ctx context.Context, organizationID uuid.UUID, hotMin, warmMin int) (Distribution, error)
	// ListClientIDs returns every client that has at least one score record.
	ListClientIDs(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error)
}

// ScoreWriter provides write operations over the score log.
type ScoreWriter interface {
	// Append inserts a new score record. Existing records are never updated.
	Append(ctx context.Context, params AppendParams) (ScoreRecord, error)
}

// Repository combines all score store operations.
type Repository interface {
	ScoreReader
	ScoreWriter
}
