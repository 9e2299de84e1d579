package scoring

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pulse_crm_backend/internal/events"
	"pulse_crm_backend/internal/scoring/repository"
	"pulse_crm_backend/platform/apperr"
	"pulse_crm_backend/platform/config"
	"pulse_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Temperature tier boundaries applied to the final score.
const (
	hotScoreMin  = 80
	warmScoreMin = 50
)

// Snapshot is a computed (not yet persisted) lead score.
type Snapshot struct {
	OrganizationID uuid.UUID `json:"organizationId"`
	ClientID       uuid.UUID `json:"clientId"`
	Score          int       `json:"score"`
	Factors        Factors   `json:"factors"`
	Metadata       Metadata  `json:"metadata"`
}

// Metadata describes the inputs of a score calculation.
type Metadata struct {
	InteractionsCount   int       `json:"interactionsCount"`
	CommunicationsCount int       `json:"communicationsCount"`
	CalculatedAt        time.Time `json:"calculatedAt"`
	PeriodDays          int       `json:"periodDays"`
}

// RecalculationQueue defers score refreshes to a background worker.
// Implemented by an adapter over the scheduler client; nil when no queue
// backend is configured.
type RecalculationQueue interface {
	EnqueueScoreRecalculation(ctx context.Context, organizationID, clientID uuid.UUID) error
}

// Service aggregates scoring factors into persisted lead scores.
type Service struct {
	store        repository.Repository
	calc         *Calculator
	bus          events.Bus
	log          *logger.Logger
	queue        RecalculationQueue
	lookbackDays int

	// clientLocks serializes recalculation per client so scoreChange is
	// always computed against the immediately prior persisted record.
	clientLocks sync.Map
}

// New creates a new scoring service.
func New(store repository.Repository, calc *Calculator, bus events.Bus, cfg config.ScoringConfig, log *logger.Logger) *Service {
	lookback := cfg.GetScoringLookbackDays()
	if lookback <= 0 {
		lookback = 90
	}
	return &Service{
		store:        store,
		calc:         calc,
		bus:          bus,
		log:          log,
		lookbackDays: lookback,
	}
}

// SetRecalculationQueue wires the deferred refresh backend.
func (s *Service) SetRecalculationQueue(queue RecalculationQueue) {
	s.queue = queue
}

// EnqueueRecalculations queues a deferred score refresh for every scored
// client of the organization. Returns the number of queued clients.
func (s *Service) EnqueueRecalculations(ctx context.Context, organizationID uuid.UUID) (int, error) {
	if s.queue == nil {
		return 0, apperr.Conflict("deferred recalculation is not configured")
	}

	clientIDs, err := s.store.ListClientIDs(ctx, organizationID)
	if err != nil {
		return 0, err
	}

	for i, clientID := range clientIDs {
		if err := s.queue.EnqueueScoreRecalculation(ctx, organizationID, clientID); err != nil {
			return i, apperr.DataAccess("enqueue score recalculation", err)
		}
	}

	return len(clientIDs), nil
}

// CalculateLeadScore computes a score snapshot without persisting it.
// A lookbackDays of 0 selects the configured default window; negative
// values are rejected.
func (s *Service) CalculateLeadScore(ctx context.Context, organizationID, clientID uuid.UUID, lookbackDays int) (Snapshot, error) {
	if lookbackDays < 0 {
		return Snapshot{}, apperr.Validation("lookbackDays must be a positive number of days")
	}
	if lookbackDays == 0 {
		lookbackDays = s.lookbackDays
	}

	computation, err := s.calc.Compute(ctx, organizationID, clientID, lookbackDays)
	if err != nil {
		return Snapshot{}, err
	}

	score := computation.Factors.Total()
	if score > 100 {
		score = 100
	}

	return Snapshot{
		OrganizationID: organizationID,
		ClientID:       clientID,
		Score:          score,
		Factors:        computation.Factors,
		Metadata: Metadata{
			InteractionsCount:   computation.InteractionsCount,
			CommunicationsCount: computation.CommunicationsCount,
			CalculatedAt:        time.Now().UTC(),
			PeriodDays:          lookbackDays,
		},
	}, nil
}

// SaveLeadScore appends a new score record for the snapshot, computing the
// delta against the most recent persisted record. The first record for a
// client has a delta equal to its score.
func (s *Service) SaveLeadScore(ctx context.Context, snapshot Snapshot) (repository.ScoreRecord, error) {
	previous, err := s.store.GetLatest(ctx, snapshot.OrganizationID, snapshot.ClientID)
	if err != nil {
		return repository.ScoreRecord{}, err
	}

	scoreChange := snapshot.Score
	var previousScore *int
	if previous != nil {
		scoreChange = snapshot.Score - previous.Score
		prev := previous.Score
		previousScore = &prev
	}

	factorsJSON, err := json.Marshal(snapshot.Factors)
	if err != nil {
		return repository.ScoreRecord{}, apperr.Internal("marshal score factors")
	}

	record, err := s.store.Append(ctx, repository.AppendParams{
		OrganizationID:      snapshot.OrganizationID,
		ClientID:            snapshot.ClientID,
		Score:               snapshot.Score,
		Factors:             factorsJSON,
		PreviousScore:       previousScore,
		ScoreChange:         scoreChange,
		InteractionsCount:   snapshot.Metadata.InteractionsCount,
		CommunicationsCount: snapshot.Metadata.CommunicationsCount,
		PeriodDays:          snapshot.Metadata.PeriodDays,
		CalculatedAt:        snapshot.Metadata.CalculatedAt,
	})
	if err != nil {
		return repository.ScoreRecord{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadScoreRecalculated{
			BaseEvent:      events.NewBaseEvent(),
			ScoreRecordID:  record.ID,
			OrganizationID: record.OrganizationID,
			ClientID:       record.ClientID,
			Score:          record.Score,
			ScoreChange:    record.ScoreChange,
		})
	}

	return record, nil
}

// RecalculateScore computes and persists a fresh score for the client using
// the default lookback window. Recalculations for the same client are
// serialized; different clients proceed concurrently.
func (s *Service) RecalculateScore(ctx context.Context, organizationID, clientID uuid.UUID) (repository.ScoreRecord, error) {
	lock := s.lockFor(organizationID, clientID)
	lock.Lock()
	defer lock.Unlock()

	snapshot, err := s.CalculateLeadScore(ctx, organizationID, clientID, 0)
	if err != nil {
		return repository.ScoreRecord{}, err
	}

	record, err := s.SaveLeadScore(ctx, snapshot)
	if err != nil {
		return repository.ScoreRecord{}, err
	}

	if s.log != nil {
		s.log.ScoreRecalculated(organizationID.String(), clientID.String(), record.Score, record.ScoreChange)
	}

	return record, nil
}

// GetLeadScore returns the current score record for a client, or nil when
// the client has never been scored.
func (s *Service) GetLeadScore(ctx context.Context, organizationID, clientID uuid.UUID) (*repository.ScoreRecord, error) {
	return s.store.GetLatest(ctx, organizationID, clientID)
}

// ListLeadScores returns the latest score per client matching the filters.
func (s *Service) ListLeadScores(ctx context.Context, organizationID uuid.UUID, filters repository.ScoreFilters) ([]repository.ScoreRecord, int, error) {
	if filters.MinScore != nil && filters.MaxScore != nil && *filters.MinScore > *filters.MaxScore {
		return nil, 0, apperr.Validation("minScore cannot exceed maxScore")
	}
	return s.store.List(ctx, organizationID, filters)
}

// GetLeadScoreDistribution buckets every client's latest score into
// hot/warm/cold tiers.
func (s *Service) GetLeadScoreDistribution(ctx context.Context, organizationID uuid.UUID) (repository.Distribution, error) {
	return s.store.Distribution(ctx, organizationID, hotScoreMin, warmScoreMin)
}

func (s *Service) lockFor(organizationID, clientID uuid.UUID) *sync.Mutex {
	key := organizationID.String() + "/" + clientID.String()
	lock, _ := s.clientLocks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
