package scoring

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"pulse_crm_backend/internal/scoring/ports"
	"pulse_crm_backend/internal/scoring/repository"
	"pulse_crm_backend/platform/apperr"
)

// fakeScoreStore is an in-memory append-only score store.
type fakeScoreStore struct {
	mu      sync.Mutex
	records []repository.ScoreRecord
	err     error
}

func (f *fakeScoreStore) GetLatest(ctx context.Context, organizationID, clientID uuid.UUID) (*repository.ScoreRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		r := f.records[i]
		if r.OrganizationID == organizationID && r.ClientID == clientID {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeScoreStore) Append(ctx context.Context, params repository.AppendParams) (repository.ScoreRecord, error) {
	if f.err != nil {
		return repository.ScoreRecord{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record := repository.ScoreRecord{
		ID:                  uuid.New(),
		OrganizationID:      params.OrganizationID,
		ClientID:            params.ClientID,
		Score:               params.Score,
		Factors:             params.Factors,
		PreviousScore:       params.PreviousScore,
		ScoreChange:         params.ScoreChange,
		InteractionsCount:   params.InteractionsCount,
		CommunicationsCount: params.CommunicationsCount,
		PeriodDays:          params.PeriodDays,
		CalculatedAt:        params.CalculatedAt,
		LastUpdated:         time.Now().UTC(),
	}
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeScoreStore) List(ctx context.Context, organizationID uuid.UUID, filters repository.ScoreFilters) ([]repository.ScoreRecord, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[uuid.UUID]repository.ScoreRecord)
	for _, r := range f.records {
		if r.OrganizationID == organizationID {
			latest[r.ClientID] = r
		}
	}
	out := make([]repository.ScoreRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeScoreStore) ListClientIDs(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, r := range f.records {
		if r.OrganizationID == organizationID && !seen[r.ClientID] {
			seen[r.ClientID] = true
			ids = append(ids, r.ClientID)
		}
	}
	return ids, nil
}

func (f *fakeScoreStore) Distribution(ctx context.Context, organizationID uuid.UUID, hotMin, warmMin int) (repository.Distribution, error) {
	if f.err != nil {
		return repository.Distribution{}, f.err
	}
	records, _, _ := f.List(ctx, organizationID, repository.ScoreFilters{})
	var dist repository.Distribution
	for _, r := range records {
		switch {
		case r.Score >= hotMin:
			dist.Hot++
		case r.Score >= warmMin:
			dist.Warm++
		default:
			dist.Cold++
		}
		dist.Total++
	}
	return dist, nil
}

type fixedScoringConfig struct {
	lookbackDays int
}

func (c fixedScoringConfig) GetScoringLookbackDays() int { return c.lookbackDays }

func newTestService(store repository.Repository, interactions *fakeInteractionLog) *Service {
	calc := newTestCalculator(interactions, &fakeCommunicationLog{}, nil)
	return New(store, calc, nil, fixedScoringConfig{lookbackDays: 90}, nil)
}

func TestCalculateLeadScore_HeavyHistoryStaysBounded(t *testing.T) {
	// 20 website visits saturate engagement, recency and frequency; a demo
	// request and a referral pile on more raw points that the per-factor
	// ceilings must absorb.
	touchpoints := append(
		touchpointsOf(InteractionWebsiteVisit, 20, daysAgo(1)),
		ports.Touchpoint{Type: string(InteractionDemoRequest), OccurredAt: daysAgo(1)},
		ports.Touchpoint{Type: string(InteractionReferral), OccurredAt: daysAgo(1)},
	)
	svc := newTestService(&fakeScoreStore{}, &fakeInteractionLog{touchpoints: touchpoints})

	snapshot, err := svc.CalculateLeadScore(context.Background(), uuid.New(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.Score > 100 {
		t.Fatalf("expected score capped at 100, got %d", snapshot.Score)
	}
	want := Factors{Engagement: 30, Recency: 20, Frequency: 20, Monetary: 0, Behavior: 15}
	if snapshot.Factors != want {
		t.Fatalf("expected factors %+v, got %+v", want, snapshot.Factors)
	}
	if snapshot.Score != want.Total() {
		t.Fatalf("expected score %d, got %d", want.Total(), snapshot.Score)
	}
}

func TestCalculateLeadScore_NegativeLookbackRejected(t *testing.T) {
	svc := newTestService(&fakeScoreStore{}, &fakeInteractionLog{})

	_, err := svc.CalculateLeadScore(context.Background(), uuid.New(), uuid.New(), -1)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCalculateLeadScore_ZeroLookbackUsesDefault(t *testing.T) {
	svc := newTestService(&fakeScoreStore{}, &fakeInteractionLog{})

	snapshot, err := svc.CalculateLeadScore(context.Background(), uuid.New(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Metadata.PeriodDays != 90 {
		t.Fatalf("expected default lookback of 90 days, got %d", snapshot.Metadata.PeriodDays)
	}
}

func TestSaveLeadScore_FirstRecordDeltaEqualsScore(t *testing.T) {
	store := &fakeScoreStore{}
	svc := newTestService(store, &fakeInteractionLog{
		touchpoints: touchpointsOf(InteractionWebsiteVisit, 3, daysAgo(2)),
	})
	orgID, clientID := uuid.New(), uuid.New()

	snapshot, err := svc.CalculateLeadScore(context.Background(), orgID, clientID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := svc.SaveLeadScore(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.PreviousScore != nil {
		t.Fatalf("expected nil previous score on first record, got %d", *record.PreviousScore)
	}
	if record.ScoreChange != record.Score {
		t.Fatalf("expected first delta to equal score %d, got %d", record.Score, record.ScoreChange)
	}
}

func TestRecalculateScore_DeltaReflectsNewPayment(t *testing.T) {
	store := &fakeScoreStore{}
	interactions := &fakeInteractionLog{
		touchpoints: touchpointsOf(InteractionWebsiteVisit, 3, daysAgo(2)),
	}
	svc := newTestService(store, interactions)
	orgID, clientID := uuid.New(), uuid.New()

	first, err := svc.RecalculateScore(context.Background(), orgID, clientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A payment adds 10 behavior points without moving any other factor.
	interactions.touchpoints = append(interactions.touchpoints,
		ports.Touchpoint{Type: string(InteractionPayment), OccurredAt: daysAgo(1)},
	)

	second, err := svc.RecalculateScore(context.Background(), orgID, clientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.PreviousScore == nil || *second.PreviousScore != first.Score {
		t.Fatalf("expected previous score %d, got %v", first.Score, second.PreviousScore)
	}
	if second.ScoreChange != 10 {
		t.Fatalf("expected score change of 10 after payment, got %d", second.ScoreChange)
	}
	if second.Score != first.Score+10 {
		t.Fatalf("expected score %d, got %d", first.Score+10, second.Score)
	}
}

func TestRecalculateScore_PersistsFactorsAsJSON(t *testing.T) {
	store := &fakeScoreStore{}
	svc := newTestService(store, &fakeInteractionLog{
		touchpoints: touchpointsOf(InteractionEmailOpen, 5, daysAgo(3)),
	})
	orgID, clientID := uuid.New(), uuid.New()

	record, err := svc.RecalculateScore(context.Background(), orgID, clientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var factors Factors
	if err := json.Unmarshal(record.Factors, &factors); err != nil {
		t.Fatalf("expected factors to round-trip as JSON: %v", err)
	}
	// 5 email opens = 10 engagement, 5 touchpoints = 10 frequency, 3 days = 20 recency.
	want := Factors{Engagement: 10, Recency: 20, Frequency: 10}
	if factors != want {
		t.Fatalf("expected factors %+v, got %+v", want, factors)
	}
}

func TestRecalculateScore_SerializesPerClient(t *testing.T) {
	store := &fakeScoreStore{}
	svc := newTestService(store, &fakeInteractionLog{
		touchpoints: touchpointsOf(InteractionWebsiteVisit, 2, daysAgo(1)),
	})
	orgID, clientID := uuid.New(), uuid.New()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.RecalculateScore(context.Background(), orgID, clientID); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Unchanged inputs mean every record after the first must have a zero
	// delta; a lost update would surface as a nonzero change.
	store.mu.Lock()
	defer store.mu.Unlock()
	for i, record := range store.records {
		if i == 0 {
			continue
		}
		if record.ScoreChange != 0 {
			t.Fatalf("record %d: expected zero delta, got %d", i, record.ScoreChange)
		}
	}
}

func TestGetLeadScore_NoHistoryReturnsNil(t *testing.T) {
	svc := newTestService(&fakeScoreStore{}, &fakeInteractionLog{})

	record, err := svc.GetLeadScore(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record for unscored client, got %+v", record)
	}
}

func TestListLeadScores_RejectsInvertedScoreRange(t *testing.T) {
	svc := newTestService(&fakeScoreStore{}, &fakeInteractionLog{})

	minScore, maxScore := 80, 20
	_, _, err := svc.ListLeadScores(context.Background(), uuid.New(), repository.ScoreFilters{
		MinScore: &minScore,
		MaxScore: &maxScore,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeRecalculationQueue struct {
	enqueued []uuid.UUID
}

func (f *fakeRecalculationQueue) EnqueueScoreRecalculation(ctx context.Context, organizationID, clientID uuid.UUID) error {
	f.enqueued = append(f.enqueued, clientID)
	return nil
}

func TestEnqueueRecalculations_WithoutQueueConfigured(t *testing.T) {
	svc := newTestService(&fakeScoreStore{}, &fakeInteractionLog{})

	_, err := svc.EnqueueRecalculations(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestEnqueueRecalculations_QueuesEveryScoredClient(t *testing.T) {
	store := &fakeScoreStore{}
	orgID := uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := store.Append(context.Background(), repository.AppendParams{
			OrganizationID: orgID,
			ClientID:       uuid.New(),
			Score:          40,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	svc := newTestService(store, &fakeInteractionLog{})
	queue := &fakeRecalculationQueue{}
	svc.SetRecalculationQueue(queue)

	queued, err := svc.EnqueueRecalculations(context.Background(), orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 3 {
		t.Fatalf("expected 3 queued clients, got %d", queued)
	}
	if len(queue.enqueued) != 3 {
		t.Fatalf("expected 3 enqueued tasks, got %d", len(queue.enqueued))
	}
}

func TestGetLeadScoreDistribution_BucketsByTier(t *testing.T) {
	store := &fakeScoreStore{}
	orgID := uuid.New()
	for _, score := range []int{95, 85, 60, 30, 10} {
		if _, err := store.Append(context.Background(), repository.AppendParams{
			OrganizationID: orgID,
			ClientID:       uuid.New(),
			Score:          score,
			ScoreChange:    score,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	svc := newTestService(store, &fakeInteractionLog{})

	dist, err := svc.GetLeadScoreDistribution(context.Background(), orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dist.Hot != 2 || dist.Warm != 1 || dist.Cold != 2 || dist.Total != 5 {
		t.Fatalf("expected 2/1/2 of 5, got %d/%d/%d of %d", dist.Hot, dist.Warm, dist.Cold, dist.Total)
	}
}
