package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pulse_crm_backend/internal/scoring/ports"
	"pulse_crm_backend/platform/apperr"
)

type fakeInteractionLog struct {
	touchpoints []ports.Touchpoint
	err         error
}

func (f *fakeInteractionLog) ListSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]ports.Touchpoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.touchpoints, nil
}

type fakeCommunicationLog struct {
	communications []ports.Communication
	err            error
}

func (f *fakeCommunicationLog) ListSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]ports.Communication, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.communications, nil
}

type fakeMonetaryScorer struct {
	value int
	err   error
}

func (f *fakeMonetaryScorer) Score(ctx context.Context, organizationID, clientID uuid.UUID, touchpoints []ports.Touchpoint) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.value, nil
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func daysAgo(days int) time.Time {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour)
}

func touchpointsOf(interactionType InteractionType, count int, occurredAt time.Time) []ports.Touchpoint {
	out := make([]ports.Touchpoint, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, ports.Touchpoint{Type: string(interactionType), OccurredAt: occurredAt})
	}
	return out
}

func newTestCalculator(interactions *fakeInteractionLog, communications *fakeCommunicationLog, monetary MonetaryScorer) *Calculator {
	return NewCalculator(interactions, communications, monetary).WithNow(fixedNow)
}

func TestCompute_NoHistoryYieldsZeroFactors(t *testing.T) {
	calc := newTestCalculator(&fakeInteractionLog{}, &fakeCommunicationLog{}, nil)

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Factors != (Factors{}) {
		t.Fatalf("expected all-zero factors, got %+v", result.Factors)
	}
	if result.InteractionsCount != 0 || result.CommunicationsCount != 0 {
		t.Fatalf("expected zero counts, got %d/%d", result.InteractionsCount, result.CommunicationsCount)
	}
	if result.LastActivity != nil {
		t.Fatalf("expected nil last activity, got %v", result.LastActivity)
	}
}

func TestCompute_MixedHistory(t *testing.T) {
	// 2 email opens (4) + 1 email click (3) + 1 website visit (5) = 12 engagement,
	// 4 touchpoints so no frequency points, last activity 2 days ago = 20 recency.
	touchpoints := append(
		touchpointsOf(InteractionEmailOpen, 2, daysAgo(10)),
		ports.Touchpoint{Type: string(InteractionEmailClick), OccurredAt: daysAgo(5)},
		ports.Touchpoint{Type: string(InteractionWebsiteVisit), OccurredAt: daysAgo(2)},
	)
	calc := newTestCalculator(
		&fakeInteractionLog{touchpoints: touchpoints},
		&fakeCommunicationLog{communications: []ports.Communication{{Channel: "email", OccurredAt: daysAgo(3)}}},
		nil,
	)

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Factors{Engagement: 12, Recency: 20, Frequency: 0, Monetary: 0, Behavior: 0}
	if result.Factors != want {
		t.Fatalf("expected factors %+v, got %+v", want, result.Factors)
	}
	if result.InteractionsCount != 4 {
		t.Fatalf("expected 4 interactions, got %d", result.InteractionsCount)
	}
	if result.CommunicationsCount != 1 {
		t.Fatalf("expected 1 communication, got %d", result.CommunicationsCount)
	}
}

func TestCompute_EngagementClampedAtCeiling(t *testing.T) {
	// 3 demo requests would be 45 raw points.
	calc := newTestCalculator(
		&fakeInteractionLog{touchpoints: touchpointsOf(InteractionDemoRequest, 3, daysAgo(1))},
		&fakeCommunicationLog{},
		nil,
	)

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Factors.Engagement != maxEngagement {
		t.Fatalf("expected engagement clamped to %d, got %d", maxEngagement, result.Factors.Engagement)
	}
}

func TestCompute_BehaviorClampedAtCeiling(t *testing.T) {
	// support ticket + payment + referral sum to 30 raw points.
	touchpoints := []ports.Touchpoint{
		{Type: string(InteractionSupportTicket), OccurredAt: daysAgo(3)},
		{Type: string(InteractionPayment), OccurredAt: daysAgo(2)},
		{Type: string(InteractionReferral), OccurredAt: daysAgo(1)},
	}
	calc := newTestCalculator(&fakeInteractionLog{touchpoints: touchpoints}, &fakeCommunicationLog{}, nil)

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Factors.Behavior != maxBehavior {
		t.Fatalf("expected behavior clamped to %d, got %d", maxBehavior, result.Factors.Behavior)
	}
}

func TestCompute_MonetaryClampedAtCeiling(t *testing.T) {
	calc := newTestCalculator(&fakeInteractionLog{}, &fakeCommunicationLog{}, &fakeMonetaryScorer{value: 40})

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Factors.Monetary != maxMonetary {
		t.Fatalf("expected monetary clamped to %d, got %d", maxMonetary, result.Factors.Monetary)
	}
}

func TestCompute_RecencySteps(t *testing.T) {
	cases := []struct {
		name     string
		lastSeen time.Time
		want     int
	}{
		{"same day", daysAgo(0), 20},
		{"seven days", daysAgo(7), 20},
		{"eight days", daysAgo(8), 15},
		{"thirty days", daysAgo(30), 15},
		{"thirty-one days", daysAgo(31), 10},
		{"ninety days", daysAgo(90), 10},
		{"ninety-one days", daysAgo(91), 0},
		{"hundred days", daysAgo(100), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc := newTestCalculator(
				&fakeInteractionLog{touchpoints: touchpointsOf(InteractionEmailOpen, 1, tc.lastSeen)},
				&fakeCommunicationLog{},
				nil,
			)

			result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 365)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Factors.Recency != tc.want {
				t.Fatalf("expected recency %d, got %d", tc.want, result.Factors.Recency)
			}
		})
	}
}

func TestCompute_FrequencySteps(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{9, 10},
		{10, 15},
		{19, 15},
		{20, 20},
		{35, 20},
	}

	for _, tc := range cases {
		calc := newTestCalculator(
			&fakeInteractionLog{touchpoints: touchpointsOf(InteractionEmailOpen, tc.count, daysAgo(1))},
			&fakeCommunicationLog{},
			nil,
		)

		result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Factors.Frequency != tc.want {
			t.Fatalf("count %d: expected frequency %d, got %d", tc.count, tc.want, result.Factors.Frequency)
		}
	}
}

func TestCompute_StaleButBusyClient(t *testing.T) {
	// 25 interactions all older than 90 days: frequency stays maxed while
	// recency drops to zero.
	calc := newTestCalculator(
		&fakeInteractionLog{touchpoints: touchpointsOf(InteractionWebsiteVisit, 25, daysAgo(100))},
		&fakeCommunicationLog{},
		nil,
	)

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Factors.Recency != 0 {
		t.Fatalf("expected recency 0 for activity older than 90 days, got %d", result.Factors.Recency)
	}
	if result.Factors.Frequency != 20 {
		t.Fatalf("expected frequency 20 for 25 interactions, got %d", result.Factors.Frequency)
	}
	if result.InteractionsCount != 25 {
		t.Fatalf("expected 25 interactions, got %d", result.InteractionsCount)
	}
}

func TestCompute_UnknownHistoricalTypesScoreZero(t *testing.T) {
	touchpoints := []ports.Touchpoint{
		{Type: "legacy_import", OccurredAt: daysAgo(1)},
		{Type: string(InteractionEmailOpen), OccurredAt: daysAgo(2)},
	}
	calc := newTestCalculator(&fakeInteractionLog{touchpoints: touchpoints}, &fakeCommunicationLog{}, nil)

	result, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown type contributes no points but still counts toward frequency
	// and recency.
	if result.Factors.Engagement != 2 {
		t.Fatalf("expected engagement 2, got %d", result.Factors.Engagement)
	}
	if result.InteractionsCount != 2 {
		t.Fatalf("expected 2 interactions, got %d", result.InteractionsCount)
	}
	if result.Factors.Recency != 20 {
		t.Fatalf("expected recency 20, got %d", result.Factors.Recency)
	}
}

func TestCompute_InvalidLookbackRejected(t *testing.T) {
	calc := newTestCalculator(&fakeInteractionLog{}, &fakeCommunicationLog{}, nil)

	for _, lookback := range []int{0, -5} {
		_, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), lookback)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("lookback %d: expected validation error, got %v", lookback, err)
		}
	}
}

func TestCompute_CollaboratorErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")

	calc := newTestCalculator(&fakeInteractionLog{err: boom}, &fakeCommunicationLog{}, nil)
	if _, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90); !errors.Is(err, boom) {
		t.Fatalf("expected interaction log error to propagate, got %v", err)
	}

	calc = newTestCalculator(&fakeInteractionLog{}, &fakeCommunicationLog{err: boom}, nil)
	if _, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90); !errors.Is(err, boom) {
		t.Fatalf("expected communication log error to propagate, got %v", err)
	}

	calc = newTestCalculator(&fakeInteractionLog{}, &fakeCommunicationLog{}, &fakeMonetaryScorer{err: boom})
	if _, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90); !errors.Is(err, boom) {
		t.Fatalf("expected monetary scorer error to propagate, got %v", err)
	}
}

func TestCompute_IsDeterministicForFixedInputs(t *testing.T) {
	touchpoints := append(
		touchpointsOf(InteractionWebsiteVisit, 6, daysAgo(4)),
		ports.Touchpoint{Type: string(InteractionPayment), OccurredAt: daysAgo(12)},
	)
	calc := newTestCalculator(&fakeInteractionLog{touchpoints: touchpoints}, &fakeCommunicationLog{}, nil)

	first, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := calc.Compute(context.Background(), uuid.New(), uuid.New(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Factors != second.Factors {
		t.Fatalf("expected identical factors, got %+v then %+v", first.Factors, second.Factors)
	}
}
