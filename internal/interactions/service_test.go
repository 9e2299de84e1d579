package interactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pulse_crm_backend/internal/interactions/repository"
	"pulse_crm_backend/platform/apperr"
)

type fakeRepo struct {
	interactions   []repository.Interaction
	communications []repository.Communication
	insertErr      error
}

func (f *fakeRepo) InsertInteraction(ctx context.Context, params repository.CreateInteractionParams) (repository.Interaction, error) {
	if f.insertErr != nil {
		return repository.Interaction{}, f.insertErr
	}
	interaction := repository.Interaction{
		ID:              uuid.New(),
		OrganizationID:  params.OrganizationID,
		ClientID:        params.ClientID,
		InteractionType: params.InteractionType,
		Source:          params.Source,
		Value:           params.Value,
		Metadata:        params.Metadata,
		OccurredAt:      params.OccurredAt,
		CreatedAt:       time.Now().UTC(),
	}
	f.interactions = append(f.interactions, interaction)
	return interaction, nil
}

func (f *fakeRepo) ListInteractions(ctx context.Context, organizationID, clientID uuid.UUID, filters repository.InteractionFilters) ([]repository.Interaction, int, error) {
	return f.interactions, len(f.interactions), nil
}

func (f *fakeRepo) ListInteractionsSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]repository.Interaction, error) {
	return f.interactions, nil
}

func (f *fakeRepo) InsertCommunication(ctx context.Context, params repository.CreateCommunicationParams) (repository.Communication, error) {
	if f.insertErr != nil {
		return repository.Communication{}, f.insertErr
	}
	communication := repository.Communication{
		ID:             uuid.New(),
		OrganizationID: params.OrganizationID,
		ClientID:       params.ClientID,
		Channel:        params.Channel,
		Direction:      params.Direction,
		Subject:        params.Subject,
		OccurredAt:     params.OccurredAt,
		CreatedAt:      time.Now().UTC(),
	}
	f.communications = append(f.communications, communication)
	return communication, nil
}

func (f *fakeRepo) ListCommunicationsSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]repository.Communication, error) {
	return f.communications, nil
}

type fakeRecalculator struct {
	calls int
	err   error
}

func (f *fakeRecalculator) RecalculateScore(ctx context.Context, organizationID, clientID uuid.UUID) error {
	f.calls++
	return f.err
}

func TestRecordInteraction_UnknownTypeRejected(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, nil)

	_, err := svc.RecordInteraction(context.Background(), RecordInteractionParams{
		OrganizationID:  uuid.New(),
		ClientID:        uuid.New(),
		InteractionType: "carrier_pigeon",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.interactions) != 0 {
		t.Fatalf("expected nothing persisted, got %d interactions", len(repo.interactions))
	}
}

func TestRecordInteraction_PersistsAndRecalculates(t *testing.T) {
	repo := &fakeRepo{}
	recalc := &fakeRecalculator{}
	svc := New(repo, nil, nil)
	svc.SetScoreRecalculator(recalc)

	occurredAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	interaction, err := svc.RecordInteraction(context.Background(), RecordInteractionParams{
		OrganizationID:  uuid.New(),
		ClientID:        uuid.New(),
		InteractionType: "demo_request",
		Source:          "pricing-page",
		OccurredAt:      occurredAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.interactions) != 1 {
		t.Fatalf("expected 1 persisted interaction, got %d", len(repo.interactions))
	}
	if interaction.InteractionType != "demo_request" || interaction.Source != "pricing-page" {
		t.Fatalf("unexpected interaction persisted: %+v", interaction)
	}
	if !interaction.OccurredAt.Equal(occurredAt) {
		t.Fatalf("expected occurredAt %v, got %v", occurredAt, interaction.OccurredAt)
	}
	if recalc.calls != 1 {
		t.Fatalf("expected 1 recalculation, got %d", recalc.calls)
	}
}

func TestRecordInteraction_DefaultsOccurredAtToNow(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, nil)

	before := time.Now().UTC()
	interaction, err := svc.RecordInteraction(context.Background(), RecordInteractionParams{
		OrganizationID:  uuid.New(),
		ClientID:        uuid.New(),
		InteractionType: "email_open",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if interaction.OccurredAt.Before(before) || interaction.OccurredAt.After(time.Now().UTC()) {
		t.Fatalf("expected occurredAt to default to now, got %v", interaction.OccurredAt)
	}
}

func TestRecordInteraction_RecalculationFailurePropagates(t *testing.T) {
	repo := &fakeRepo{}
	recalc := &fakeRecalculator{err: errors.New("store unavailable")}
	svc := New(repo, nil, nil)
	svc.SetScoreRecalculator(recalc)

	_, err := svc.RecordInteraction(context.Background(), RecordInteractionParams{
		OrganizationID:  uuid.New(),
		ClientID:        uuid.New(),
		InteractionType: "payment",
	})
	if err == nil {
		t.Fatal("expected recalculation error to propagate")
	}
	if len(repo.interactions) != 1 {
		t.Fatalf("expected interaction to stay persisted, got %d", len(repo.interactions))
	}
}

func TestRecordInteraction_InsertFailurePropagates(t *testing.T) {
	boom := apperr.DataAccess("insert interaction", errors.New("connection refused"))
	repo := &fakeRepo{insertErr: boom}
	recalc := &fakeRecalculator{}
	svc := New(repo, nil, nil)
	svc.SetScoreRecalculator(recalc)

	_, err := svc.RecordInteraction(context.Background(), RecordInteractionParams{
		OrganizationID:  uuid.New(),
		ClientID:        uuid.New(),
		InteractionType: "referral",
	})
	if !apperr.Is(err, apperr.KindDataAccess) {
		t.Fatalf("expected data access error, got %v", err)
	}
	if recalc.calls != 0 {
		t.Fatalf("expected no recalculation after failed insert, got %d", recalc.calls)
	}
}

func TestLogCommunication_DoesNotRecalculate(t *testing.T) {
	repo := &fakeRepo{}
	recalc := &fakeRecalculator{}
	svc := New(repo, nil, nil)
	svc.SetScoreRecalculator(recalc)

	communication, err := svc.LogCommunication(context.Background(), LogCommunicationParams{
		OrganizationID: uuid.New(),
		ClientID:       uuid.New(),
		Channel:        "email",
		Subject:        "Renewal options",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.communications) != 1 {
		t.Fatalf("expected 1 persisted communication, got %d", len(repo.communications))
	}
	if communication.Channel != "email" {
		t.Fatalf("unexpected communication persisted: %+v", communication)
	}
	if recalc.calls != 0 {
		t.Fatalf("expected no recalculation for communications, got %d", recalc.calls)
	}
}

func TestListInteractions_RejectsInvertedDateRange(t *testing.T) {
	svc := New(&fakeRepo{}, nil, nil)

	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)
	_, _, err := svc.ListInteractions(context.Background(), uuid.New(), uuid.New(), repository.InteractionFilters{
		DateFrom: &from,
		DateTo:   &to,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
