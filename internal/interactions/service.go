// Package interactions provides the client touchpoint bounded context:
// recording interactions and communications, the append-only history that
// feeds lead scoring.
package interactions

import (
	"context"
	"encoding/json"
	"time"

	"pulse_crm_backend/internal/events"
	"pulse_crm_backend/internal/interactions/repository"
	"pulse_crm_backend/internal/scoring"
	"pulse_crm_backend/platform/apperr"
	"pulse_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// ScoreRecalculator refreshes a client's persisted lead score. Implemented
// by an adapter over the scoring service and injected after construction to
// avoid a module cycle.
type ScoreRecalculator interface {
	RecalculateScore(ctx context.Context, organizationID, clientID uuid.UUID) error
}

// RecordInteractionParams contains the data needed to record a touchpoint.
type RecordInteractionParams struct {
	OrganizationID  uuid.UUID
	ClientID        uuid.UUID
	InteractionType string
	Source          string
	Value           float64
	Metadata        map[string]interface{}
	OccurredAt      time.Time
}

// LogCommunicationParams contains the data needed to log a communication.
type LogCommunicationParams struct {
	OrganizationID uuid.UUID
	ClientID       uuid.UUID
	Channel        string
	Direction      string
	Subject        string
	OccurredAt     time.Time
}

// Service manages the interaction and communication history of clients.
type Service struct {
	repo   repository.Repository
	bus    events.Bus
	log    *logger.Logger
	recalc ScoreRecalculator
}

// New creates a new interactions service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log,
	}
}

// SetScoreRecalculator wires the scoring dependency. Recording proceeds
// without recalculation until it is set.
func (s *Service) SetScoreRecalculator(recalc ScoreRecalculator) {
	s.recalc = recalc
}

// RecordInteraction persists a client touchpoint and synchronously refreshes
// the client's lead score. A recalculation failure is returned to the caller;
// the interaction itself stays persisted.
func (s *Service) RecordInteraction(ctx context.Context, params RecordInteractionParams) (repository.Interaction, error) {
	if !scoring.KnownInteractionType(params.InteractionType) {
		return repository.Interaction{}, apperr.Validation("unknown interaction type: " + params.InteractionType)
	}

	occurredAt := params.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	var metadata []byte
	if len(params.Metadata) > 0 {
		encoded, err := json.Marshal(params.Metadata)
		if err != nil {
			return repository.Interaction{}, apperr.Validation("metadata must be JSON-encodable")
		}
		metadata = encoded
	}

	interaction, err := s.repo.InsertInteraction(ctx, repository.CreateInteractionParams{
		OrganizationID:  params.OrganizationID,
		ClientID:        params.ClientID,
		InteractionType: params.InteractionType,
		Source:          params.Source,
		Value:           params.Value,
		Metadata:        metadata,
		OccurredAt:      occurredAt,
	})
	if err != nil {
		return repository.Interaction{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.InteractionRecorded{
			BaseEvent:       events.NewBaseEvent(),
			InteractionID:   interaction.ID,
			OrganizationID:  interaction.OrganizationID,
			ClientID:        interaction.ClientID,
			InteractionType: interaction.InteractionType,
			Source:          interaction.Source,
			InteractionAt:   interaction.OccurredAt,
		})
	}

	if s.recalc != nil {
		if err := s.recalc.RecalculateScore(ctx, params.OrganizationID, params.ClientID); err != nil {
			return interaction, err
		}
	}

	return interaction, nil
}

// ListInteractions retrieves a client's interaction history, newest first.
func (s *Service) ListInteractions(ctx context.Context, organizationID, clientID uuid.UUID, filters repository.InteractionFilters) ([]repository.Interaction, int, error) {
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateFrom.After(*filters.DateTo) {
		return nil, 0, apperr.Validation("dateFrom cannot be after dateTo")
	}
	return s.repo.ListInteractions(ctx, organizationID, clientID, filters)
}

// LogCommunication persists a client communication. Communications feed the
// score metadata counts but carry no rule points, so no recalculation is
// triggered here.
func (s *Service) LogCommunication(ctx context.Context, params LogCommunicationParams) (repository.Communication, error) {
	occurredAt := params.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	communication, err := s.repo.InsertCommunication(ctx, repository.CreateCommunicationParams{
		OrganizationID: params.OrganizationID,
		ClientID:       params.ClientID,
		Channel:        params.Channel,
		Direction:      params.Direction,
		Subject:        params.Subject,
		OccurredAt:     occurredAt,
	})
	if err != nil {
		return repository.Communication{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.CommunicationLogged{
			BaseEvent:       events.NewBaseEvent(),
			CommunicationID: communication.ID,
			OrganizationID:  communication.OrganizationID,
			ClientID:        communication.ClientID,
			Channel:         communication.Channel,
		})
	}

	return communication, nil
}
