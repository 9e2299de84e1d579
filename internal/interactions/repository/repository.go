package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"pulse_crm_backend/platform/apperr"
)

const interactionColumns = `id, organization_id, client_id, interaction_type, source, value, metadata, occurred_at, created_at`

const communicationColumns = `id, organization_id, client_id, channel, direction, subject, occurred_at, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new interactions repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// InsertInteraction records a new client touchpoint and returns the
// persisted row.
func (r *Repo) InsertInteraction(ctx context.Context, params CreateInteractionParams) (Interaction, error) {
	query := fmt.Sprintf(`
		INSERT INTO interactions (organization_id, client_id, interaction_type, source, value, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, interactionColumns)

	metadata := params.Metadata
	if len(metadata) == 0 {
		metadata = []byte(`{}`)
	}

	interaction, err := scanInteraction(r.pool.QueryRow(ctx, query,
		params.OrganizationID, params.ClientID, params.InteractionType,
		params.Source, params.Value, metadata, params.OccurredAt,
	))
	if err != nil {
		return Interaction{}, apperr.DataAccess("insert interaction", err)
	}

	return interaction, nil
}

// ListInteractions retrieves a client's interactions matching the filters,
// newest first, plus the total match count before pagination.
func (r *Repo) ListInteractions(ctx context.Context, organizationID, clientID uuid.UUID, filters InteractionFilters) ([]Interaction, int, error) {
	conditions := []string{"organization_id = $1", "client_id = $2"}
	args := []interface{}{organizationID, clientID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filters.InteractionType != nil {
		addCondition("interaction_type = $%d", *filters.InteractionType)
	}
	if filters.DateFrom != nil {
		addCondition("occurred_at >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCondition("occurred_at <= $%d", *filters.DateTo)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM interactions" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.DataAccess("count interactions", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(
		"SELECT %s FROM interactions%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d",
		interactionColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, apperr.DataAccess("list interactions", err)
	}
	defer rows.Close()

	interactions := make([]Interaction, 0)
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			return nil, 0, apperr.DataAccess("scan interaction", err)
		}
		interactions = append(interactions, interaction)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.DataAccess("list interactions", err)
	}

	return interactions, total, nil
}

// ListInteractionsSince retrieves all interactions for a client on or after
// the given instant, newest first.
func (r *Repo) ListInteractionsSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]Interaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM interactions
		WHERE organization_id = $1 AND client_id = $2 AND occurred_at >= $3
		ORDER BY occurred_at DESC`, interactionColumns)

	rows, err := r.pool.Query(ctx, query, organizationID, clientID, since)
	if err != nil {
		return nil, apperr.DataAccess("list interactions since", err)
	}
	defer rows.Close()

	interactions := make([]Interaction, 0)
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			return nil, apperr.DataAccess("scan interaction", err)
		}
		interactions = append(interactions, interaction)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("list interactions since", err)
	}

	return interactions, nil
}

// InsertCommunication logs a new client communication and returns the
// persisted row.
func (r *Repo) InsertCommunication(ctx context.Context, params CreateCommunicationParams) (Communication, error) {
	query := fmt.Sprintf(`
		INSERT INTO communications (organization_id, client_id, channel, direction, subject, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, communicationColumns)

	direction := params.Direction
	if direction == "" {
		direction = "outbound"
	}

	communication, err := scanCommunication(r.pool.QueryRow(ctx, query,
		params.OrganizationID, params.ClientID, params.Channel,
		direction, params.Subject, params.OccurredAt,
	))
	if err != nil {
		return Communication{}, apperr.DataAccess("insert communication", err)
	}

	return communication, nil
}

// ListCommunicationsSince retrieves all communications for a client on or
// after the given instant, newest first.
func (r *Repo) ListCommunicationsSince(ctx context.Context, organizationID, clientID uuid.UUID, since time.Time) ([]Communication, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM communications
		WHERE organization_id = $1 AND client_id = $2 AND occurred_at >= $3
		ORDER BY occurred_at DESC`, communicationColumns)

	rows, err := r.pool.Query(ctx, query, organizationID, clientID, since)
	if err != nil {
		return nil, apperr.DataAccess("list communications since", err)
	}
	defer rows.Close()

	communications := make([]Communication, 0)
	for rows.Next() {
		communication, err := scanCommunication(rows)
		if err != nil {
			return nil, apperr.DataAccess("scan communication", err)
		}
		communications = append(communications, communication)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("list communications since", err)
	}

	return communications, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInteraction(row rowScanner) (Interaction, error) {
	var interaction Interaction
	var occurredAt, createdAt time.Time

	err := row.Scan(
		&interaction.ID, &interaction.OrganizationID, &interaction.ClientID,
		&interaction.InteractionType, &interaction.Source, &interaction.Value,
		&interaction.Metadata, &occurredAt, &createdAt,
	)
	if err != nil {
		return Interaction{}, err
	}

	interaction.OccurredAt = occurredAt.UTC()
	interaction.CreatedAt = createdAt.UTC()

	return interaction, nil
}

func scanCommunication(row rowScanner) (Communication, error) {
	var communication Communication
	var occurredAt, createdAt time.Time

	err := row.Scan(
		&communication.ID, &communication.OrganizationID, &communication.ClientID,
		&communication.Channel, &communication.Direction, &communication.Subject,
		&occurredAt, &createdAt,
	)
	if err != nil {
		return Communication{}, err
	}

	communication.OccurredAt = occurredAt.UTC()
	communication.CreatedAt = createdAt.UTC()

	return communication, nil
}
