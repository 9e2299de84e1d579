package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pulse_crm_backend/platform/apperr"
)

const scoreRecordColumns = `id, organization_id, client_id, score, factors, previous_score, score_change,
		interactions_count, communications_count, period_days, calculated_at, last_updated`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new score store repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetLatest retrieves the most recent score record for a client.
// Returns nil when the client has no score history; that is an expected
// steady state for new clients, not an error.
func (r *Repo) GetLatest(ctx context.Context, organizationID, clientID uuid.UUID) (*ScoreRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM score_records
		WHERE organization_id = $1 AND client_id = $2
		ORDER BY last_updated DESC
		LIMIT 1`, scoreRecordColumns)

	record, err := scanScoreRecord(r.pool.QueryRow(ctx, query, organizationID, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.DataAccess("get latest score record", err)
	}

	return &record, nil
}

// Append inserts a new score record and returns the persisted row.
func (r *Repo) Append(ctx context.Context, params AppendParams) (ScoreRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO score_records (
			organization_id, client_id, score, factors, previous_score, score_change,
			interactions_count, communications_count, period_days, calculated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`, scoreRecordColumns)

	factors := params.Factors
	if len(factors) == 0 {
		factors = []byte(`{}`)
	}

	record, err := scanScoreRecord(r.pool.QueryRow(ctx, query,
		params.OrganizationID, params.ClientID, params.Score, factors,
		params.PreviousScore, params.ScoreChange, params.InteractionsCount,
		params.CommunicationsCount, params.PeriodDays, params.CalculatedAt,
	))
	if err != nil {
		return ScoreRecord{}, apperr.DataAccess("append score record", err)
	}

	return record, nil
}

// List retrieves the latest record per client matching the filters, ordered
// by score descending, plus the total match count before pagination.
func (r *Repo) List(ctx context.Context, organizationID uuid.UUID, filters ScoreFilters) ([]ScoreRecord, int, error) {
	conditions := []string{}
	args := []interface{}{organizationID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filters.MinScore != nil {
		addCondition("score >= $%d", *filters.MinScore)
	}
	if filters.MaxScore != nil {
		addCondition("score <= $%d", *filters.MaxScore)
	}
	if filters.DateFrom != nil {
		addCondition("last_updated >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCondition("last_updated <= $%d", *filters.DateTo)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	latest := `
		SELECT DISTINCT ON (client_id) ` + scoreRecordColumns + `
		FROM score_records
		WHERE organization_id = $1
		ORDER BY client_id, last_updated DESC`

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) latest%s", latest, where)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperr.DataAccess("count score records", err)
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
		"SELECT * FROM (%s) latest%s ORDER BY score DESC, last_updated DESC LIMIT $%d OFFSET $%d",
		latest, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, apperr.DataAccess("list score records", err)
	}
	defer rows.Close()

	records := make([]ScoreRecord, 0)
	for rows.Next() {
		record, err := scanScoreRecord(rows)
		if err != nil {
			return nil, 0, apperr.DataAccess("scan score record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.DataAccess("list score records", err)
	}

	return records, total, nil
}

// Distribution buckets every client's latest score into hot/warm/cold tiers.
// Only the most recent record per client is considered, so a client with
// many recalculations is counted exactly once.
func (r *Repo) Distribution(ctx context.Context, organizationID uuid.UUID, hotMin, warmMin int) (Distribution, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE score >= $2)                   AS hot,
			COUNT(*) FILTER (WHERE score >= $3 AND score < $2)    AS warm,
			COUNT(*) FILTER (WHERE score < $3)                    AS cold,
			COUNT(*)                                              AS total
		FROM (
			SELECT DISTINCT ON (client_id) score
			FROM score_records
			WHERE organization_id = $1
			ORDER BY client_id, last_updated DESC
		) latest`

	var dist Distribution
	err := r.pool.QueryRow(ctx, query, organizationID, hotMin, warmMin).Scan(
		&dist.Hot, &dist.Warm, &dist.Cold, &dist.Total,
	)
	if err != nil {
		return Distribution{}, apperr.DataAccess("score distribution", err)
	}

	return dist, nil
}

// ListClientIDs returns every client with score history, for bulk refresh.
func (r *Repo) ListClientIDs(ctx context.Context, organizationID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT client_id
		FROM score_records
		WHERE organization_id = $1
		ORDER BY client_id`, organizationID)
	if err != nil {
		return nil, apperr.DataAccess("list scored clients", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.DataAccess("scan client id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("list scored clients", err)
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScoreRecord(row rowScanner) (ScoreRecord, error) {
	var record ScoreRecord
	var calculatedAt, lastUpdated time.Time

	err := row.Scan(
		&record.ID, &record.OrganizationID, &record.ClientID, &record.Score,
		&record.Factors, &record.PreviousScore, &record.ScoreChange,
		&record.InteractionsCount, &record.CommunicationsCount, &record.PeriodDays,
		&calculatedAt, &lastUpdated,
	)
	if err != nil {
		return ScoreRecord{}, err
	}

	record.CalculatedAt = calculatedAt.UTC()
	record.LastUpdated = lastUpdated.UTC()

	return record, nil
}
