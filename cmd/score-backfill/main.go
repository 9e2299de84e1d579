// Command score-backfill recalculates the lead score of every client with
// recorded history. Intended for one-off runs after rule changes.
package main

import (
	"context"

	"pulse_crm_backend/internal/adapters"
	"pulse_crm_backend/internal/events"
	"pulse_crm_backend/internal/interactions"
	"pulse_crm_backend/internal/scoring"
	"pulse_crm_backend/platform/config"
	"pulse_crm_backend/platform/db"
	"pulse_crm_backend/platform/logger"
	"pulse_crm_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

type clientRef struct {
	organizationID uuid.UUID
	clientID       uuid.UUID
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting score backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	interactionsModule := interactions.NewModule(pool, eventBus, val, log)
	interactionLog := adapters.NewInteractionLog(interactionsModule.Repository())
	communicationLog := adapters.NewCommunicationLog(interactionsModule.Repository())
	scoringModule := scoring.NewModule(pool, eventBus, val, cfg, log, interactionLog, communicationLog)
	svc := scoringModule.Service()

	clients, err := listClientsWithHistory(ctx, pool)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		panic("failed to list clients: " + err.Error())
	}
	log.Info("clients to recalculate", "count", len(clients))

	const maxConcurrent = 8

	var group errgroup.Group
	group.SetLimit(maxConcurrent)

	for _, client := range clients {
		client := client
		group.Go(func() error {
			if _, err := svc.RecalculateScore(ctx, client.organizationID, client.clientID); err != nil {
				log.Error("failed to recalculate score",
					"organizationId", client.organizationID,
					"clientId", client.clientID,
					"error", err,
				)
			}
			// Failures are logged per client, not fatal to the run
			return nil
		})
	}

	_ = group.Wait()
	log.Info("score backfill completed", "clients", len(clients))
}

func listClientsWithHistory(ctx context.Context, pool *pgxpool.Pool) ([]clientRef, error) {
	rows, err := pool.Query(ctx, `
        SELECT organization_id, client_id FROM interactions
        UNION
        SELECT organization_id, client_id FROM communications
        ORDER BY organization_id, client_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]clientRef, 0)
	for rows.Next() {
		var ref clientRef
		if err := rows.Scan(&ref.organizationID, &ref.clientID); err != nil {
			return nil, err
		}
		clients = append(clients, ref)
	}

	return clients, rows.Err()
}
