package scheduler

import (
	"context"
	"fmt"

	"pulse_crm_backend/platform/config"
	"pulse_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ScoreRecalculator refreshes a client's persisted lead score.
type ScoreRecalculator interface {
	RecalculateScore(ctx context.Context, organizationID, clientID uuid.UUID) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	recalc ScoreRecalculator
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, recalc ScoreRecalculator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		recalc: recalc,
		log:    log,
	}

	mux.HandleFunc(TaskScoreRecalculate, w.handleScoreRecalculate)

	return w, nil
}

func (w *Worker) handleScoreRecalculate(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoreRecalculatePayload(task)
	if err != nil {
		return err
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	clientID, err := uuid.Parse(payload.ClientID)
	if err != nil {
		return err
	}

	return w.recalc.RecalculateScore(ctx, orgID, clientID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
