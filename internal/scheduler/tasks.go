package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskScoreRecalculate = "scoring.recalculate"

type ScoreRecalculatePayload struct {
	OrganizationID string `json:"organizationId"`
	ClientID       string `json:"clientId"`
}

func NewScoreRecalculateTask(payload ScoreRecalculatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreRecalculate, data), nil
}

func ParseScoreRecalculatePayload(task *asynq.Task) (ScoreRecalculatePayload, error) {
	var payload ScoreRecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreRecalculatePayload{}, err
	}
	return payload, nil
}
