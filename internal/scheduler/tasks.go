package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSLASweep = "pipeline.sla.sweep"

type SLASweepPayload struct {
	Trigger     string `json:"trigger"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

func NewSLASweepTask(payload SLASweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSLASweep, data), nil
}

func ParseSLASweepPayload(task *asynq.Task) (SLASweepPayload, error) {
	var payload SLASweepPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SLASweepPayload{}, err
	}
	return payload, nil
}
