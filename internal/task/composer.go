package task

import (
	"encoding/json"
	"fmt"

	"github.com/p-n-ai/pai-classroom/internal/generator"
	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// Options is the generation part of a task request.
type Options struct {
	generator.Request
	IsIndividualTask bool `json:"isIndividualTask"`
}

// Composer builds per-student problem sets.
type Composer struct {
	gen *generator.Orchestrator
}

// NewComposer creates a composer over gen.
func NewComposer(gen *generator.Orchestrator) *Composer {
	return &Composer{gen: gen}
}

// Compose maps every student number to a problem list. Individual tasks
// call the orchestrator once per student; shared tasks call it once and give
// every student the same list. Any failure aborts the whole composition.
func (c *Composer) Compose(opts Options, studentNumbers []int) (map[int][]problem.Problem, error) {
	out := make(map[int][]problem.Problem, len(studentNumbers))
	if opts.IsIndividualTask {
		for _, n := range studentNumbers {
			problems, err := c.gen.Generate(opts.Request)
			if err != nil {
				return nil, fmt.Errorf("student %d: %w", n, err)
			}
			out[n] = problems
		}
		return out, nil
	}

	problems, err := c.gen.Generate(opts.Request)
	if err != nil {
		return nil, err
	}
	for _, n := range studentNumbers {
		out[n] = problems
	}
	return out, nil
}

// UserTasks composes and serializes problem sets in roster order. Shared
// tasks are encoded once so every student stores identical bytes.
func (c *Composer) UserTasks(opts Options, studentNumbers []int) ([]UserTask, error) {
	sets, err := c.Compose(opts, studentNumbers)
	if err != nil {
		return nil, err
	}

	var shared json.RawMessage
	userTasks := make([]UserTask, 0, len(studentNumbers))
	for _, n := range studentNumbers {
		var data json.RawMessage
		if !opts.IsIndividualTask && shared != nil {
			data = shared
		} else {
			data, err = json.Marshal(sets[n])
			if err != nil {
				return nil, fmt.Errorf("encoding problems: %w", err)
			}
			shared = data
		}
		userTasks = append(userTasks, UserTask{StudentNumber: n, Problems: data})
	}
	return userTasks, nil
}
