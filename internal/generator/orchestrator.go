package generator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

// TopicRequest asks for problems from one catalog leaf.
type TopicRequest struct {
	Path    []string       `json:"path"`
	Options map[string]any `json:"options"`
}

// Request is a multi-topic generation request.
type Request struct {
	Topics  []TopicRequest `json:"topics"`
	Shuffle ShuffleMode    `json:"shuffle"`
}

// OrchestratorConfig holds dependencies for the orchestrator.
type OrchestratorConfig struct {
	Registry *Registry
	Rand     problem.Rand // default: seeded from process entropy
	MaxCount int          // per-topic ceiling on count (default 1000)
}

// Orchestrator turns requests into problem lists.
type Orchestrator struct {
	registry *Registry
	rand     problem.Rand
	maxCount int
}

// NewOrchestrator creates an orchestrator over cfg.Registry.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	r := cfg.Rand
	if r == nil {
		r = problem.NewRand(0)
	}
	maxCount := cfg.MaxCount
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	return &Orchestrator{registry: cfg.Registry, rand: r, maxCount: maxCount}
}

// Registry returns the registry the orchestrator resolves against.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Generate processes topics in request order and concatenates their
// problems. Any failure aborts the call; no partial list is returned.
func (o *Orchestrator) Generate(req Request) ([]problem.Problem, error) {
	mode, err := req.Shuffle.Normalize()
	if err != nil {
		return nil, err
	}

	out := []problem.Problem{}
	for _, t := range req.Topics {
		batch, err := o.generateTopic(t)
		if err != nil {
			return nil, err
		}
		if mode == ShuffleTopics {
			shuffle(o.rand, batch)
		}
		out = append(out, batch...)
	}
	if mode == ShuffleAll {
		shuffle(o.rand, out)
	}
	return out, nil
}

// GenerateOne returns a single problem for path. Any count in options is
// ignored.
func (o *Orchestrator) GenerateOne(path []string, options map[string]any) (problem.Problem, error) {
	opts := maps.Clone(options)
	if opts == nil {
		opts = map[string]any{}
	}
	opts[CountKey] = 1
	problems, err := o.Generate(Request{
		Topics:  []TopicRequest{{Path: path, Options: opts}},
		Shuffle: ShuffleNone,
	})
	if err != nil {
		return problem.Problem{}, err
	}
	if len(problems) == 0 {
		return problem.Problem{}, &GenerationError{Path: strings.Join(path, "/"), Err: fmt.Errorf("no problem generated")}
	}
	return problems[0], nil
}

func (o *Orchestrator) generateTopic(t TopicRequest) (batch []problem.Problem, err error) {
	leaf, err := o.registry.Resolve(t.Path)
	if err != nil {
		return nil, err
	}
	path := strings.Join(leaf.Path, "/")

	params, count, err := ResolveParams(leaf.Defaults, t.Options, o.maxCount)
	if err != nil {
		return nil, &GenerationError{Path: path, Err: err}
	}
	slog.Debug("generating problems", "path", path, "count", count)

	defer func() {
		if rec := recover(); rec != nil {
			batch = nil
			err = &GenerationError{Path: path, Err: fmt.Errorf("generator panicked: %v", rec)}
		}
	}()

	batch = make([]problem.Problem, 0, count)
	for range count {
		p, err := leaf.Generate(o.rand, params)
		if err != nil {
			return nil, &GenerationError{Path: path, Err: err}
		}
		batch = append(batch, p)
	}
	return batch, nil
}

func shuffle(r problem.Rand, problems []problem.Problem) {
	r.Shuffle(len(problems), func(i, j int) {
		problems[i], problems[j] = problems[j], problems[i]
	})
}

// CountDuplicates returns how many problems serialize identically to an
// earlier problem in the list. It is a quality check for generators whose
// ranges are too narrow to produce distinct problems.
func CountDuplicates(problems []problem.Problem) (int, error) {
	seen := make(map[string]struct{}, len(problems))
	dups := 0
	for _, p := range problems {
		data, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("encoding problem: %w", err)
		}
		if _, ok := seen[string(data)]; ok {
			dups++
			continue
		}
		seen[string(data)] = struct{}{}
	}
	return dups, nil
}
