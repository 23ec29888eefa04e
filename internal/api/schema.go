package api

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemas holds the compiled request schemas.
type schemas struct {
	createTask   *gojsonschema.Schema
	topicOptions *gojsonschema.Schema
}

func loadSchemas() (*schemas, error) {
	createTask, err := compileSchema("schemas/create_task.json")
	if err != nil {
		return nil, err
	}
	topicOptions, err := compileSchema("schemas/topic_options.json")
	if err != nil {
		return nil, err
	}
	return &schemas{createTask: createTask, topicOptions: topicOptions}, nil
}

func compileSchema(name string) (*gojsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return s, nil
}

// validateJSON checks body against s. It returns one message per violation,
// or nil when the document is valid.
func validateJSON(s *gojsonschema.Schema, body []byte) ([]string, error) {
	result, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validating request: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return violations, nil
}
