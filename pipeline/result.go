package pipeline

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	StageEmit  = "emit"
	StageWrite = "write"
)

type Failure struct {
	Class string
	Stage string
	Err   error
}

// Result summarizes one run. Generated holds absolute paths in the
// order the writer produced them.
type Result struct {
	RunID     uuid.UUID
	Generated []string
	Failures  []Failure
	Skipped   int
}

type reportDoc struct {
	RunID     string       `yaml:"run_id"`
	Generated []string     `yaml:"generated"`
	Skipped   int          `yaml:"skipped"`
	Failures  []failureDoc `yaml:"failures,omitempty"`
}

type failureDoc struct {
	Class string `yaml:"class"`
	Stage string `yaml:"stage"`
	Error string `yaml:"error"`
}

func (r *Result) MarshalYAML() (any, error) {
	doc := reportDoc{
		RunID:     r.RunID.String(),
		Generated: r.Generated,
		Skipped:   r.Skipped,
	}
	if doc.Generated == nil {
		doc.Generated = []string{}
	}
	for _, f := range r.Failures {
		doc.Failures = append(doc.Failures, failureDoc{Class: f.Class, Stage: f.Stage, Error: f.Err.Error()})
	}
	return doc, nil
}

// WriteReport saves the result as YAML.
func (r *Result) WriteReport(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}
