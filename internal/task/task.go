// Package task describes the two model tasks of the pipeline and turns
// intermediate records into model inputs.
package task

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/ppiankov/feverpipe/internal/dataset"
)

// ErrUnknownTask is returned for a task name that is not registered
var ErrUnknownTask = errors.New("unknown task")

// Mode is the output mode of a task
type Mode string

const (
	Regression     Mode = "regression"
	Classification Mode = "classification"
)

const (
	SentenceRetrieval = "sentence_retrieval"
	ClaimVerification = "claim_verification"
)

// PurposePredict marks records whose label column is absent or ignored
const PurposePredict = "predict"

// Task is one registered model task
type Task struct {
	Name       string
	Mode       Mode
	Labels     []string
	DummyLabel string
}

var registry = map[string]Task{
	SentenceRetrieval: {
		Name:       SentenceRetrieval,
		Mode:       Regression,
		Labels:     []string{""},
		DummyLabel: "-1",
	},
	ClaimVerification: {
		Name:       ClaimVerification,
		Mode:       Classification,
		Labels:     []string{"R", "S", "N"},
		DummyLabel: "N",
	},
}

// Lookup returns the named task
func Lookup(name string) (Task, error) {
	t, ok := registry[name]
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	return t, nil
}

// Names lists the registered task names
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NumLabels is 1 for regression and the class count for classification
func (t Task) NumLabels() int {
	return len(t.Labels)
}

// LabelIndex maps a classification label to its class index
func (t Task) LabelIndex(label string) (int, error) {
	if t.Mode != Classification {
		return 0, fmt.Errorf("task %s has no class labels", t.Name)
	}
	i := slices.Index(t.Labels, label)
	if i < 0 {
		return 0, fmt.Errorf("task %s: unknown label %q", t.Name, label)
	}
	return i, nil
}

// Example is one model input
type Example struct {
	GUID  string
	TextA string
	TextB string
	Label string
}

// Example converts a record into a model input. TextA is the cleaned claim,
// TextB is "<page title> : <cleaned sentence>". Records read for prediction
// get the task's dummy label.
func (t Task) Example(purpose string, index int, r dataset.Record) Example {
	label := t.DummyLabel
	if purpose != PurposePredict && r.Extra != nil {
		label = *r.Extra
	}
	return Example{
		GUID:  fmt.Sprintf("%s-%d", purpose, index),
		TextA: ProcessSentence(r.Claim),
		TextB: ProcessTitle(r.Page) + " : " + ProcessEvidence(r.Sentence),
		Label: label,
	}
}
