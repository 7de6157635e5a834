package score

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/feverpipe/internal/task"
)

// Accuracy returns the fraction of positions where preds equals labels
func Accuracy[T comparable](preds, labels []T) (float64, error) {
	if len(preds) != len(labels) {
		return 0, fmt.Errorf("accuracy: %w: %d vs %d", ErrLengthMismatch, len(preds), len(labels))
	}
	hits := 0
	for i := range preds {
		if preds[i] == labels[i] {
			hits++
		}
	}
	return ratio(float64(hits), float64(len(preds))), nil
}

// MSE returns the mean squared error of preds against labels
func MSE(preds, labels []float64) (float64, error) {
	if len(preds) != len(labels) {
		return 0, fmt.Errorf("mse: %w: %d vs %d", ErrLengthMismatch, len(preds), len(labels))
	}
	var sum float64
	for i := range preds {
		d := preds[i] - labels[i]
		sum += d * d
	}
	return ratio(sum, float64(len(preds))), nil
}

// Metrics evaluates one column of classifier output for the named task:
// regression tasks report "mse", classification tasks report "acc".
func Metrics(taskName string, preds, labels []string) (map[string]float64, error) {
	t, err := task.Lookup(taskName)
	if err != nil {
		return nil, err
	}

	switch t.Mode {
	case task.Regression:
		p, err := parseFloats(preds)
		if err != nil {
			return nil, fmt.Errorf("predictions: %w", err)
		}
		l, err := parseFloats(labels)
		if err != nil {
			return nil, fmt.Errorf("labels: %w", err)
		}
		mse, err := MSE(p, l)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"mse": mse}, nil
	case task.Classification:
		acc, err := Accuracy(preds, labels)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"acc": acc}, nil
	}
	return nil, fmt.Errorf("%w: %s has no metric for mode %q", task.ErrUnknownTask, taskName, t.Mode)
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}
