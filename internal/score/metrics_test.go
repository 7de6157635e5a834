package score

import (
	"errors"
	"testing"

	"github.com/ppiankov/feverpipe/internal/task"
)

func TestAccuracy(t *testing.T) {
	got, err := Accuracy([]string{"S", "R", "N", "N"}, []string{"S", "N", "N", "R"})
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if got != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", got)
	}
	if _, err := Accuracy([]int{1}, []int{1, 2}); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestMSE(t *testing.T) {
	got, err := MSE([]float64{1, 0, 0.5}, []float64{1, 1, 0})
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if !near(got, (0+1+0.25)/3) {
		t.Errorf("MSE = %v", got)
	}
	if _, err := MSE([]float64{1}, nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestMetrics(t *testing.T) {
	m, err := Metrics(task.SentenceRetrieval, []string{"0.5", "1"}, []string{"1", "1"})
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if _, ok := m["mse"]; !ok || !near(m["mse"], 0.125) {
		t.Errorf("unexpected regression metrics: %v", m)
	}

	m, err = Metrics(task.ClaimVerification, []string{"S", "R"}, []string{"S", "S"})
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if m["acc"] != 0.5 {
		t.Errorf("unexpected classification metrics: %v", m)
	}

	if _, err := Metrics("qqp", nil, nil); !errors.Is(err, task.ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
	if _, err := Metrics(task.SentenceRetrieval, []string{"x"}, []string{"1"}); err == nil {
		t.Error("expected parse error")
	}
}
