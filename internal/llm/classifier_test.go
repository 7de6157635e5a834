package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/task"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name     string
	answer   string
	err      error
	requests []CompletionRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &CompletionResponse{Text: m.answer, Model: "mock"}, nil
}

func (m *MockProvider) IsAvailable(context.Context) bool {
	return true
}

func mustTask(t *testing.T, name string) task.Task {
	t.Helper()
	tk, err := task.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s) failed: %v", name, err)
	}
	return tk
}

var example = task.Example{
	GUID:  "predict-0",
	TextA: "Roman Atwood is a content creator .",
	TextB: "Roman Atwood : He is best known for his vlogs .",
}

func TestNewClassifier_NoProvider(t *testing.T) {
	if _, err := NewClassifier(nil, mustTask(t, task.ClaimVerification), 8); !errors.Is(err, ErrNoProvider) {
		t.Errorf("Expected ErrNoProvider, got %v", err)
	}
}

func TestClassifier_PredictClassification(t *testing.T) {
	tests := []struct {
		answer string
		want   string
	}{
		{"SUPPORTS", "1"},
		{"Refutes.", "0"},
		{"NOT ENOUGH INFO", "2"},
		{"**S**", "1"},
		{"The answer is: REFUTED", "0"},
	}

	for _, tt := range tests {
		mock := &MockProvider{name: "mock", answer: tt.answer}
		c, err := NewClassifier(mock, mustTask(t, task.ClaimVerification), 8)
		if err != nil {
			t.Fatalf("NewClassifier failed: %v", err)
		}

		got, err := c.Predict(context.Background(), example)
		if err != nil {
			t.Fatalf("Predict(%q) failed: %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Predict(%q) = %q, want %q", tt.answer, got, tt.want)
		}
	}
}

func TestClassifier_PredictRegression(t *testing.T) {
	tests := []struct {
		answer string
		want   string
	}{
		{"0.75", "0.75"},
		{"Relevance: 1", "1"},
		{"2.5", "1"},
		{"-1", "0"},
		{".5", "0.5"},
	}

	for _, tt := range tests {
		mock := &MockProvider{name: "mock", answer: tt.answer}
		c, err := NewClassifier(mock, mustTask(t, task.SentenceRetrieval), 8)
		if err != nil {
			t.Fatalf("NewClassifier failed: %v", err)
		}
		got, err := c.Predict(context.Background(), example)
		if err != nil {
			t.Fatalf("Predict(%q) failed: %v", tt.answer, err)
		}
		if got != tt.want {
			t.Errorf("Predict(%q) = %q, want %q", tt.answer, got, tt.want)
		}
	}
}

func TestClassifier_Unparseable(t *testing.T) {
	mock := &MockProvider{name: "mock", answer: "I cannot tell"}
	c, err := NewClassifier(mock, mustTask(t, task.ClaimVerification), 8)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	if _, err := c.Predict(context.Background(), example); !errors.Is(err, ErrUnparseable) {
		t.Errorf("Expected ErrUnparseable, got %v", err)
	}

	c, _ = NewClassifier(mock, mustTask(t, task.SentenceRetrieval), 8)
	if _, err := c.Predict(context.Background(), example); !errors.Is(err, ErrUnparseable) {
		t.Errorf("Expected ErrUnparseable for score, got %v", err)
	}
}

func TestClassifier_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	c, err := NewClassifier(&MockProvider{name: "mock", err: boom}, mustTask(t, task.ClaimVerification), 8)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	if _, err := c.Predict(context.Background(), example); !errors.Is(err, boom) {
		t.Errorf("Expected provider error, got %v", err)
	}
}

func TestClassifier_SendsPrompt(t *testing.T) {
	mock := &MockProvider{name: "mock", answer: "S"}
	c, _ := NewClassifier(mock, mustTask(t, task.ClaimVerification), 4)
	if _, err := c.Predict(context.Background(), example); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(mock.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(mock.requests))
	}
	req := mock.requests[0]
	if req.MaxTokens != 4 || req.System == "" {
		t.Errorf("unexpected request: %+v", req)
	}
	if !strings.Contains(req.Prompt, example.TextA) || !strings.Contains(req.Prompt, example.TextB) {
		t.Errorf("prompt is missing the example texts: %s", req.Prompt)
	}
	if c.ProviderName() != "mock" {
		t.Errorf("unexpected provider name %q", c.ProviderName())
	}
}

func TestBuildPrompt_ByMode(t *testing.T) {
	cv := BuildPrompt(mustTask(t, task.ClaimVerification), example)
	if !strings.Contains(cv, "NOT ENOUGH INFO") {
		t.Errorf("classification prompt should list the labels: %s", cv)
	}
	sr := BuildPrompt(mustTask(t, task.SentenceRetrieval), example)
	if !strings.Contains(sr, "between 0 and 1") {
		t.Errorf("regression prompt should ask for a score: %s", sr)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"", "", false},
		{"openai", "openai", false},
		{"OpenAI", "openai", false},
		{"claude", "anthropic", false},
		{"ollama", "ollama", false},
		{"bard", "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(Config{Provider: tt.provider, APIKey: "k", Model: "m"})
		if (err != nil) != tt.wantErr {
			t.Errorf("NewProvider(%q) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if tt.wantName == "" {
			if p != nil {
				t.Errorf("NewProvider(%q) expected nil provider", tt.provider)
			}
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("NewProvider(%q).Name() = %q, want %q", tt.provider, p.Name(), tt.wantName)
		}
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.Search.HTTPSProxy = "http://proxy:3128"

	got := ConfigFromModel(cfg)
	if got.Provider != "ollama" || got.HTTPSProxy != "http://proxy:3128" || got.MaxTokens != 16 {
		t.Errorf("unexpected config: %+v", got)
	}
}
