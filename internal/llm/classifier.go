package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/feverpipe/internal/task"
)

// ErrNoProvider is returned when classification is requested without a model
var ErrNoProvider = errors.New("no LLM provider configured")

// ErrUnparseable is returned when the model answer holds no label or score
var ErrUnparseable = errors.New("unparseable model answer")

const systemPrompt = "You are a careful fact-checking assistant. Answer with exactly what is asked and nothing else."

// Classifier fills the label or score column of task examples with a model's
// answer
type Classifier struct {
	provider  Provider
	task      task.Task
	maxTokens int
}

// NewClassifier creates a classifier for the given task
func NewClassifier(provider Provider, t task.Task, maxTokens int) (*Classifier, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	return &Classifier{provider: provider, task: t, maxTokens: maxTokens}, nil
}

// Task returns the task the classifier answers
func (c *Classifier) Task() task.Task {
	return c.task
}

// ProviderName returns the name of the underlying provider
func (c *Classifier) ProviderName() string {
	return c.provider.Name()
}

// Predict returns the value written to the record's last column: the class
// index for classification tasks and a score in [0, 1] for regression tasks
func (c *Classifier) Predict(ctx context.Context, ex task.Example) (string, error) {
	resp, err := c.provider.Complete(ctx, CompletionRequest{
		System:    systemPrompt,
		Prompt:    BuildPrompt(c.task, ex),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	if c.task.Mode == task.Regression {
		score, err := ParseScore(resp.Text)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(score, 'f', -1, 64), nil
	}

	code, err := ParseLabelCode(resp.Text)
	if err != nil {
		return "", err
	}
	idx, err := c.task.LabelIndex(code)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(idx), nil
}

// BuildPrompt renders the question for one example
func BuildPrompt(t task.Task, ex task.Example) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\n", ex.TextA)
	fmt.Fprintf(&b, "Evidence (page title : sentence): %s\n\n", ex.TextB)

	if t.Mode == task.Regression {
		b.WriteString("How relevant is the evidence sentence for verifying the claim? ")
		b.WriteString("Answer with a single number between 0 and 1.")
		return b.String()
	}

	b.WriteString("Does the evidence sentence SUPPORT the claim, REFUTE it, or give NOT ENOUGH INFO? ")
	b.WriteString("Answer with one word: SUPPORTS, REFUTES or NOT ENOUGH INFO.")
	return b.String()
}

var answerCodes = map[string]string{
	"S":               "S",
	"SUPPORT":         "S",
	"SUPPORTS":        "S",
	"SUPPORTED":       "S",
	"R":               "R",
	"REFUTE":          "R",
	"REFUTES":         "R",
	"REFUTED":         "R",
	"N":               "N",
	"NEI":             "N",
	"NOT":             "N",
	"NOT_ENOUGH_INFO": "N",
}

// ParseLabelCode maps a free-text answer to a one-letter label code. The
// first word that names a label wins.
func ParseLabelCode(text string) (string, error) {
	for _, word := range strings.Fields(strings.ToUpper(text)) {
		word = strings.Trim(word, `.,;:!?"'*()[]`)
		if code, ok := answerCodes[word]; ok {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnparseable, text)
}

var number = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)`)

// ParseScore extracts the first number of an answer, clamped to [0, 1]
func ParseScore(text string) (float64, error) {
	m := number.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	return min(max(v, 0), 1), nil
}
