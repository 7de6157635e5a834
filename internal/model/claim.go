package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLabel is returned when a label string or index does not name a FEVER verdict
var ErrUnknownLabel = errors.New("unknown label")

// Label is a claim or sentence verdict
type Label string

const (
	LabelSupports      Label = "SUPPORTS"
	LabelRefutes       Label = "REFUTES"
	LabelNotEnoughInfo Label = "NOT ENOUGH INFO"
)

// NotVerifiable is the "verifiable" value of claims without evidence
const NotVerifiable = "NOT VERIFIABLE"

// labelIndex is the class order used by classifier label files (0=R, 1=S, 2=N)
var labelIndex = []Label{LabelRefutes, LabelSupports, LabelNotEnoughInfo}

// Labels returns the classification label order
func Labels() []Label {
	out := make([]Label, len(labelIndex))
	copy(out, labelIndex)
	return out
}

// Valid reports whether l is one of the three verdicts
func (l Label) Valid() bool {
	switch l {
	case LabelSupports, LabelRefutes, LabelNotEnoughInfo:
		return true
	}
	return false
}

// Code returns the one-letter code (S, R, N) written to training files
func (l Label) Code() string {
	if l == "" {
		return ""
	}
	return string(l)[:1]
}

// ParseLabel accepts full names, underscore variants and one-letter codes
func ParseLabel(s string) (Label, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUPPORTS", "S":
		return LabelSupports, nil
	case "REFUTES", "R":
		return LabelRefutes, nil
	case "NOT ENOUGH INFO", "NOT_ENOUGH_INFO", "N":
		return LabelNotEnoughInfo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// LabelFromIndex maps a classifier class index to its label
func LabelFromIndex(i int) (Label, error) {
	if i < 0 || i >= len(labelIndex) {
		return "", fmt.Errorf("%w: index %d", ErrUnknownLabel, i)
	}
	return labelIndex[i], nil
}

// Claim is one line of a FEVER dataset file. Gold fields (Label, Evidence)
// are never modified by pipeline stages; stages only fill the Predicted*
// and Classified fields. Unknown JSON fields survive a read/write cycle.
type Claim struct {
	ID                  int              `json:"id"`
	Text                string           `json:"claim"`
	Label               Label            `json:"label,omitempty"`
	Verifiable          string           `json:"verifiable,omitempty"`
	Evidence            []EvidenceSet    `json:"evidence,omitempty"`
	PredictedPages      []string         `json:"predicted_pages,omitempty"`
	PredictedSentences  []ScoredEvidence `json:"predicted_sentences,omitempty"`
	ClassifiedEvidences []Classified     `json:"classified_evidences,omitempty"`

	extra map[string]json.RawMessage
}

type claimAlias Claim

var claimKeys = []string{
	"id", "claim", "label", "verifiable", "evidence",
	"predicted_pages", "predicted_sentences", "classified_evidences",
}

// UnmarshalJSON decodes the known fields and keeps everything else. Label
// variants accepted by ParseLabel are normalised to the full verdict name.
func (c *Claim) UnmarshalJSON(data []byte) error {
	var a claimAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range claimKeys {
		delete(raw, k)
	}
	if a.Label != "" && !a.Label.Valid() {
		l, err := ParseLabel(string(a.Label))
		if err != nil {
			return fmt.Errorf("claim %d: %w", a.ID, err)
		}
		a.Label = l
	}
	*c = Claim(a)
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}

// MarshalJSON writes the known fields followed by any preserved extras
func (c Claim) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(claimAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.extra) == 0 {
		return data, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// SetExtra attaches an arbitrary derived field (e.g. "noun_phrases")
func (c *Claim) SetExtra(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if c.extra == nil {
		c.extra = make(map[string]json.RawMessage)
	}
	c.extra[key] = data
	return nil
}

// Extra returns a preserved raw field
func (c *Claim) Extra(key string) (json.RawMessage, bool) {
	v, ok := c.extra[key]
	return v, ok
}

// IsVerifiable is false only for claims explicitly marked NOT VERIFIABLE
func (c *Claim) IsVerifiable() bool {
	return c.Verifiable != NotVerifiable
}

// EvidencePages returns every non-null page referenced by the gold evidence
func (c *Claim) EvidencePages() []string {
	var pages []string
	seen := make(map[string]bool)
	for _, set := range c.Evidence {
		for _, item := range set {
			if item.Page == nil || seen[*item.Page] {
				continue
			}
			seen[*item.Page] = true
			pages = append(pages, *item.Page)
		}
	}
	return pages
}
