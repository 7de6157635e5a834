package model

import (
	"encoding/json"
	"fmt"
)

// EvidenceItem is one annotated (page, sentence) pointer. A nil Page means
// no evidence is needed (NOT ENOUGH INFO claims).
// JSON form: [annotation_id, evidence_id, page|null, sentence_id|null]
type EvidenceItem struct {
	AnnotationID int
	EvidenceID   *int
	Page         *string
	SentenceID   *int
}

// EvidenceSet is one group of items that together justify the verdict
type EvidenceSet []EvidenceItem

// MarshalJSON encodes the item as a 4-element array
func (e EvidenceItem) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.AnnotationID, e.EvidenceID, e.Page, e.SentenceID})
}

// UnmarshalJSON decodes the 4-element array form
func (e *EvidenceItem) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("evidence item: %w", err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("evidence item: expected 4 fields, got %d", len(parts))
	}
	var ann *int
	if err := json.Unmarshal(parts[0], &ann); err != nil {
		return fmt.Errorf("evidence item annotation id: %w", err)
	}
	var out EvidenceItem
	if ann != nil {
		out.AnnotationID = *ann
	}
	if err := json.Unmarshal(parts[1], &out.EvidenceID); err != nil {
		return fmt.Errorf("evidence item evidence id: %w", err)
	}
	if err := json.Unmarshal(parts[2], &out.Page); err != nil {
		return fmt.Errorf("evidence item page: %w", err)
	}
	if err := json.Unmarshal(parts[3], &out.SentenceID); err != nil {
		return fmt.Errorf("evidence item sentence id: %w", err)
	}
	*e = out
	return nil
}

// Ref returns the (page, sentence) pair, ok=false when either side is null
func (e EvidenceItem) Ref() (SentenceRef, bool) {
	if e.Page == nil || e.SentenceID == nil {
		return SentenceRef{}, false
	}
	return SentenceRef{Page: *e.Page, ID: *e.SentenceID}, true
}

// SentenceRef addresses a sentence: JSON [page, sentence_id]
type SentenceRef struct {
	Page string
	ID   int
}

// MarshalJSON encodes [page, id]
func (r SentenceRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Page, r.ID})
}

// UnmarshalJSON decodes [page, id]
func (r *SentenceRef) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 2 {
		return fmt.Errorf("sentence ref: expected 2 fields, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Page); err != nil {
		return fmt.Errorf("sentence ref page: %w", err)
	}
	if err := json.Unmarshal(parts[1], &r.ID); err != nil {
		return fmt.Errorf("sentence ref id: %w", err)
	}
	return nil
}

// Sentence is a materialised candidate: JSON [page, sentence_id, text]
type Sentence struct {
	Page string
	ID   int
	Text string
}

// Ref drops the text
func (s Sentence) Ref() SentenceRef {
	return SentenceRef{Page: s.Page, ID: s.ID}
}

// MarshalJSON encodes [page, id, text]
func (s Sentence) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Page, s.ID, s.Text})
}

// UnmarshalJSON decodes [page, id, text]
func (s *Sentence) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("sentence: expected 3 fields, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &s.Page); err != nil {
		return fmt.Errorf("sentence page: %w", err)
	}
	if err := json.Unmarshal(parts[1], &s.ID); err != nil {
		return fmt.Errorf("sentence id: %w", err)
	}
	if err := json.Unmarshal(parts[2], &s.Text); err != nil {
		return fmt.Errorf("sentence text: %w", err)
	}
	return nil
}

// ScoredEvidence is a sentence with a relevance score: JSON [score, [page, id, text]]
type ScoredEvidence struct {
	Score    float64
	Sentence Sentence
}

// MarshalJSON encodes [score, sentence]
func (s ScoredEvidence) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Score, s.Sentence})
}

// UnmarshalJSON decodes [score, sentence]
func (s *ScoredEvidence) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("scored evidence: expected 2 fields, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &s.Score); err != nil {
		return fmt.Errorf("scored evidence score: %w", err)
	}
	return json.Unmarshal(parts[1], &s.Sentence)
}

// Classified is a sentence with its classifier label: JSON [label, [page, id, text]]
type Classified struct {
	Label    Label
	Sentence Sentence
}

// MarshalJSON encodes [label, sentence]
func (c Classified) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Label, c.Sentence})
}

// UnmarshalJSON decodes [label, sentence]; the label is not validated here
func (c *Classified) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("classified evidence: expected 2 fields, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &c.Label); err != nil {
		return fmt.Errorf("classified evidence label: %w", err)
	}
	return json.Unmarshal(parts[1], &c.Sentence)
}
