package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestClaim_UnmarshalNormalisesLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Label
	}{
		{"full name", `{"id": 1, "label": "SUPPORTS"}`, LabelSupports},
		{"code", `{"id": 1, "label": "R"}`, LabelRefutes},
		{"underscore", `{"id": 1, "label": "NOT_ENOUGH_INFO"}`, LabelNotEnoughInfo},
		{"lower case", `{"id": 1, "label": "supports"}`, LabelSupports},
		{"absent", `{"id": 1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Claim
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if c.Label != tt.want {
				t.Errorf("Label = %q, want %q", c.Label, tt.want)
			}
		})
	}
}

func TestClaim_UnmarshalUnknownLabel(t *testing.T) {
	var c Claim
	err := json.Unmarshal([]byte(`{"id": 7, "label": "MAYBE"}`), &c)
	if !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("expected ErrUnknownLabel, got %v", err)
	}
}

func TestClaim_UnknownFieldsSurvive(t *testing.T) {
	var c Claim
	if err := json.Unmarshal([]byte(`{"id": 3, "claim": "x", "noun_phrases": ["x"]}`), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	raw, ok := c.Extra("noun_phrases")
	if !ok || string(raw) != `["x"]` {
		t.Fatalf("expected noun_phrases to be kept, got %s", raw)
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(back["noun_phrases"]) != `["x"]` {
		t.Errorf("noun_phrases lost on write: %s", data)
	}
}

func TestLabel_Valid(t *testing.T) {
	for _, l := range Labels() {
		if !l.Valid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if Label("S").Valid() {
		t.Error("a code is not a full label")
	}
}
