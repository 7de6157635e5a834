package task

import (
	"errors"
	"testing"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/model"
)

func TestLookup(t *testing.T) {
	sr, err := Lookup(SentenceRetrieval)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if sr.Mode != Regression || sr.NumLabels() != 1 || sr.DummyLabel != "-1" {
		t.Errorf("unexpected sentence retrieval task: %+v", sr)
	}

	cv, err := Lookup(ClaimVerification)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if cv.Mode != Classification || cv.NumLabels() != 3 || cv.DummyLabel != "N" {
		t.Errorf("unexpected claim verification task: %+v", cv)
	}
	for i, l := range []string{"R", "S", "N"} {
		got, err := cv.LabelIndex(l)
		if err != nil || got != i {
			t.Errorf("LabelIndex(%q) = %d, %v; want %d", l, got, err, i)
		}
	}

	if _, err := Lookup("mnli"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestLabelOrderMatchesModel(t *testing.T) {
	cv, _ := Lookup(ClaimVerification)
	for i, l := range model.Labels() {
		if cv.Labels[i] != l.Code() {
			t.Errorf("class %d: task label %q, model label %q", i, cv.Labels[i], l.Code())
		}
	}
}

func TestExample(t *testing.T) {
	cv, _ := Lookup(ClaimVerification)
	rec := dataset.NewRecord(5, "Roman Atwood is a content creator.",
		model.Sentence{Page: "Roman_Atwood", ID: 1, Text: "He is best known for his vlogs -LRB- video blogs -RRB- ."},
	).WithExtra("S")

	ex := cv.Example("train", 3, rec)
	if ex.GUID != "train-3" {
		t.Errorf("GUID = %q", ex.GUID)
	}
	if ex.TextA != "Roman Atwood is a content creator." {
		t.Errorf("TextA = %q", ex.TextA)
	}
	if ex.TextB != "Roman Atwood : He is best known for his vlogs ( video blogs ) ." {
		t.Errorf("TextB = %q", ex.TextB)
	}
	if ex.Label != "S" {
		t.Errorf("Label = %q, want S", ex.Label)
	}

	if got := cv.Example(PurposePredict, 0, rec).Label; got != "N" {
		t.Errorf("predict label = %q, want dummy N", got)
	}
}

func TestProcessTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Savages_-LRB-2012_film-RRB-", "Savages ( 2012 film )"},
		{"Star_Wars-COLON-_Episode_IV", "Star Wars: Episode IV"},
		{"Paris", "Paris"},
	}
	for _, tt := range tests {
		if got := ProcessTitle(tt.in); got != tt.want {
			t.Errorf("ProcessTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessEvidence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"He was born -LRB- 1950 -RRB- .", "He was born ( 1950 ) ."},
		{"A city -LRB- -RRB- in France.", "A city in France."},
		{"Sources -LSB- 1 -RSB- say so.", "Sources  say so."},
		{"A -LRB- ; note -RRB- b", "A ( note ) b"},
		{"``Quoted'' text -- here", `"Quoted" text - here`},
	}
	for _, tt := range tests {
		if got := ProcessEvidence(tt.in); got != tt.want {
			t.Errorf("ProcessEvidence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessSentence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Born -LRB-1950-RRB- here", "Born ( 1950 ) here"},
		{"Text -LSB- a -RSB- and -LSB- b -RSB- end", "Text and end"},
		{"``hi''", `"hi"`},
	}
	for _, tt := range tests {
		if got := ProcessSentence(tt.in); got != tt.want {
			t.Errorf("ProcessSentence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
