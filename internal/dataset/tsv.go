package dataset

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/feverpipe/internal/model"
)

// Record is one line of the intermediate sentence file:
//
//	claim_id \t claim \t page \t sent_id \t sentence [\t label_or_score]
//
// Extra is nil for the five-column (unlabelled) form.
type Record struct {
	ClaimID  int
	Claim    string
	Page     string
	SentID   int
	Sentence string
	Extra    *string
}

// NewRecord builds a record for a claim and one of its candidate sentences
func NewRecord(claimID int, claim string, s model.Sentence) Record {
	return Record{ClaimID: claimID, Claim: claim, Page: s.Page, SentID: s.ID, Sentence: s.Text}
}

// WithExtra returns a copy of r carrying the sixth column
func (r Record) WithExtra(v string) Record {
	r.Extra = &v
	return r
}

// Evidence returns the record's sentence
func (r Record) Evidence() model.Sentence {
	return model.Sentence{Page: r.Page, ID: r.SentID, Text: r.Sentence}
}

// Score parses the sixth column as a float
func (r Record) Score() (float64, error) {
	if r.Extra == nil {
		return 0, fmt.Errorf("claim %d: record has no score column", r.ClaimID)
	}
	return strconv.ParseFloat(strings.TrimSpace(*r.Extra), 64)
}

// Label parses the sixth column as a class index (0=R, 1=S, 2=N)
func (r Record) Label() (model.Label, error) {
	if r.Extra == nil {
		return "", fmt.Errorf("claim %d: record has no label column", r.ClaimID)
	}
	i, err := strconv.Atoi(strings.TrimSpace(*r.Extra))
	if err != nil {
		return "", fmt.Errorf("label %q: %w", *r.Extra, err)
	}
	return model.LabelFromIndex(i)
}

var fieldCleaner = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// clean keeps free text on one line and out of the column separator
func clean(s string) string {
	return fieldCleaner.Replace(s)
}

// String renders the record as one TSV line without the trailing newline
func (r Record) String() string {
	fields := []string{
		strconv.Itoa(r.ClaimID),
		clean(r.Claim),
		clean(r.Page),
		strconv.Itoa(r.SentID),
		clean(r.Sentence),
	}
	if r.Extra != nil {
		fields = append(fields, clean(*r.Extra))
	}
	return strings.Join(fields, "\t")
}

// ParseRecord parses one TSV line. Wrong field counts and non-integer ids
// are reported as ErrMalformedRecord.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 5 && len(fields) != 6 {
		return Record{}, fmt.Errorf("%w: expected 5 or 6 fields, got %d", ErrMalformedRecord, len(fields))
	}
	claimID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: claim id %q", ErrMalformedRecord, fields[0])
	}
	sentID, err := strconv.Atoi(fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("%w: sentence id %q", ErrMalformedRecord, fields[3])
	}

	r := Record{
		ClaimID:  claimID,
		Claim:    fields[1],
		Page:     fields[2],
		SentID:   sentID,
		Sentence: fields[4],
	}
	if len(fields) == 6 {
		r = r.WithExtra(fields[5])
	}
	return r, nil
}

// Records streams the records of r. The first malformed line ends the
// sequence with an error carrying its line number.
func Records(r io.Reader) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		err := scanLines(r, func(n int, line []byte) bool {
			rec, err := ParseRecord(string(line))
			if err != nil {
				yield(Record{}, fmt.Errorf("line %d: %w", n, err))
				return false
			}
			return yield(rec, nil)
		})
		if err != nil {
			yield(Record{}, fmt.Errorf("read input: %w", err))
		}
	}
}

// ReadRecords loads a whole TSV file
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []Record
	for rec, err := range Records(f) {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// TSVWriter writes records into an AtomicFile
type TSVWriter struct {
	out *AtomicFile
	n   int
}

// CreateTSV opens path for atomic TSV output
func CreateTSV(path string) (*TSVWriter, error) {
	out, err := CreateAtomic(path)
	if err != nil {
		return nil, err
	}
	return &TSVWriter{out: out}, nil
}

// Write appends one record
func (w *TSVWriter) Write(r Record) error {
	if _, err := io.WriteString(w.out, r.String()+"\n"); err != nil {
		return fmt.Errorf("write record %d: %w", w.n+1, err)
	}
	w.n++
	return nil
}

// Count returns the number of records written
func (w *TSVWriter) Count() int {
	return w.n
}

// Commit finalizes the output file
func (w *TSVWriter) Commit() error {
	return w.out.Commit()
}

// Abort discards the output; safe to defer
func (w *TSVWriter) Abort() {
	w.out.Abort()
}
