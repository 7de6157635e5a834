// Package sentence turns a document's lines blob into addressable sentences.
//
// A blob is a sequence of "<id>\t<text>[\t<anchor>...]" records separated by
// newlines. A record starts at any line beginning with a digit; lines that do
// not start with a digit continue the previous record.
package sentence

import (
	"iter"
	"strconv"
	"strings"

	"github.com/ppiankov/feverpipe/internal/model"
)

// Record is one parsed (id, text) pair
type Record struct {
	ID   int
	Text string
}

// Split yields the addressable records of a lines blob in document order.
// Records without a tab, with a non-numeric id or with blank text are
// skipped. The returned sequence can be ranged over any number of times.
func Split(lines string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for raw := range rawRecords(lines) {
			rec, ok := parseRecord(raw)
			if !ok {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Sentences is Split with the page attached
func Sentences(page, lines string) iter.Seq[model.Sentence] {
	return func(yield func(model.Sentence) bool) {
		for rec := range Split(lines) {
			if !yield(model.Sentence{Page: page, ID: rec.ID, Text: rec.Text}) {
				return
			}
		}
	}
}

// Document is the parsed sentence list of one page, in document order
type Document struct {
	Page      string
	Sentences []model.Sentence
	byID      map[int]int
}

// Parse materialises every sentence of a page. If an id repeats, the first
// record wins for lookups by id.
func Parse(page, lines string) *Document {
	d := &Document{Page: page, byID: make(map[int]int)}
	for s := range Sentences(page, lines) {
		if _, dup := d.byID[s.ID]; !dup {
			d.byID[s.ID] = len(d.Sentences)
		}
		d.Sentences = append(d.Sentences, s)
	}
	return d
}

// Get returns the sentence with the given id
func (d *Document) Get(id int) (model.Sentence, bool) {
	if d == nil {
		return model.Sentence{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return model.Sentence{}, false
	}
	return d.Sentences[i], true
}

// rawRecords splits at every newline that is followed by a digit
func rawRecords(lines string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if lines == "" {
			return
		}
		start := 0
		for i := 0; i < len(lines); i++ {
			if lines[i] != '\n' || i+1 >= len(lines) || !isDigit(lines[i+1]) {
				continue
			}
			if !yield(lines[start:i]) {
				return
			}
			start = i + 1
		}
		yield(lines[start:])
	}
}

func parseRecord(raw string) (Record, bool) {
	fields := strings.Split(raw, "\t")
	if len(fields) < 2 {
		return Record{}, false
	}
	if strings.TrimSpace(fields[1]) == "" {
		return Record{}, false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id < 0 {
		return Record{}, false
	}
	return Record{ID: id, Text: fields[1]}, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
