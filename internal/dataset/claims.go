package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/ppiankov/feverpipe/internal/model"
)

// ErrMalformedRecord marks an input line that does not match its file format
var ErrMalformedRecord = errors.New("malformed record")

const maxLineSize = 64 << 20

// scanLines calls fn for each non-blank line of r with its 1-based line
// number, stopping early when fn returns false. Trailing carriage returns are
// dropped; the slice is only valid for the duration of the call.
func scanLines(r io.Reader, fn func(n int, line []byte) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if !fn(n, line) {
			return nil
		}
	}
	return sc.Err()
}

// DecodeJSONL decodes each line of r into a T. A line that fails to decode
// ends the sequence with an error wrapping ErrMalformedRecord.
func DecodeJSONL[T any](r io.Reader) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		err := scanLines(r, func(n int, line []byte) bool {
			var v T
			if err := json.Unmarshal(line, &v); err != nil {
				yield(zero, fmt.Errorf("line %d: %w: %v", n, ErrMalformedRecord, err))
				return false
			}
			return yield(v, nil)
		})
		if err != nil {
			yield(zero, fmt.Errorf("read input: %w", err))
		}
	}
}

// Claims streams the claims of a newline JSON reader
func Claims(r io.Reader) iter.Seq2[model.Claim, error] {
	return DecodeJSONL[model.Claim](r)
}

// ReadClaims loads a whole claim file
func ReadClaims(path string) ([]model.Claim, error) {
	return readJSONL[model.Claim](path)
}

// ReadVerdicts loads a prediction file
func ReadVerdicts(path string) ([]model.ClaimVerdict, error) {
	return readJSONL[model.ClaimVerdict](path)
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []T
	for v, err := range DecodeJSONL[T](f) {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// JSONLWriter writes one JSON value per line into an AtomicFile
type JSONLWriter struct {
	out *AtomicFile
	enc *json.Encoder
	n   int
}

// CreateJSONL opens path for atomic newline JSON output
func CreateJSONL(path string) (*JSONLWriter, error) {
	out, err := CreateAtomic(path)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{out: out, enc: enc}, nil
}

// Write encodes v as one line
func (w *JSONLWriter) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("write record %d: %w", w.n+1, err)
	}
	w.n++
	return nil
}

// Count returns the number of records written
func (w *JSONLWriter) Count() int {
	return w.n
}

// Commit finalizes the output file
func (w *JSONLWriter) Commit() error {
	return w.out.Commit()
}

// Abort discards the output; safe to defer
func (w *JSONLWriter) Abort() {
	w.out.Abort()
}
