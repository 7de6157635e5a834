// Package ingest builds the document store from newline JSON dump shards.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/docstore"
)

// RawDocument is one line of a dump shard
type RawDocument struct {
	ID    string `json:"id"`
	Text  string `json:"text,omitempty"`
	Lines string `json:"lines"`
}

// Preprocess may rewrite a document; keep=false drops it
type Preprocess func(doc RawDocument) (out RawDocument, keep bool)

// Stats summarises an ingest run
type Stats struct {
	Files     int
	Documents int
	Dropped   int
}

// Ingester reads shards in parallel and writes them with a single writer
type Ingester struct {
	workers    int
	preprocess Preprocess
	logger     *zap.Logger
}

// New creates an ingester. A nil preprocess keeps every non-empty document.
func New(workers int, preprocess Preprocess, logger *zap.Logger) *Ingester {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{workers: workers, preprocess: preprocess, logger: logger}
}

// Files lists the shard files under path: the file itself, or every regular
// file below a directory in lexical order
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("path %s is invalid: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

type shard struct {
	docs    []docstore.Document
	dropped int
}

// Build creates a new store at dbPath from the shards under dataPath. It
// refuses to overwrite an existing store; on failure the partial store file
// is removed.
func (in *Ingester) Build(ctx context.Context, dataPath, dbPath string) (stats Stats, err error) {
	files, err := Files(dataPath)
	if err != nil {
		return Stats{}, err
	}

	store, err := docstore.Create(dbPath)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dbPath)
		}
	}()

	shards := make(chan shard)
	collected := make(chan []docstore.Document, 1)
	go func() {
		var all []docstore.Document
		for s := range shards {
			all = append(all, s.docs...)
			stats.Files++
			stats.Dropped += s.dropped
			in.logger.Debug("shard parsed", zap.Int("files", stats.Files), zap.Int("total_files", len(files)))
		}
		collected <- all
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for _, file := range files {
		g.Go(func() error {
			s, err := in.parse(file)
			if err != nil {
				return err
			}
			select {
			case shards <- s:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	werr := g.Wait()
	close(shards)
	docs := <-collected
	if werr != nil {
		return stats, werr
	}

	in.logger.Info("writing documents", zap.Int("documents", len(docs)), zap.String("db", dbPath))
	if err := store.InsertMany(ctx, docs); err != nil {
		return stats, err
	}
	stats.Documents = len(docs)
	return stats, nil
}

func (in *Ingester) parse(path string) (shard, error) {
	f, err := os.Open(path)
	if err != nil {
		return shard{}, fmt.Errorf("open shard: %w", err)
	}
	defer func() { _ = f.Close() }()

	var s shard
	for raw, err := range dataset.DecodeJSONL[json.RawMessage](f) {
		if err != nil {
			return shard{}, fmt.Errorf("%s: %w", path, err)
		}
		if string(raw) == "null" {
			s.dropped++
			continue
		}
		var doc RawDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return shard{}, fmt.Errorf("%s: %w: %v", path, dataset.ErrMalformedRecord, err)
		}

		keep := true
		if in.preprocess != nil {
			doc, keep = in.preprocess(doc)
		}
		if !keep || (doc.ID == "" && doc.Lines == "") {
			s.dropped++
			continue
		}
		s.docs = append(s.docs, docstore.Document{ID: doc.ID, Lines: doc.Lines})
	}
	return s, nil
}
