package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/docstore"
)

func writeShard(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write shard: %v", err)
	}
}

func TestBuild_Directory(t *testing.T) {
	data := t.TempDir()
	writeShard(t, data, "wiki-001.jsonl",
		`{"id": "", "text": "", "lines": ""}`,
		`{"id": "Paris", "text": "Paris is a city.", "lines": "0\tParis is a city.\tcity"}`,
	)
	writeShard(t, data, "nested/wiki-002.jsonl",
		`{"id": "Beyoncé", "text": "Singer.", "lines": "0\tSinger."}`,
		`{"id": "Stub", "text": "", "lines": "   "}`,
	)

	dbPath := filepath.Join(t.TempDir(), "fever.db")
	stats, err := New(2, DropEmpty, nil).Build(context.Background(), data, dbPath)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if stats.Files != 2 || stats.Documents != 2 || stats.Dropped != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	s, err := docstore.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	lines, found, err := s.GetLines(context.Background(), "Beyoncé")
	if err != nil || !found || lines != "0\tSinger." {
		t.Errorf("GetLines = %q, %v, %v", lines, found, err)
	}
}

func TestBuild_NoPreprocessKeepsStubs(t *testing.T) {
	data := t.TempDir()
	writeShard(t, data, "a.jsonl",
		`{"id": "Stub", "lines": ""}`,
		`{"id": "", "lines": ""}`,
	)

	dbPath := filepath.Join(t.TempDir(), "fever.db")
	stats, err := New(1, nil, nil).Build(context.Background(), filepath.Join(data, "a.jsonl"), dbPath)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if stats.Documents != 1 || stats.Dropped != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestBuild_RefusesExisting(t *testing.T) {
	data := t.TempDir()
	writeShard(t, data, "a.jsonl", `{"id": "A", "lines": "0\ta"}`)
	dbPath := filepath.Join(t.TempDir(), "fever.db")
	if err := os.WriteFile(dbPath, []byte("keep me"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := New(1, nil, nil).Build(context.Background(), data, dbPath)
	if !errors.Is(err, docstore.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	b, _ := os.ReadFile(dbPath)
	if string(b) != "keep me" {
		t.Error("existing file was modified")
	}
}

func TestBuild_MalformedShardRemovesStore(t *testing.T) {
	data := t.TempDir()
	writeShard(t, data, "a.jsonl", `{"id": "A", "lines": "0\ta"}`)
	writeShard(t, data, "b.jsonl", `{"id": "B", "lines": `)

	dbPath := filepath.Join(t.TempDir(), "fever.db")
	_, err := New(2, nil, nil).Build(context.Background(), data, dbPath)
	if !errors.Is(err, dataset.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Errorf("expected partial store to be removed, stat err = %v", err)
	}
}

func TestFiles_InvalidPath(t *testing.T) {
	if _, err := Files(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLookupPreprocess(t *testing.T) {
	if p, err := LookupPreprocess(""); err != nil || p != nil {
		t.Errorf("expected nil preprocessor for empty name, got %v", err)
	}
	if p, err := LookupPreprocess("drop-empty"); err != nil || p == nil {
		t.Errorf("expected drop-empty, got %v", err)
	}
	if _, err := LookupPreprocess("lowercase"); err == nil {
		t.Error("expected error for unknown preprocessor")
	}
}
