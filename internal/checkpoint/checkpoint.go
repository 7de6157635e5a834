// Package checkpoint persists per-claim stage results so an interrupted run
// can resume without redoing finished claims.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const keyPrefix = "claim/"

// Options configures a checkpoint
type Options struct {
	// Path is the badger directory; ignored when InMemory is set
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Checkpoint is a durable claim id -> JSON result map
type Checkpoint struct {
	db     *badger.DB
	logger *zap.Logger
}

// badgerLogger routes badger's internal messages into zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{}) { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }

// Open opens or creates a checkpoint. Writes are synced so a finished claim
// survives a crash.
func Open(opts Options) (*Checkpoint, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("checkpoint path is required")
		}
		if err := os.MkdirAll(opts.Path, 0750); err != nil {
			return nil, fmt.Errorf("create checkpoint directory %s: %w", opts.Path, err)
		}
		bo = badger.DefaultOptions(opts.Path).WithSyncWrites(true)
	}
	bo = bo.WithNumVersionsToKeep(1).WithLogger(badgerLogger{s: logger.Named("badger").Sugar()})

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	return &Checkpoint{db: db, logger: logger}, nil
}

func key(claimID int) []byte {
	return []byte(keyPrefix + strconv.Itoa(claimID))
}

// Put stores the result of one claim, replacing any earlier value
func (c *Checkpoint) Put(claimID int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("checkpoint claim %d: %w", claimID, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(claimID), data)
	})
	if err != nil {
		return fmt.Errorf("checkpoint claim %d: %w", claimID, err)
	}
	return nil
}

// Get decodes the stored result of one claim into v
func (c *Checkpoint) Get(claimID int, v any) (bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(claimID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read checkpoint claim %d: %w", claimID, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode checkpoint claim %d: %w", claimID, err)
	}
	return true, nil
}

// Raw returns every stored result keyed by claim id
func (c *Checkpoint) Raw() (map[int]json.RawMessage, error) {
	out := make(map[int]json.RawMessage)
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(keyPrefix), PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id, err := strconv.Atoi(strings.TrimPrefix(string(item.Key()), keyPrefix))
			if err != nil {
				c.logger.Warn("skipping unexpected checkpoint key", zap.ByteString("key", item.Key()))
				continue
			}
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[id] = data
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return out, nil
}

// Load decodes every stored result into an in-memory index
func Load[T any](c *Checkpoint) (map[int]T, error) {
	raw, err := c.Raw()
	if err != nil {
		return nil, err
	}
	out := make(map[int]T, len(raw))
	for id, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode checkpoint claim %d: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}

// Sync flushes pending writes to disk
func (c *Checkpoint) Sync() error {
	return c.db.Sync()
}

// Close flushes and closes the checkpoint
func (c *Checkpoint) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	return nil
}
