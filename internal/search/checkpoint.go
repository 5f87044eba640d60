package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const checkpointKey = "search:checkpoint"

// Checkpoints persists the incremental sync watermark: the updated_at of
// the newest content item already pushed to the index.
type Checkpoints struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenCheckpoints opens the checkpoint database at path. An empty path
// keeps the checkpoint in memory.
func OpenCheckpoints(path string, logger *slog.Logger) (*Checkpoints, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // The watermark must survive a crash
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}
	logger.Debug("checkpoint store opened", "path", path)

	return &Checkpoints{db: db, logger: logger}, nil
}

// Close closes the checkpoint database.
func (c *Checkpoints) Close() error {
	return c.db.Close()
}

// LastSynced returns the stored watermark, or the zero time when no sync
// has completed yet.
func (c *Checkpoints) LastSynced(_ context.Context) (time.Time, error) {
	var t time.Time

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(checkpointKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return t.UnmarshalBinary(val)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get checkpoint: %w", err)
	}
	return t, nil
}

// SetLastSynced stores t as the watermark.
func (c *Checkpoints) SetLastSynced(_ context.Context, t time.Time) error {
	val, err := t.UTC().MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(checkpointKey), val)
	})
}

// Reset removes the watermark so the next sync starts from scratch.
func (c *Checkpoints) Reset(_ context.Context) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(checkpointKey))
	})
}
