package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketCheckpoints = []byte("checkpoints_by_search")
	bucketSolutions   = []byte("solutions_by_search")
)

// DB persists nonce-search progress keyed by a 32-byte search id, so an
// interrupted search can resume where it stopped.
type DB struct {
	path string
	db   *bolt.DB
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("checkpoint path required")
	}
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}

	if err := bdb.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketCheckpoints, bucketSolutions} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &DB{path: path, db: bdb}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Path() string { return d.path }

func (d *DB) PutCheckpoint(id [32]byte, cp Checkpoint) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCheckpoints).Put(id[:], encodeCheckpoint(cp))
	})
}

func (d *DB) GetCheckpoint(id [32]byte) (Checkpoint, bool, error) {
	var out Checkpoint
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCheckpoints).Get(id[:])
		if v == nil {
			return nil
		}
		cp, err := decodeCheckpoint(v)
		if err != nil {
			return err
		}
		out = cp
		ok = true
		return nil
	})
	return out, ok, err
}

// PutSolution records a finished search and drops its checkpoint in the same transaction.
func (d *DB) PutSolution(id [32]byte, s SolutionRecord) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("solution json: %w", err)
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketSolutions).Put(id[:], b); err != nil {
			return err
		}
		return tx.Bucket(bucketCheckpoints).Delete(id[:])
	})
}

func (d *DB) GetSolution(id [32]byte) (*SolutionRecord, bool, error) {
	var out *SolutionRecord
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSolutions).Get(id[:])
		if v == nil {
			return nil
		}
		var s SolutionRecord
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("solution json: %w", err)
		}
		out = &s
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}
