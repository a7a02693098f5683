// Package boltdb provides a small ingestion ledger backed by boltdb. The
// ledger remembers the modification time and size of each file already
// pushed to the index, so repeated runs over a metadata directory skip
// files that have not changed.
package boltdb

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var ingestBucket = []byte("ingested")

// Ledger records which files have been ingested and in what state.
type Ledger struct {
	db *bolt.DB
}

// NewLedger opens (or creates) the ledger database at filename.
func NewLedger(filename string) (*Ledger, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening ledger file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ingestBucket)
		return errors.Wrap(err, "creating ingested bucket")
	})
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// stamp encodes the file state being tracked. Nanosecond precision on the
// mod time is deliberate - a rewrite within the same second still counts
// as a change as long as the filesystem reports it.
func stamp(modTime time.Time, size int64) []byte {
	return []byte(fmt.Sprintf("%d:%d", modTime.UnixNano(), size))
}

// Changed reports whether path is new or differs from its recorded state.
func (l *Ledger) Changed(path string, modTime time.Time, size int64) bool {
	var changed bool
	l.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(ingestBucket).Get([]byte(path))
		changed = val == nil || string(val) != string(stamp(modTime, size))
		return nil
	})
	return changed
}

// Mark records path at the given state.
func (l *Ledger) Mark(path string, modTime time.Time, size int64) error {
	err := l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ingestBucket).Put([]byte(path), stamp(modTime, size))
	})
	return errors.Wrapf(err, "marking '%v'", path)
}

// Close syncs and closes the underlying boltdb.
func (l *Ledger) Close() error {
	if err := l.db.Sync(); err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return l.db.Close()
}
