// Package index persists rich header fingerprints in a local BadgerDB so
// freshly decoded binaries can be matched against everything scanned
// before.
//
// Key namespace:
//
//	Data Type     Prefix  Key Format            Value Type
//	=====================================================
//	Fingerprint   "fp:"   fp:<hash>:<source>    Record (JSON)
//
// The hash comes first so one prefix scan finds every binary that shares
// a build environment.
package index

import (
	"encoding/json"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	rich "github.com/wanglei-coder/richheader"
)

const prefixFingerprint = "fp:"

// ErrNotIndexed reports that no stored record carries the looked-up
// fingerprint.
var ErrNotIndexed = errors.New("fingerprint not indexed")

// Record is one indexed decode result.
type Record struct {
	Source          string    `json:"source"`
	Hash            string    `json:"hash"`
	Entries         int       `json:"entries"`
	ChecksumMatches bool      `json:"checksum_matches"`
	IndexedAt       time.Time `json:"indexed_at"`
}

// Index is a fingerprint store backed by BadgerDB. It is safe for
// concurrent use.
type Index struct {
	db *badger.DB
}

// Open opens or creates the index database under dir.
func Open(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // silence badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to open fingerprint index at %s", dir)
	}
	return &Index{db: db}, nil
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// keyFingerprint generates a record key: "fp:<hash>:<source>"
func keyFingerprint(hash, source string) []byte {
	return []byte(prefixFingerprint + hash + ":" + source)
}

// Put stores the fingerprint of a decoded header, overwriting any earlier
// record for the same source.
func (ix *Index) Put(h *rich.Header) error {
	hash := h.Hash()
	if hash == "" {
		return errors.New("header carries no raw region to fingerprint")
	}

	rec := Record{
		Source:          h.Source,
		Hash:            hash,
		Entries:         h.Entries.Len(),
		ChecksumMatches: h.ChecksumMatches,
		IndexedAt:       time.Now().UTC(),
	}
	val, err := json.Marshal(&rec)
	if err != nil {
		return errors.WithMessage(err, "failed to encode record")
	}

	return ix.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyFingerprint(hash, h.Source), val)
	})
}

// Lookup returns every record sharing the given fingerprint, ordered by
// source. It fails with ErrNotIndexed when the hash was never stored.
func (ix *Index) Lookup(hash string) ([]Record, error) {
	records, err := ix.scan(prefixFingerprint + hash + ":")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.WithMessage(ErrNotIndexed, hash)
	}
	return records, nil
}

// All returns every stored record, ordered by hash then source.
func (ix *Index) All() ([]Record, error) {
	return ix.scan(prefixFingerprint)
}

func (ix *Index) scan(prefix string) ([]Record, error) {
	var records []Record

	err := ix.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return errors.WithMessagef(err, "corrupt record at %s", it.Item().Key())
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
