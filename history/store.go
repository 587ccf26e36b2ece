// Package history records completed harness runs in a bbolt database.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/glmapping/ldstcheck/probe"
)

var bucketRuns = []byte("runs")

var (
	ErrClosed   = errors.New("history store closed")
	ErrNotFound = errors.New("run not found")
)

// Record is one persisted invocation of the driver, possibly covering several arenas.
type Record struct {
	Seq     uint64          `json:"seq"`
	Time    time.Time       `json:"time"`
	Backing string          `json:"backing"`
	Summary probe.Summary   `json:"summary"`
	Runs    int             `json:"runs"`
	Report  json.RawMessage `json:"report,omitempty"`
}

type Store struct {
	db     *bolt.DB
	closed bool
}

// Open creates or opens a history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketRuns, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func encodeSeq(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

func decodeSeq(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}

// Put assigns the next sequence number to rec and stores it.
func (s *Store) Put(rec *Record) (uint64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		rec.Seq = seq
		if rec.Time.IsZero() {
			rec.Time = time.Now().UTC()
		}
		v, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode run %d: %w", seq, err)
		}
		return b.Put(encodeSeq(seq), v)
	})
	if err != nil {
		return 0, err
	}
	return rec.Seq, nil
}

func (s *Store) Get(seq uint64) (*Record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRuns).Get(encodeSeq(seq))
		if v == nil {
			return fmt.Errorf("%w: %d", ErrNotFound, seq)
		}
		rec = new(Record)
		if err := json.Unmarshal(v, rec); err != nil {
			return fmt.Errorf("decode run %d: %w", seq, err)
		}
		return nil
	})
	return rec, err
}

// Last returns up to n of the most recent records, newest first. n <= 0 returns all.
// The embedded reports are not decoded and are dropped from the results.
func (s *Store) Last(n int) ([]*Record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var out []*Record
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if n > 0 && len(out) >= n {
				break
			}
			rec := new(Record)
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("decode run %d: %w", decodeSeq(k), err)
			}
			rec.Report = nil
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
