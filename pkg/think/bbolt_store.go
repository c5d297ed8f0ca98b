package think

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

const thoughtsBucket = "thoughts"

// BBoltStore persists the journal in a bbolt database. Keys are the
// bucket sequence number encoded big-endian, so a cursor walk returns
// thoughts in insertion order. Connections are operation-scoped so
// concurrent skill invocations never hold the file lock for long.
type BBoltStore struct {
	dbPath string
}

// NewBBoltStore creates a bbolt-backed store at the given path.
func NewBBoltStore(dbPath string) (*BBoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}

	store := &BBoltStore{dbPath: dbPath}
	err := store.withDB(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(thoughtsBucket))
			return err
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize database")
	}
	return store, nil
}

func (s *BBoltStore) withDB(operation func(*bbolt.DB) error) error {
	db, err := bbolt.Open(s.dbPath, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	return operation(db)
}

// Append adds a thought to the journal and returns the updated status.
func (s *BBoltStore) Append(thought Thought) (Status, error) {
	thought = normalize(thought)

	var status Status
	err := s.withDB(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			bucket, err := tx.CreateBucketIfNotExists([]byte(thoughtsBucket))
			if err != nil {
				return errors.Wrap(err, "failed to open bucket")
			}

			data, err := json.Marshal(thought)
			if err != nil {
				return errors.Wrap(err, "failed to marshal thought")
			}

			seq, err := bucket.NextSequence()
			if err != nil {
				return errors.Wrap(err, "failed to allocate sequence")
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := bucket.Put(key, data); err != nil {
				return errors.Wrap(err, "failed to store thought")
			}

			history, branches, err := readAll(bucket)
			if err != nil {
				return err
			}
			status = statusFor(thought, history, branches)
			return nil
		})
	})
	return status, err
}

// History returns all recorded thoughts in insertion order.
func (s *BBoltStore) History() (History, error) {
	var history History
	err := s.withDB(func(db *bbolt.DB) error {
		return db.View(func(tx *bbolt.Tx) error {
			bucket := tx.Bucket([]byte(thoughtsBucket))
			if bucket == nil {
				history = History{Branches: map[string][]Thought{}}
				return nil
			}

			records, branches, err := readAll(bucket)
			if err != nil {
				return err
			}
			history = History{
				History:       records,
				Branches:      branches,
				TotalThoughts: len(records),
			}
			return nil
		})
	})
	return history, err
}

// Clear removes the database file.
func (s *BBoltStore) Clear() error {
	if err := os.Remove(s.dbPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to clear thought history")
	}
	return nil
}

// Close implements Store; connections are operation-scoped.
func (s *BBoltStore) Close() error {
	return nil
}

func readAll(bucket *bbolt.Bucket) ([]Thought, map[string][]Thought, error) {
	var history []Thought
	branches := map[string][]Thought{}

	err := bucket.ForEach(func(_, value []byte) error {
		var thought Thought
		if err := json.Unmarshal(value, &thought); err != nil {
			return errors.Wrap(err, "failed to unmarshal thought")
		}
		history = append(history, thought)
		if thought.BranchFrom > 0 && thought.BranchID != "" {
			branches[thought.BranchID] = append(branches[thought.BranchID], thought)
		}
		return nil
	})
	return history, branches, err
}
