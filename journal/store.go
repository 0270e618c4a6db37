package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/backoff/v2"
	"github.com/lestrrat-go/option"
	"go.etcd.io/bbolt"
)

// ErrRecordNotFound is returned by [RecordStore.Get] for an unknown record.
var ErrRecordNotFound = errors.New("journal: record not found")

type (
	// OpenOption represents option for [Open].
	OpenOption struct {
		option.Interface
	}
	identOptionRetryPolicy struct{}
)

// WithRetryPolicy specifies a retry policy applied when the journal database
// is locked by another process.
// For detailed settings, see [backoff.NewExponentialPolicy] or [backoff.NewConstantPolicy].
func WithRetryPolicy(p backoff.Policy) *OpenOption {
	return &OpenOption{
		Interface: option.New(identOptionRetryPolicy{}, p),
	}
}

// Store is a journal database shared by events.
type Store struct {
	_db          *bbolt.DB
	_transitions *RecordStore[TransitionRecord]
}

// Open opens(or creates) the journal database at file.
// The database may be held by another process, so acquisition of the file
// lock is retried under a retry policy(default: 100ms interval, 10 retries.)
func Open(file string, opts ...*OpenOption) (*Store, error) {
	var policy backoff.Policy = backoff.NewConstantPolicy(
		backoff.WithMaxRetries(10),
		backoff.WithInterval(time.Millisecond*100),
	)

	// Apply options.
	for _, opt := range opts {
		switch opt.Ident() {
		case identOptionRetryPolicy{}:
			policy = opt.Value().(backoff.Policy)
		}
	}

	var (
		db  *bbolt.DB
		err error
	)
	c := policy.Start(context.Background())
	for {
		select {
		case <-c.Done():
			return nil, fmt.Errorf("journal: failed to open database %q: %w", file, err)
		case <-c.Next():
			db, err = bbolt.Open(file, 0644, &bbolt.Options{
				Timeout: time.Millisecond * 50,
			})
			if err == nil {
				transitions, err := NewRecordStore[TransitionRecord](db)
				if err != nil {
					return nil, errors.Join(err, db.Close())
				}
				return &Store{
					_db:          db,
					_transitions: transitions,
				}, nil
			}
		}
	}
}

// Transitions returns the record store of event transition logs.
func (s *Store) Transitions() *RecordStore[TransitionRecord] {
	return s._transitions
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s._db.Close()
}

// RecordStore reads and writes records of type T, in a bucket dedicated to T.
type RecordStore[T any] struct {
	_bucket []byte
	_db     *bbolt.DB
}

// NewRecordStore creates a record store for type T on db.
func NewRecordStore[T any](db *bbolt.DB) (*RecordStore[T], error) {
	var r T
	bucket := []byte(fmt.Sprintf("record-%T", r))
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("journal: failed to create bucket: %w", err)
	}
	return &RecordStore[T]{
		_bucket: bucket,
		_db:     db,
	}, nil
}

// Get retrieves the record of the given name.
func (s *RecordStore[T]) Get(name string) (*T, error) {
	var r *T
	err := s._db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(s._bucket).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, name)
		}
		r = new(T)
		return json.Unmarshal(data, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Put updates or creates the record of the given name.
// The record passed to mutate reflects the stored state, and update tells
// whether the record already exists.
func (s *RecordStore[T]) Put(name string, mutate func(r *T, update bool)) error {
	return s._db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s._bucket)
		key := []byte(name)

		var (
			r      T
			update bool
		)
		if data := b.Get(key); data != nil {
			if err := json.Unmarshal(data, &r); err != nil {
				return err
			}
			update = true
		}
		mutate(&r, update)

		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// ForEach iterates all stored records.
func (s *RecordStore[T]) ForEach(fn func(name string, r *T) error) error {
	return s._db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s._bucket).ForEach(func(k, v []byte) error {
			var r T
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			return fn(string(k), &r)
		})
	})
}
