package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/ellux/internal/debuglog"
	bolt "go.etcd.io/bbolt"
)

var kvBucket = []byte("kv")

var (
	// ErrStorage wraps every read/write failure of the underlying database.
	ErrStorage = errors.New("storage error")
	// ErrNotFound is returned by Load when the key is absent.
	ErrNotFound = errors.New("key not found")
)

// Store is the persistent key-value adapter. Values are JSON documents and
// opaque to the store.
type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout opens the database, waiting at most timeout for the
// file lock held by another process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(kvBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Load decodes the value stored under key into out.
func (s *Store) Load(key string, out any) error {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(kvBucket).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: reading %q: %v", ErrStorage, key, err)
	}
	if data == nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %q: %v", ErrStorage, key, err)
	}
	return nil
}

// Save encodes value and stores it under key.
func (s *Store) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encoding %q: %v", ErrStorage, key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("%w: writing %q: %v", ErrStorage, key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: deleting %q: %v", ErrStorage, key, err)
	}
	return nil
}

// Get reports whether key held a decodable value. Failures are logged and
// reported as absent.
func (s *Store) Get(key string, out any) bool {
	err := s.Load(key, out)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrNotFound) {
		debuglog.Errorf("storage get %q: %v", key, err)
	}
	return false
}

// Set reports whether value was persisted. Failures are logged.
func (s *Store) Set(key string, value any) bool {
	if err := s.Save(key, value); err != nil {
		debuglog.Errorf("storage set %q: %v", key, err)
		return false
	}
	return true
}

// Remove deletes key, logging any failure.
func (s *Store) Remove(key string) {
	if err := s.Delete(key); err != nil {
		debuglog.Errorf("storage remove %q: %v", key, err)
	}
}

// Has reports whether key exists, regardless of whether it decodes.
func (s *Store) Has(key string) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(kvBucket).Get([]byte(key)) != nil
		return nil
	})
	return found
}

// Keys lists stored keys starting with prefix, in byte order.
func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(kvBucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing keys: %v", ErrStorage, err)
	}
	return keys, nil
}

// Clear removes every key.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(kvBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(kvBucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: clearing: %v", ErrStorage, err)
	}
	return nil
}
