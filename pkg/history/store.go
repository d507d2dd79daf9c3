// Package history persists the sessions a participant recently hosted or
// joined, so the UI can offer quick re-connects.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v2"
)

// Entry is one remembered session.
type Entry struct {
	SessionID   string    `json:"sessionId"`
	Role        string    `json:"role"`
	ServerURL   string    `json:"serverUrl"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Store is a small append-mostly log of recent sessions on badger.
type Store struct {
	db *badger.DB
}

// DefaultDir returns the on-disk location for the history database.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "godesk", "history"), nil
}

// Open creates or opens the store at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one session to the log.
func (s *Store) Record(e Entry) error {
	if e.ConnectedAt.IsZero() {
		e.ConnectedAt = time.Now()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("session/%020d", e.ConnectedAt.UnixNano())
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts past the last session/ key.
		for it.Seek([]byte("session/\xff")); it.Valid() && len(entries) < limit; it.Next() {
			item := it.Item()
			err := item.Value(func(value []byte) error {
				var e Entry
				if err := json.Unmarshal(value, &e); err != nil {
					return nil // skip corrupt entries
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// Clear removes every remembered session.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
