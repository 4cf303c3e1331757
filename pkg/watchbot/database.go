package watchbot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Database is a Store backed by a single JSON file that is rewritten on
// every save.
type Database struct {
	mu    sync.RWMutex
	path  string
	Chats map[string][]Movie `json:"chats"`
}

func NewDatabase(path string) (*Database, error) {
	db := &Database{
		path:  path,
		Chats: make(map[string][]Movie),
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read database: %w", err)
		}

		if len(data) > 0 {
			if err := json.Unmarshal(data, db); err != nil {
				return nil, fmt.Errorf("failed to unmarshal database: %w", err)
			}
		}
		if db.Chats == nil {
			db.Chats = make(map[string][]Movie)
		}
	}

	return db, nil
}

func (db *Database) save() error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal database: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(db.path), filepath.Base(db.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := os.Rename(tmp.Name(), db.path); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}

	return nil
}

func (db *Database) Load(_ context.Context, chatID int64) ([]Movie, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	movies := db.Chats[chatKey(chatID)]
	out := make([]Movie, len(movies))
	copy(out, movies)
	return out, nil
}

func (db *Database) Save(_ context.Context, chatID int64, movies []Movie) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := chatKey(chatID)
	prev, existed := db.Chats[key]

	if len(movies) == 0 {
		delete(db.Chats, key)
	} else {
		stored := make([]Movie, len(movies))
		copy(stored, movies)
		db.Chats[key] = stored
	}

	if err := db.save(); err != nil {
		if existed {
			db.Chats[key] = prev
		} else {
			delete(db.Chats, key)
		}
		return err
	}
	return nil
}

func (db *Database) Close() error { return nil }

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
