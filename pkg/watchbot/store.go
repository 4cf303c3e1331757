package watchbot

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Movie is a single watchlist entry.
type Movie struct {
	Title     string    `json:"title" bson:"title"`
	Watched   bool      `json:"watched" bson:"watched"`
	AddedBy   string    `json:"added_by,omitempty" bson:"added_by,omitempty"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
	WatchedBy string    `json:"watched_by,omitempty" bson:"watched_by,omitempty"`
	WatchedAt time.Time `json:"watched_at,omitzero" bson:"watched_at,omitempty"`
}

// Store persists one ordered watchlist per chat.
type Store interface {
	// Load returns the chat's watchlist in insertion order.
	// An unknown chat yields an empty list and no error.
	Load(ctx context.Context, chatID int64) ([]Movie, error)
	// Save replaces the chat's watchlist.
	Save(ctx context.Context, chatID int64, movies []Movie) error
	Close() error
}

// OpenStore picks the backend from cfg: PostgreSQL when DatabaseURL is set,
// MongoDB when MongoURI is set, the JSON file otherwise.
func OpenStore(ctx context.Context, cfg *Config) (Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		log.Printf("Using PostgreSQL storage")
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	case cfg.MongoURI != "":
		log.Printf("Using MongoDB storage (database %s)", cfg.MongoDatabase)
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to open mongo store: %w", err)
		}
		return s, nil
	default:
		log.Printf("Using JSON file storage at %s (data is lost if the file is not on a persistent disk)", cfg.DataFile)
		return NewDatabase(cfg.DataFile)
	}
}
