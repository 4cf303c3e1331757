package watchbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per chat in the watchlists collection.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

type watchlistDoc struct {
	ChatID    int64     `bson:"_id"`
	Movies    []Movie   `bson:"movies"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI is empty")
	}
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	col := client.Database(database).Collection("watchlists")
	return &MongoStore{client: client, col: col}, nil
}

func (m *MongoStore) Load(ctx context.Context, chatID int64) ([]Movie, error) {
	var doc watchlistDoc
	err := m.col.FindOne(ctx, bson.M{"_id": chatID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []Movie{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	if doc.Movies == nil {
		doc.Movies = []Movie{}
	}
	return doc.Movies, nil
}

func (m *MongoStore) Save(ctx context.Context, chatID int64, movies []Movie) error {
	if movies == nil {
		movies = []Movie{}
	}
	doc := watchlistDoc{
		ChatID:    chatID,
		Movies:    movies,
		UpdatedAt: time.Now(),
	}
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": chatID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
