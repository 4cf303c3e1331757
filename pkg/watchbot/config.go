package watchbot

import (
	"errors"
	"strings"
)

const (
	defaultDataFile      = "movie_data.json"
	defaultMongoDatabase = "watchlist"
)

type Config struct {
	Token          string
	DataFile       string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	AllowedChatIDs []string
}

// LoadConfig reads the configuration from the environment through getenv.
func LoadConfig(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Token:          strings.TrimSpace(getenv("TELEGRAM_BOT_TOKEN")),
		DataFile:       getenv("DATA_FILE"),
		DatabaseURL:    getenv("DATABASE_URL"),
		MongoURI:       getenv("MONGODB_URI"),
		MongoDatabase:  getenv("MONGODB_DATABASE"),
		AllowedChatIDs: ParseChatList(getenv("ALLOWED_CHATS")),
	}
	if cfg.Token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if cfg.DataFile == "" {
		cfg.DataFile = defaultDataFile
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = defaultMongoDatabase
	}
	return cfg, nil
}

// ParseChatList splits a comma-separated list of chat IDs, dropping blanks.
func ParseChatList(s string) []string {
	allowList := []string{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			allowList = append(allowList, id)
		}
	}
	return allowList
}
