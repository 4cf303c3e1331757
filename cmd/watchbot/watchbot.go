package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shayne/go-watchlist-telegram-bot/pkg/watchbot"
	"github.com/spf13/pflag"
)

func main() {
	var (
		envFile      = pflag.String("env-file", ".env", "Path to an optional .env file")
		dataFile     = pflag.String("data-file", "", "Path to the JSON watchlist file (overrides DATA_FILE)")
		allowedChats = pflag.String("allowed-chats", "", "Comma-separated list of allowed Telegram chat IDs (overrides ALLOWED_CHATS)")
	)
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg, err := watchbot.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *allowedChats != "" {
		cfg.AllowedChatIDs = watchbot.ParseChatList(*allowedChats)
	}

	if len(cfg.AllowedChatIDs) > 0 {
		log.Printf("Allowed chat IDs: %v", cfg.AllowedChatIDs)
	} else {
		log.Printf("No chat restrictions (allow list is empty)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watchBot, err := watchbot.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := watchBot.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}

	log.Println("Bot stopped gracefully")
}
