package watchbot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type Bot struct {
	bot        *bot.Bot
	store      Store
	dispatcher *Dispatcher
	config     *Config
}

func New(ctx context.Context, cfg *Config) (*Bot, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	b, err := newBot(cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return b, nil
}

func newBot(cfg *Config, store Store, extra ...bot.Option) (*Bot, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(defaultHandler),
	}
	opts = append(opts, extra...)

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	watchBot := &Bot{
		bot:        b,
		store:      store,
		dispatcher: NewDispatcher(NewWatchlist(store)),
		config:     cfg,
	}

	watchBot.registerHandlers()

	return watchBot, nil
}

// Run long-polls Telegram until ctx is done, then closes the store.
func (b *Bot) Run(ctx context.Context) error {
	log.Println("Starting bot...")

	b.bot.Start(ctx)

	if err := b.store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

func (b *Bot) isChatAllowed(chatID string) bool {
	if len(b.config.AllowedChatIDs) == 0 {
		return true
	}

	for _, allowed := range b.config.AllowedChatIDs {
		if allowed == chatID {
			return true
		}
	}
	return false
}

func defaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message != nil && strings.HasPrefix(update.Message.Text, "/") {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   textUnknown,
		})
	}
}
