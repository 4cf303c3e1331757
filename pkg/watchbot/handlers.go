package watchbot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var commandNames = []string{"start", "help", "add", "watched", "remove", "list", "random", "poll"}

func (b *Bot) registerHandlers() {
	for _, name := range commandNames {
		b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+name, bot.MatchTypePrefix, b.wrapHandler(b.commandHandler(name)))
	}
}

func (b *Bot) wrapHandler(handler func(context.Context, *bot.Bot, *models.Update)) func(context.Context, *bot.Bot, *models.Update) {
	return func(ctx context.Context, tgbot *bot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}

		chatID := fmt.Sprintf("%d", update.Message.Chat.ID)
		if !b.isChatAllowed(chatID) {
			tgbot.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   textRestricted,
			})
			return
		}

		handler(ctx, tgbot, update)
	}
}

// commandHandler serves one registered command. Prefix registration also
// matches longer names such as "/addition", which are answered as unknown.
func (b *Bot) commandHandler(name string) func(context.Context, *bot.Bot, *models.Update) {
	return func(ctx context.Context, tgbot *bot.Bot, update *models.Update) {
		msg := update.Message
		cmd, ok := ParseCommand(msg.Text)
		if !ok || cmd.Name != name {
			cmd = Command{}
		}

		reply := b.dispatcher.Dispatch(ctx, msg.Chat.ID, senderName(msg.From), cmd)
		b.sendReply(ctx, tgbot, msg.Chat.ID, reply)
	}
}

func (b *Bot) sendReply(ctx context.Context, tgbot *bot.Bot, chatID int64, reply Reply) {
	if reply.Poll != nil {
		options := make([]models.InputPollOption, 0, len(reply.Poll.Options))
		for _, o := range reply.Poll.Options {
			options = append(options, models.InputPollOption{Text: o})
		}

		_, err := tgbot.SendPoll(ctx, &bot.SendPollParams{
			ChatID:                chatID,
			Question:              reply.Poll.Question,
			Options:               options,
			IsAnonymous:           bot.False(),
			AllowsMultipleAnswers: false,
		})
		if err != nil {
			log.Printf("Failed to send poll to chat %d: %v", chatID, err)
		}
		return
	}

	params := &bot.SendMessageParams{ChatID: chatID}
	if reply.HTML {
		params.ParseMode = models.ParseModeHTML
	}

	for _, chunk := range splitMessage(reply.Text) {
		params.Text = chunk
		if _, err := tgbot.SendMessage(ctx, params); err != nil {
			log.Printf("Failed to send message to chat %d: %v", chatID, err)
			return
		}
	}
}

func senderName(u *models.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	return u.Username
}
