// Package telegram runs the chat surface over the Telegram Bot API,
// answering messages through the same front door as the REST chat.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/willow/internal/assistant"
	"github.com/fortuna/willow/internal/assistant/llm"
)

// Bot handles inbound Telegram messages via long polling.
type Bot struct {
	api  *tgbotapi.BotAPI
	chat *llm.Manager
	log  *logrus.Entry
}

// NewBot creates a new Telegram bot.
func NewBot(botToken string, chat *llm.Manager, log *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Bot{
		api:  api,
		chat: chat,
		log:  log.WithField("component", "telegram"),
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.log.Infof("Telegram bot started as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := msg.Text

	var reply string
	switch msg.Command() {
	case "start":
		reply = assistant.Greeting
	case "help":
		reply = "Ask me anything about fantasy cricket: player stats, form, pitch reports, captain picks, differentials, or live scores."
	default:
		answer := b.chat.Process(ctx, text)
		reply = answer.Text
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ReplyToMessageID = msg.MessageID

	if _, err := b.api.Send(out); err != nil {
		b.log.WithError(err).Warn("Failed to send Telegram reply")
	}
}
