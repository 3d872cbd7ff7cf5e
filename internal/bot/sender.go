package bot

import (
	tele "gopkg.in/telebot.v4"
)

// BroadcastSender adapts a telebot bot to the broadcast sender contract.
type BroadcastSender struct {
	bot *tele.Bot
}

// NewBroadcastSender wraps the bot for broadcast delivery.
func NewBroadcastSender(bot *tele.Bot) *BroadcastSender {
	return &BroadcastSender{bot: bot}
}

// SendText delivers plain text to one chat.
func (s *BroadcastSender) SendText(chatID int64, text string) error {
	_, err := s.bot.Send(&tele.User{ID: chatID}, text)
	return err
}
