// internal/app/notify/telegram.go
package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers messages to a Telegram chat. The indirection keeps
// handlers and tests off the network.
type Sender interface {
	SendMessage(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, buttons []string) error
}

// TelegramSender is the production Sender backed by the Bot API.
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramSender connects to the Telegram Bot API with the
// configured bot token.
func NewTelegramSender(token string) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramSender{bot: bot}, nil
}

// SendMessage sends a plain text message.
func (s *TelegramSender) SendMessage(chatID int64, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendKeyboard sends a message with a one-time reply keyboard of the
// given button labels.
func (s *TelegramSender) SendKeyboard(chatID int64, text string, buttons []string) error {
	row := make([]tgbotapi.KeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewKeyboardButton(b))
	}
	keyboard := tgbotapi.NewOneTimeReplyKeyboard(row)
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := s.bot.Send(msg)
	return err
}
