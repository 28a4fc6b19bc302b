package telegram

import (
	"context"
	"fmt"
	"sparkbot/internal/core/domain"
	"strconv"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type Sender struct {
	bot TelegramBot
}

func NewSender(bot TelegramBot) *Sender {
	return &Sender{bot: bot}
}

const MessageLimit = 4096

// SendMessage sends text to the chat whose ID is roomID, split into as many
// messages as the Telegram size limit requires.
func (s *Sender) SendMessage(ctx context.Context, roomID, text string) error {
	if text == "" {
		return domain.ErrEmptyMessage
	}

	chatID, err := strconv.ParseInt(roomID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", roomID, err)
	}

	for _, chunk := range chunk(text, MessageLimit) {
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
		})
		if err != nil {
			log.Err(err).Int64("chatId", chatID).Msg("failed to send message")
			return err
		}
	}

	return nil
}

// SendTyping shows the typing indicator in chatID.
func (s *Sender) SendTyping(ctx context.Context, chatID int64) {
	_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		log.Debug().Err(err).Int64("chatId", chatID).Msg("error sending chat action")
	}
}

// chunk cuts text into pieces of at most limit UTF-16 code units, which is
// how Telegram measures message length.
func chunk(text string, limit int) []string {
	var chunks []string

	start, units := 0, 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}

		if units+n > limit && i > start {
			chunks = append(chunks, text[start:i])
			start, units = i, 0
		}
		units += n
	}

	return append(chunks, text[start:])
}
