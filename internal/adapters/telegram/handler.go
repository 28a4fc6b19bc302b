package telegram

import (
	"context"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/port"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	worker      port.EventWorker
	sender      *Sender
	botID       int64
	botUsername string
}

func NewHandler(worker port.EventWorker, sender *Sender, botID int64, botUsername string) *Handler {
	return &Handler{worker: worker, sender: sender, botID: botID, botUsername: botUsername}
}

// Handle turns a Telegram update into an event and works it on its own goroutine.
func (h *Handler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	msg := update.Message
	if msg.From == nil || msg.From.ID == h.botID {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}

	event := h.toEvent(strconv.FormatInt(int64(update.ID), 10), msg, h.normalize(text))

	log.Debug().Str("message", text).Int64("chatId", msg.Chat.ID).Msg("received message")

	if h.sender != nil {
		h.sender.SendTyping(ctx, msg.Chat.ID)
	}

	go func() {
		err := h.worker.Work(context.WithoutCancel(ctx), event)
		if err != nil {
			log.Err(err).Int64("chatId", msg.Chat.ID).Msg("failed to handle message")
		}
	}()
}

// normalize rewrites "/cmd@botname args" to "cmd args".
func (h *Handler) normalize(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}

	text = strings.TrimPrefix(text, "/")
	first, rest, _ := strings.Cut(text, " ")

	if h.botUsername != "" {
		first = strings.TrimSuffix(first, "@"+h.botUsername)
	}

	if rest == "" {
		return first
	}

	return first + " " + rest
}

func (h *Handler) toEvent(eventID string, msg *models.Message, text string) *domain.Event {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	personID := strconv.FormatInt(msg.From.ID, 10)
	messageID := strconv.FormatInt(int64(msg.ID), 10)

	roomType := domain.Group
	if string(msg.Chat.Type) == "private" {
		roomType = domain.Direct
	}

	created := time.Unix(int64(msg.Date), 0)

	return &domain.Event{
		ID:       eventID,
		Resource: "messages",
		Event:    "created",
		ActorID:  personID,
		Data: domain.EventData{
			ID:       messageID,
			RoomID:   chatID,
			RoomType: roomType,
			PersonID: personID,
			Created:  created,
		},
		Message: &domain.Message{
			ID:       messageID,
			RoomID:   chatID,
			RoomType: roomType,
			PersonID: personID,
			Text:     text,
			Created:  created,
		},
		Caller: personFromUser(msg.From),
	}
}

func personFromUser(user *models.User) *domain.Person {
	p := &domain.Person{
		ID:          strconv.FormatInt(user.ID, 10),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName),
		Type:        "person",
	}

	if user.Username != "" {
		p.NickName = "@" + user.Username
	}
	if user.IsBot {
		p.Type = "bot"
	}

	return p
}

// Self describes the bot account as a person, so its mention can be stripped.
func Self(user *models.User) *domain.Person {
	return personFromUser(user)
}
