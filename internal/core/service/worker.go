package service

import (
	"context"
	"errors"
	"fmt"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/domain/command"
	"sparkbot/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const formatError = "⚠️ Error: Your command could not be parsed. Please check its format, particularly its quotes."

// CommandWorker takes one inbound event from a transport and sees it through:
// resolving the message and caller, parsing the command line, dispatching and
// sending the replies.
type CommandWorker struct {
	dispatcher *command.Dispatcher
	sink       port.ReplySink
	identity   port.IdentitySource
	messages   port.MessageSource
	authorizer Authorizer
	limiter    Limiter
	self       *domain.Person
}

type WorkerParams struct {
	Dispatcher *command.Dispatcher
	Sink       port.ReplySink
	// Identity and Messages are only consulted for events that do not embed
	// their caller and message.
	Identity   port.IdentitySource
	Messages   port.MessageSource
	Authorizer Authorizer
	Limiter    Limiter
	// Self is the bot's own account; its names are stripped from the start of
	// messages and its own messages are ignored.
	Self *domain.Person
}

func NewCommandWorker(p WorkerParams) (*CommandWorker, error) {
	if p.Dispatcher == nil || p.Sink == nil {
		return nil, errors.New("command worker needs a dispatcher and a reply sink")
	}

	return &CommandWorker{
		dispatcher: p.Dispatcher,
		sink:       p.Sink,
		identity:   p.Identity,
		messages:   p.Messages,
		authorizer: p.Authorizer,
		limiter:    p.Limiter,
		self:       p.Self,
	}, nil
}

func (w *CommandWorker) Work(ctx context.Context, event *domain.Event) error {
	requestID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("error creating request id: %w", err)
	}

	l := log.With().
		Str("requestId", requestID.String()).
		Str("eventId", event.ID).
		Logger()
	ctx = l.WithContext(ctx)

	msg, err := w.message(ctx, event)
	if err != nil {
		l.Err(err).Msg("failed to resolve message")
		return err
	}

	l = l.With().Str("roomId", msg.RoomID).Str("messageId", msg.ID).Logger()

	if w.self != nil && msg.PersonID == w.self.ID {
		l.Debug().Msg("ignoring own message")
		return nil
	}

	caller := w.caller(ctx, event, msg)

	if w.authorizer != nil && !w.authorizer.IsAuthorized(ctx, msg.RoomID, caller) {
		return nil
	}

	if w.limiter != nil && !w.limiter.CheckLimit(ctx, msg.RoomID, caller.ID) {
		return nil
	}

	l.Debug().Str("text", msg.Text).Msg("received command")

	commandline, err := command.ParseCommandLine(msg.Text, w.self.Names()...)
	if err != nil {
		l.Info().Err(err).Msg("could not tokenize command")

		sendErr := w.sink.SendMessage(ctx, msg.RoomID, formatError)
		if sendErr != nil {
			return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, sendErr)
		}

		return nil
	}

	sent, err := w.dispatcher.Run(ctx, &command.Context{
		CommandLine: commandline,
		Event:       event,
		Caller:      caller,
		RoomID:      msg.RoomID,
		Sink:        w.sink,
	}, w.sink)
	if err != nil {
		l.Err(err).Int("sent", sent).Msg("failed to send command reply")
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	l.Debug().Int("sent", sent).Msg("command handled")

	return nil
}

func (w *CommandWorker) message(ctx context.Context, event *domain.Event) (*domain.Message, error) {
	if event.Message != nil {
		return event.Message, nil
	}

	if w.messages == nil {
		return nil, errors.New("event carries no message and no message source is configured")
	}

	msg, err := w.messages.GetMessage(ctx, event.Data.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching message %s: %w", event.Data.ID, err)
	}

	return msg, nil
}

// caller never fails: when the lookup does not work, a person is assembled
// from what the message says about its author.
func (w *CommandWorker) caller(ctx context.Context, event *domain.Event, msg *domain.Message) *domain.Person {
	if event.Caller != nil {
		return event.Caller
	}

	if w.identity != nil {
		person, err := w.identity.GetPerson(ctx, msg.PersonID)
		if err == nil {
			return person
		}
		log.Ctx(ctx).Warn().Err(err).Str("personId", msg.PersonID).Msg("failed to look up caller")
	}

	person := &domain.Person{ID: msg.PersonID}
	if msg.PersonEmail != "" {
		person.Emails = []string{msg.PersonEmail}
	}

	return person
}
