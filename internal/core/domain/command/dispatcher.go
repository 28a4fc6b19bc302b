package command

import (
	"context"
	"errors"
	"fmt"
	"sparkbot/internal/core/port"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Dispatcher resolves command names against a Registry, runs the handler and
// turns whatever it produced into outgoing messages.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs the handler for name. It never fails: unknown commands and
// handler errors come back as a Single carrying the text for the user.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, dc *Context) Reply {
	if dc == nil {
		dc = &Context{}
	}

	l := log.With().
		Str("command", name).
		Str("roomId", dc.RoomID).
		Logger()

	handler, err := d.resolve(name)
	if err != nil {
		l.Debug().Msg("no handler for command")
		return Single(ErrorReply(err))
	}

	l = l.With().Str("handler", handler.Name).Logger()
	l.Debug().Str("needs", handler.Needs.String()).Msg("dispatching command")

	reply, err := invoke(ctx, handler, bind(handler.Needs, dc))
	if err != nil {
		logFailure(&l, err, dc)
		return Single(ErrorReply(err))
	}

	switch r := reply.(type) {
	case Single:
		return r
	case Stream:
		return guard(r, &l, dc)
	case nil:
		return Single("")
	default:
		err = fmt.Errorf("unsupported reply type %T", reply)
		logFailure(&l, err, dc)
		return Single(ErrorReply(err))
	}
}

// Run dispatches the first token of dc.CommandLine and sends the replies to sink.
func (d *Dispatcher) Run(ctx context.Context, dc *Context, sink port.ReplySink) (int, error) {
	reply := d.Dispatch(ctx, CommandName(dc.CommandLine), dc)
	return Emit(ctx, dc.RoomID, reply, sink)
}

// Emit sends every message of reply into roomID as soon as it is produced and
// returns how many were sent. Empty messages are skipped.
func Emit(ctx context.Context, roomID string, reply Reply, sink port.ReplySink) (int, error) {
	sent := 0

	send := func(text string) error {
		if strings.TrimSpace(text) == "" {
			log.Warn().Str("roomId", roomID).Msg("handler produced an empty reply, not sending")
			return nil
		}

		if err := sink.SendMessage(ctx, roomID, text); err != nil {
			return fmt.Errorf("error sending reply: %w", err)
		}
		sent++

		return nil
	}

	switch r := reply.(type) {
	case Single:
		return sent, send(string(r))
	case Stream:
		for text, err := range r {
			if err != nil {
				text = ErrorReply(err)
			}
			if sendErr := send(text); sendErr != nil {
				return sent, sendErr
			}
			if err != nil {
				break
			}
		}
	}

	return sent, nil
}

func (d *Dispatcher) resolve(name string) (Handler, error) {
	handler, err := d.registry.Get(name)
	if err == nil {
		return handler, nil
	}

	if fallback, ok := d.registry.Fallback(); ok {
		return fallback, nil
	}

	return Handler{}, err
}

func invoke(ctx context.Context, handler Handler, p Params) (reply Reply, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()

	return handler.Run(ctx, p)
}

// guard wraps a Stream so that a failing or panicking producer ends the stream
// with an error message instead of escaping the dispatcher. Panics raised by
// the consumer while it handles an element are passed on untouched.
func guard(s Stream, l *zerolog.Logger, dc *Context) Stream {
	return func(yield func(string, error) bool) {
		inYield, stopped := false, false

		emit := func(text string) bool {
			inYield = true
			ok := yield(text, nil)
			inYield = false
			if !ok {
				stopped = true
			}
			return ok
		}

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if inYield {
				panic(rec)
			}

			err := panicError(rec)
			logFailure(l, err, dc)
			if !stopped {
				emit(ErrorReply(err))
			}
		}()

		for text, err := range s {
			if err != nil {
				logFailure(l, err, dc)
				emit(ErrorReply(err))
				return
			}
			if !emit(text) {
				return
			}
		}
	}
}

func logFailure(l *zerolog.Logger, err error, dc *Context) {
	caller := ""
	if dc.Caller != nil {
		caller = dc.Caller.ID
		if len(dc.Caller.Emails) > 0 {
			caller = dc.Caller.Emails[0]
		}
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return
	}

	l.Error().Err(err).
		Str("caller", caller).
		Str("kind", errorKind(err)).
		Strs("commandline", dc.CommandLine).
		Msg("command failed")
}

type panicErr struct {
	value any
}

func (p *panicErr) Error() string {
	return fmt.Sprintf("handler panicked: %v", p.value)
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("handler panicked: %w", err)
	}

	return &panicErr{value: rec}
}
