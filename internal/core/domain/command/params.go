package command

import (
	"context"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/port"
	"strings"
)

// Needs declares which pieces of the dispatch context a handler wants bound.
type Needs uint8

const (
	NeedCommandLine Needs = 1 << iota
	NeedEvent
	NeedCaller
	NeedRoomID
	NeedCallback

	NeedNothing Needs = 0
	NeedAll           = NeedCommandLine | NeedEvent | NeedCaller | NeedRoomID | NeedCallback
)

var needNames = map[string]Needs{
	"commandline": NeedCommandLine,
	"event":       NeedEvent,
	"caller":      NeedCaller,
	"room_id":     NeedRoomID,
	"callback":    NeedCallback,
}

// NeedsFromNames maps parameter names onto Needs. Names it does not recognize
// are returned so the caller can report them.
func NeedsFromNames(names ...string) (Needs, []string) {
	var needs Needs
	var unknown []string

	for _, name := range names {
		n, ok := needNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		needs |= n
	}

	return needs, unknown
}

func (n Needs) Has(flag Needs) bool {
	return n&flag == flag
}

func (n Needs) String() string {
	var parts []string
	for _, name := range []string{"commandline", "event", "caller", "room_id", "callback"} {
		if n.Has(needNames[name]) {
			parts = append(parts, name)
		}
	}

	return strings.Join(parts, ",")
}

// Context is everything known about one inbound command.
type Context struct {
	CommandLine []string
	Event       *domain.Event
	Caller      *domain.Person
	RoomID      string
	Sink        port.ReplySink
}

// Callback sends a message into the room the command came from.
type Callback func(ctx context.Context, text string) error

// Params is the subset of a Context bound for one handler. Fields the handler
// did not ask for are left zero.
type Params struct {
	CommandLine []string
	Event       *domain.Event
	Caller      *domain.Person
	RoomID      string
	Callback    Callback
}

// Args returns the command line without the command name.
func (p Params) Args() []string {
	if len(p.CommandLine) < 2 {
		return nil
	}

	return p.CommandLine[1:]
}

func bind(needs Needs, dc *Context) Params {
	var p Params
	if dc == nil {
		return p
	}

	if needs.Has(NeedCommandLine) {
		p.CommandLine = dc.CommandLine
	}
	if needs.Has(NeedEvent) {
		p.Event = dc.Event
	}
	if needs.Has(NeedCaller) {
		p.Caller = dc.Caller
	}
	if needs.Has(NeedRoomID) {
		p.RoomID = dc.RoomID
	}
	if needs.Has(NeedCallback) && dc.Sink != nil {
		sink, roomID := dc.Sink, dc.RoomID
		p.Callback = func(ctx context.Context, text string) error {
			return sink.SendMessage(ctx, roomID, text)
		}
	}

	return p
}
