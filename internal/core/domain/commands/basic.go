package commands

import (
	"context"
	"sparkbot/internal/core/domain/command"
	"strings"
)

func NewPing() command.Handler {
	return command.Handler{
		Name: "ping",
		Help: "Replies with pong. Useful to check if the bot is alive.",
		Run: func(_ context.Context, _ command.Params) (command.Reply, error) {
			return command.Single("pong"), nil
		},
	}
}

func NewEcho() command.Handler {
	return command.Handler{
		Name: "echo",
		Help: `
			Repeats what you said.
			Usage: echo <text>`,
		Needs: command.NeedCommandLine,
		Run: func(_ context.Context, p command.Params) (command.Reply, error) {
			if !command.MinArgs(1, p.CommandLine) {
				return nil, command.NewUserError("Usage: echo <text>", nil)
			}

			return command.Single(strings.Join(p.Args(), " ")), nil
		},
	}
}

func NewWhoAmI() command.Handler {
	return command.Handler{
		Name:   "whoami",
		Help:   "Shows what the bot knows about you.",
		Params: []string{"caller", "room_id"},
		Run: func(_ context.Context, p command.Params) (command.Reply, error) {
			if p.Caller == nil {
				return nil, command.NewUserError("I don't know who you are.", nil)
			}

			name := p.Caller.DisplayName
			if name == "" {
				name = p.Caller.ID
			}

			var b strings.Builder
			b.WriteString("You are " + name)
			if len(p.Caller.Emails) > 0 {
				b.WriteString(" (" + strings.Join(p.Caller.Emails, ", ") + ")")
			}
			b.WriteString(", talking to me in room " + p.RoomID + ".")

			return command.Single(b.String()), nil
		},
	}
}
