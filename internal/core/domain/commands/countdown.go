package commands

import (
	"context"
	"sparkbot/internal/core/domain/command"
	"strconv"
	"time"
)

const maxCountdown = 10

// NewCountdown streams one message per step, waiting interval between them.
func NewCountdown(interval time.Duration) command.Handler {
	return command.Handler{
		Name: "countdown",
		Help: `
			Counts down to zero, one message at a time.
			Usage: countdown [from]  (at most 10, default 3)`,
		Needs: command.NeedCommandLine,
		Run: func(ctx context.Context, p command.Params) (command.Reply, error) {
			from := 3
			if args := p.Args(); len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 || n > maxCountdown {
					return nil, command.NewUserError("Please give me a number between 0 and 10.", err)
				}
				from = n
			}

			return command.Stream(func(yield func(string, error) bool) {
				for i := from; i > 0; i-- {
					if !yield(strconv.Itoa(i), nil) {
						return
					}

					select {
					case <-ctx.Done():
						yield("", ctx.Err())
						return
					case <-time.After(interval):
					}
				}
				yield("Liftoff!", nil)
			}), nil
		},
	}
}
