package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	helpName    = "help"
	helpAllName = "help-all"

	helpPreamble = "Type `help [command]` for more specific help about any of these commands:"
	helpDoc      = `
		The default help command.

		Usage: ` + "`help [command]`" + `

		Gives the help for [command]. If a command is not given (or is ` + "`all`" + `), lists every command.
	`
	helpAllDoc = `
		Lists every command this bot understands.

		Usage: ` + "`help-all`"
)

// Help renders help text from a Registry. The full listing is computed on
// first use and then reused, so every command must be registered before the
// bot starts serving.
type Help struct {
	registry *Registry

	once sync.Once
	done atomic.Bool
	all  string
}

func newHelp(r *Registry) *Help {
	return &Help{registry: r}
}

// Command answers "help [command]". A missing command or "all" lists every
// command.
func (h *Help) Command(commandline []string) string {
	if len(commandline) < 2 || strings.EqualFold(commandline[1], "all") {
		return h.All()
	}

	name := commandline[1]

	handler, err := h.registry.Get(name)
	if err != nil {
		return fmt.Sprintf("I don't have a command with the name \"%s\".", name)
	}

	text := Dedent(handler.Help)
	if text == "" {
		return fmt.Sprintf("There is no help available for `%s`.", name)
	}

	return text
}

// All lists every registered command, grouping aliases of the same handler on
// one line.
func (h *Help) All() string {
	h.once.Do(func() {
		groups := h.registry.groups()

		lines := make([]string, 0, len(groups))
		for _, names := range groups {
			lines = append(lines, strings.Join(names, ", "))
		}
		sort.Strings(lines)

		h.all = helpPreamble + "\n - " + strings.Join(lines, "\n - ")
		h.done.Store(true)
	})

	return h.all
}

func (h *Help) computed() bool {
	return h.done.Load()
}

func (h *Help) commandHandler() Handler {
	return Handler{
		Name:  helpName,
		Help:  helpDoc,
		Needs: NeedCommandLine,
		Run: func(_ context.Context, p Params) (Reply, error) {
			return Single(h.Command(p.CommandLine)), nil
		},
	}
}

func (h *Help) allHandler() Handler {
	return Handler{
		Name: helpAllName,
		Help: helpAllDoc,
		Run: func(_ context.Context, _ Params) (Reply, error) {
			return Single(h.All()), nil
		},
	}
}

// Dedent removes the whitespace prefix shared by every non-blank line of text
// and trims surrounding blank lines.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")

	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}

		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
