package commands

import (
	"context"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/domain/command"
	"sparkbot/internal/core/port"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const thinking = "Let me think about that..."

type AskHandler struct {
	generator port.TextGenerator
	timeout   time.Duration
}

func NewAskHandler(generator port.TextGenerator, timeout time.Duration) *AskHandler {
	return &AskHandler{generator: generator, timeout: timeout}
}

func (h *AskHandler) Handler() command.Handler {
	return command.Handler{
		Name: "ask",
		Help: `
			Asks a language model a question.
			Usage: ask <question>
			       ask -m <model> <question>`,
		Needs: command.NeedCommandLine | command.NeedCallback,
		Run:   h.Respond,
	}
}

// Respond acknowledges the question through the callback before generation starts.
func (h *AskHandler) Respond(ctx context.Context, p command.Params) (command.Reply, error) {
	prompt := extractPrompt(p.Args())
	if prompt.Prompt == "" {
		return nil, command.NewUserError("Usage: ask <question>", domain.ErrEmptyPrompt)
	}

	if p.Callback != nil {
		err := p.Callback(ctx, thinking)
		if err != nil {
			log.Warn().Err(err).Msg("could not send thinking message")
		}
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	answer, err := h.generator.GenerateFromPrompt(ctx, prompt)
	if err != nil {
		return nil, command.NewUserError("The language model did not answer.", err)
	}

	return command.Single(answer), nil
}

func extractPrompt(args []string) domain.Prompt {
	var prompt domain.Prompt
	if len(args) >= 2 && args[0] == "-m" {
		prompt.Model = args[1]
		args = args[2:]
	}

	prompt.Prompt = strings.TrimSpace(strings.Join(args, " "))

	return prompt
}
