package port

import (
	"context"
	"sparkbot/internal/core/domain"
)

type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt domain.Prompt) (string, error)
}
