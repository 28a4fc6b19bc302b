package port

import (
	"context"
	"sparkbot/internal/core/domain"
)

type IdentitySource interface {
	// Me returns the bot's own account.
	Me(ctx context.Context) (*domain.Person, error)
	// GetPerson resolves a person by their platform ID.
	GetPerson(ctx context.Context, personID string) (*domain.Person, error)
}

type MessageSource interface {
	// GetMessage fetches the full message an event refers to.
	GetMessage(ctx context.Context, messageID string) (*domain.Message, error)
}
