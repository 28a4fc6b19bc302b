package port

import (
	"context"
	"sparkbot/internal/core/domain"
)

type EventWorker interface {
	// Work runs one inbound event through command dispatch and emits the replies.
	Work(ctx context.Context, event *domain.Event) error
}
