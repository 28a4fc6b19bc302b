package port

import "context"

type ReplySink interface {
	// SendMessage posts text into the room identified by roomID. It fails for empty text.
	SendMessage(ctx context.Context, roomID, text string) error
}
