package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEmptyMessage       = errors.New("empty message")
	ErrEmptyPrompt        = errors.New("empty prompt")
	ErrPersonNotFound     = errors.New("no person found")
	ErrAmbiguousPerson    = errors.New("more than one person found")
)
