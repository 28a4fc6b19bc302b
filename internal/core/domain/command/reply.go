package command

import (
	"fmt"
	"iter"
)

// Reply is what a handler produces: a Single message or a Stream of messages.
type Reply interface {
	isReply()
}

// Single is exactly one outgoing message.
type Single string

// Stream yields outgoing messages one at a time. A non-nil error ends the
// stream and is reported to the user in place of the element.
type Stream iter.Seq2[string, error]

func (Single) isReply() {}
func (Stream) isReply() {}

func Text(format string, args ...any) Reply {
	if len(args) == 0 {
		return Single(format)
	}

	return Single(fmt.Sprintf(format, args...))
}

// Lines streams each of lines as its own message.
func Lines(lines ...string) Reply {
	return Stream(func(yield func(string, error) bool) {
		for _, line := range lines {
			if !yield(line, nil) {
				return
			}
		}
	})
}

// Messages collects every message of r. Streams are drained.
func Messages(r Reply) []string {
	var out []string

	switch r := r.(type) {
	case Single:
		out = append(out, string(r))
	case Stream:
		for text, err := range r {
			if err != nil {
				out = append(out, ErrorReply(err))
				break
			}
			out = append(out, text)
		}
	}

	return out
}
