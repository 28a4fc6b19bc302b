package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
)

var ErrMalformedCommandLine = errors.New("malformed command line")

var smartQuotes = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‘", "'",
	"’", "'",
)

// ParseCommandLine splits text into shell-style tokens. Leading tokens that
// spell out one of selfNames (the bot's own mention) are dropped.
func ParseCommandLine(text string, selfNames ...string) ([]string, error) {
	tokens, err := shellquote.Split(smartQuotes.Replace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCommandLine, err)
	}

	return stripMention(tokens, selfNames), nil
}

// CommandName returns the lower-cased command token of commandline.
func CommandName(commandline []string) string {
	if len(commandline) == 0 {
		return ""
	}

	return strings.ToLower(commandline[0])
}

// MinArgs reports whether commandline has at least n arguments after the
// command name.
func MinArgs(n int, commandline []string) bool {
	return len(commandline)-1 >= n
}

func stripMention(tokens []string, names []string) []string {
	candidates := make([][]string, 0, len(names))
	for _, name := range names {
		if words := strings.Fields(name); len(words) > 0 {
			candidates = append(candidates, words)
		}
	}

	// longest first so "Spark Bot" wins over "Spark"
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	for _, words := range candidates {
		if hasPrefixFold(tokens, words) {
			return tokens[len(words):]
		}
	}

	return tokens
}

func hasPrefixFold(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}

	for i, p := range prefix {
		if !strings.EqualFold(tokens[i], p) {
			return false
		}
	}

	return true
}
