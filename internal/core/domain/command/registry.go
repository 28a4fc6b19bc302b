package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"
)

const (
	HelpCommand    = "help"
	HelpAllCommand = "help-all"

	notFoundWithHelp = "Command not found. Maybe try 'help'?"
	notFoundNoHelp   = "Command not found."
)

// HandlerFunc runs a command with the parameters it asked for.
type HandlerFunc func(ctx context.Context, p Params) (Reply, error)

// Handler is a command implementation plus its metadata.
type Handler struct {
	// Name identifies the handler in logs.
	Name string
	// Help is shown by "help <command>". It is dedented before display.
	Help string
	// Params lists the context values the handler wants by name, as an
	// alternative to Needs. Unknown names are reported at registration.
	Params []string
	Needs  Needs
	Run    HandlerFunc
}

// HandlerID groups the aliases that were registered together.
type HandlerID int

type entry struct {
	id      HandlerID
	handler Handler
}

// Registry maps command names to handlers. Registration is meant to happen
// during setup; lookups are safe from any goroutine.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]entry
	fallback *entry
	nextID   HandlerID
	notFound string

	help *Help
}

type RegistryOption func(r *Registry)

// WithHelpAllAlias also binds "help-all" to the full command listing.
func WithHelpAllAlias() RegistryOption {
	return func(r *Registry) {
		r.put([]string{HelpAllCommand}, r.help.allHandler())
	}
}

// WithNotFoundMessage overrides the text sent for unknown commands.
func WithNotFoundMessage(message string) RegistryOption {
	return func(r *Registry) {
		r.notFound = message
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		commands: make(map[string]entry),
		notFound: notFoundWithHelp,
	}
	r.help = newHelp(r)
	r.put([]string{HelpCommand}, r.help.commandHandler())

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register binds handler under every name in names. A name that is already
// taken is rebound to the new handler.
func (r *Registry) Register(names []string, handler Handler) error {
	if len(names) == 0 {
		return ErrNoCommandNames
	}

	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if !validName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidCommandName, name)
		}
		normalized = append(normalized, strings.ToLower(name))
	}

	handler, err := prepare(handler, normalized[0])
	if err != nil {
		return err
	}

	r.put(normalized, handler)

	return nil
}

// RegisterFallback sets the handler used when no command name matches.
func (r *Registry) RegisterFallback(handler Handler) error {
	handler, err := prepare(handler, "fallback")
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fallback != nil {
		return ErrFallbackExists
	}

	r.nextID++
	r.fallback = &entry{id: r.nextID, handler: handler}

	log.Info().Str("handler", handler.Name).Msg("adding fallback command handler to registry")

	return nil
}

// RemoveHelp drops the help command, including an overridden one, and stops
// suggesting it in the not-found message.
func (r *Registry) RemoveHelp() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.commands[HelpCommand]; ok {
		delete(r.commands, HelpCommand)
		if all, ok := r.commands[HelpAllCommand]; ok && all.handler.Name == helpAllName {
			delete(r.commands, HelpAllCommand)
		}
		log.Info().Str("handler", e.handler.Name).Msg("removed help command from registry")
	}

	if r.notFound == notFoundWithHelp {
		r.notFound = notFoundNoHelp
	}
}

func (r *Registry) SetNotFoundMessage(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notFound = message
}

func (r *Registry) NotFoundMessage() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.notFound
}

// Get returns the handler registered under command.
func (r *Registry) Get(command string) (Handler, error) {
	e, ok := r.lookup(command)
	if !ok {
		return Handler{}, &NotFoundError{Command: command, Message: r.NotFoundMessage()}
	}

	return e.handler, nil
}

func (r *Registry) Fallback() (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.fallback == nil {
		return Handler{}, false
	}

	return r.fallback.handler, true
}

// Help returns the help generator bound to this registry.
func (r *Registry) Help() *Help {
	return r.help
}

// ListCommands returns every registered command name, sorted.
func (r *Registry) ListCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// groups returns the command names bucketed by the registration they came from.
func (r *Registry) groups() [][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID := make(map[HandlerID][]string)
	for name, e := range r.commands {
		byID[e.id] = append(byID[e.id], name)
	}

	out := make([][]string, 0, len(byID))
	for _, names := range byID {
		sort.Strings(names)
		out = append(out, names)
	}

	return out
}

func (r *Registry) lookup(command string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.commands[strings.ToLower(command)]
	return e, ok
}

func (r *Registry) put(names []string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.help != nil && r.help.computed() {
		log.Warn().Strs("commands", names).
			Msg("registering command after help was generated, help output will not include it")
	}

	r.nextID++
	for _, name := range names {
		if old, ok := r.commands[name]; ok {
			log.Debug().Str("command", name).Str("previous", old.handler.Name).
				Msg("replacing command handler")
		}
		log.Info().Str("command", name).Str("handler", handler.Name).Msg("adding command handler to registry")
		r.commands[name] = entry{id: r.nextID, handler: handler}
	}
}

func prepare(handler Handler, defaultName string) (Handler, error) {
	if handler.Run == nil {
		return handler, ErrInvalidHandler
	}

	if handler.Name == "" {
		handler.Name = defaultName
	}

	if len(handler.Params) > 0 {
		needs, unknown := NeedsFromNames(handler.Params...)
		for _, name := range unknown {
			log.Warn().Str("handler", handler.Name).Str("parameter", name).
				Msg("parameter requested by handler is not provided, it will stay empty")
		}
		handler.Needs |= needs
	}

	return handler, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}

	return strings.IndexFunc(name, unicode.IsSpace) < 0
}
