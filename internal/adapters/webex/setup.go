package webex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sparkbot/internal/core/domain"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const webhookName = "sparkbot"

// NewSecret returns a random webhook secret.
func NewSecret() ([]byte, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("error creating webhook secret: %w", err)
	}

	return []byte(strings.ReplaceAll(id.String(), "-", "")), nil
}

// RegisterWebhook replaces every webhook of the bot account with a single one
// for new messages pointing at rootURL+path.
func RegisterWebhook(ctx context.Context, c *Client, rootURL, path string, secret []byte) (*domain.Webhook, error) {
	if rootURL == "" {
		return nil, errors.New("no webhook root url configured")
	}

	if strings.HasPrefix(rootURL, "http:") {
		log.Warn().Str("url", rootURL).
			Msg("creating webhook with plain http, use https so messages are not sent in the clear")
	}

	hooks, err := c.ListWebhooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing webhooks: %w", err)
	}

	for _, hook := range hooks {
		log.Info().Str("webhookId", hook.ID).Str("target", hook.TargetURL).Msg("deleting existing webhook")
		if err := c.DeleteWebhook(ctx, hook.ID); err != nil {
			return nil, fmt.Errorf("error deleting webhook %s: %w", hook.ID, err)
		}
	}

	created, err := c.CreateWebhook(ctx, domain.Webhook{
		Name:      webhookName,
		TargetURL: strings.TrimSuffix(rootURL, "/") + path,
		Resource:  "messages",
		Event:     "created",
		Secret:    string(secret),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating webhook: %w", err)
	}

	log.Info().Str("webhookId", created.ID).Str("target", created.TargetURL).Msg("webhook registered")

	return created, nil
}

// Serve runs the receiver on addr until ctx is done.
func Serve(ctx context.Context, addr, path string, receiver *Receiver) error {
	mux := http.NewServeMux()
	mux.Handle(path, receiver)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("path", path).Msg("receiver listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	receiver.Wait()
	if err != nil {
		return fmt.Errorf("error shutting down receiver: %w", err)
	}

	return nil
}
