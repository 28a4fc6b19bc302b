package service

import (
	"context"
	"errors"
	"slices"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, roomID string, caller *domain.Person) bool
}

// OrgAuthorizer only lets people from the configured organizations use the
// bot. An empty allowlist lets everyone in.
type OrgAuthorizer struct {
	allowlist []string
	sender    port.ReplySink
}

func NewAuthorizer(sender port.ReplySink) (*OrgAuthorizer, error) {
	var list []string

	err := viper.UnmarshalKey("bot.allowed_orgs", &list)
	if err != nil {
		return nil, errors.New("failed to load allowed organizations")
	}

	return &OrgAuthorizer{
		allowlist: list,
		sender:    sender,
	}, nil
}

const forbidden = "Sorry, this bot is only available to members of specific organizations."

func (a *OrgAuthorizer) IsAuthorized(ctx context.Context, roomID string, caller *domain.Person) bool {
	if len(a.allowlist) == 0 {
		return true
	}

	if caller != nil && slices.Contains(a.allowlist, caller.OrgID) {
		return true
	}

	l := log.With().Str("roomId", roomID).Logger()
	if caller != nil {
		l = l.With().Str("caller", caller.ID).Str("orgId", caller.OrgID).Logger()
	}
	l.Info().Msg("rejecting caller outside of allowed organizations")

	err := a.sender.SendMessage(ctx, roomID, forbidden)
	if err != nil {
		l.Err(err).Msg("failed to send unauthorized warning")
	}

	return false
}
