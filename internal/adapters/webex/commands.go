package webex

import (
	"context"
	"errors"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/domain/command"
	"strings"

	"github.com/rs/zerolog/log"
)

// NewWhoisCommand looks people up by e-mail or person ID. In group rooms the
// person is mentioned instead of named.
func NewWhoisCommand(c *Client) command.Handler {
	return command.Handler{
		Name: "whois",
		Help: `
			Looks up a Webex user.
			Usage: whois <e-mail or person ID> [team ID]
			With a team ID, also tells whether the person is a member of that team.`,
		Needs: command.NeedCommandLine | command.NeedCaller | command.NeedRoomID,
		Run: func(ctx context.Context, p command.Params) (command.Reply, error) {
			if !command.MinArgs(1, p.CommandLine) {
				return nil, command.NewUserError("Usage: whois <e-mail or person ID> [team ID]", nil)
			}
			args := p.Args()

			person, err := lookupPerson(ctx, c, args[0])
			if err != nil {
				return nil, err
			}

			name := person.DisplayName
			group, err := IsGroup(ctx, c, p.RoomID)
			if err != nil {
				log.Warn().Err(err).Str("roomId", p.RoomID).Msg("could not look up room type")
			}
			if group {
				name = MentionPerson(person)
			}

			var b strings.Builder
			b.WriteString(name)
			if len(person.Emails) > 0 {
				b.WriteString(" (" + strings.Join(person.Emails, ", ") + ")")
			}

			if p.Caller != nil && p.Caller.OrgID != "" {
				same, err := CheckIfInOrg(p.Caller.OrgID, person)
				if err == nil && same {
					b.WriteString(", from your organization")
				}
			}

			if len(args) > 1 {
				member, err := CheckIfInTeam(ctx, c, args[1], person)
				if err != nil {
					return nil, command.NewUserError("I could not read the members of that team.", err)
				}
				if member {
					b.WriteString(", member of the team")
				} else {
					b.WriteString(", not a member of the team")
				}
			}

			return command.Single(b.String() + "."), nil
		},
	}
}

func lookupPerson(ctx context.Context, c *Client, who string) (*domain.Person, error) {
	var (
		person *domain.Person
		err    error
	)
	if strings.Contains(who, "@") {
		person, err = GetPersonByEmail(ctx, c, who)
	} else {
		person, err = GetPersonByID(ctx, c, who)
	}

	switch {
	case err == nil:
		return person, nil
	case errors.Is(err, domain.ErrAmbiguousPerson):
		return nil, command.NewUserError("More than one person matches that e-mail.", err)
	case errors.Is(err, domain.ErrPersonNotFound):
		return nil, command.NewUserError("I could not find anyone matching \""+who+"\".", err)
	default:
		return nil, command.NewUserError("That does not look like an e-mail or person ID.", err)
	}
}
