package webex

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sparkbot/internal/core/domain"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// IsGroup reports whether a room holds more than two people.
func IsGroup(ctx context.Context, c *Client, roomID string) (bool, error) {
	room, err := c.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}

	return room.Type == domain.Group, nil
}

// MentionPerson renders a markdown mention of person.
func MentionPerson(person *domain.Person) string {
	return fmt.Sprintf("<@personId:%s|%s>", person.ID, person.FirstName)
}

func CheckIfInOrg(orgID string, person *domain.Person) (bool, error) {
	if orgID == "" {
		return false, errors.New("organization must not be empty")
	}
	if person == nil {
		return false, errors.New("person must not be nil")
	}

	return person.OrgID == orgID, nil
}

// GetPersonByEmail finds the single person registered under email.
func GetPersonByEmail(ctx context.Context, c *Client, email string) (*domain.Person, error) {
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("incorrect e-mail format: %q", email)
	}

	people, err := c.ListPeople(ctx, email)
	if err != nil {
		return nil, err
	}

	switch len(people) {
	case 0:
		return nil, fmt.Errorf("%w for e-mail", domain.ErrPersonNotFound)
	case 1:
		return &people[0], nil
	default:
		return nil, fmt.Errorf("%w for e-mail", domain.ErrAmbiguousPerson)
	}
}

func GetPersonByID(ctx context.Context, c *Client, personID string) (*domain.Person, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w for ID", domain.ErrPersonNotFound)
	}

	person, err := c.GetPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("%w for ID: %w", domain.ErrPersonNotFound, err)
	}

	return person, nil
}

func CheckIfInTeam(ctx context.Context, c *Client, teamID string, person *domain.Person) (bool, error) {
	memberships, err := c.ListTeamMemberships(ctx, teamID)
	if err != nil {
		return false, err
	}

	for _, m := range memberships {
		if m.PersonID == person.ID {
			return true, nil
		}
	}

	return false, nil
}
