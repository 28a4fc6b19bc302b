package webex

import (
	"net/http"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/domain/command"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoisCommand(t *testing.T) {
	alice := domain.Person{ID: "p1", DisplayName: "Alice Doe", FirstName: "Alice", Emails: []string{"alice@example.com"}, OrgID: "org"}
	routes := map[string]func(http.ResponseWriter){
		"GET /v1/people":           writeJSON(map[string]any{"items": []domain.Person{alice}}),
		"GET /v1/people/p1":        writeJSON(alice),
		"GET /v1/rooms/group":      writeJSON(domain.Room{ID: "group", Type: domain.Group}),
		"GET /v1/rooms/direct":     writeJSON(domain.Room{ID: "direct", Type: domain.Direct}),
		"GET /v1/team/memberships": writeJSON(map[string]any{"items": []domain.TeamMembership{{PersonID: "p1"}}}),
	}

	tests := []struct {
		name   string
		args   []string
		roomID string
		caller *domain.Person
		want   string
	}{
		{
			name:   "by email in direct room",
			args:   []string{"alice@example.com"},
			roomID: "direct",
			want:   "Alice Doe (alice@example.com).",
		},
		{
			name:   "by id in group room mentions",
			args:   []string{"p1"},
			roomID: "group",
			want:   "<@personId:p1|Alice> (alice@example.com).",
		},
		{
			name:   "same organization and team",
			args:   []string{"p1", "team"},
			roomID: "direct",
			caller: &domain.Person{ID: "me", OrgID: "org"},
			want:   "Alice Doe (alice@example.com), from your organization, member of the team.",
		},
		{
			name:   "unknown person",
			args:   []string{"nobody"},
			roomID: "direct",
			want:   "⚠️ Error: I could not find anyone matching \"nobody\".",
		},
		{
			name:   "bad email",
			args:   []string{"not@mail"},
			roomID: "direct",
			want:   "⚠️ Error: That does not look like an e-mail or person ID.",
		},
		{
			name: "no arguments",
			want: "⚠️ Error: Usage: whois <e-mail or person ID> [team ID]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestServer(t, routes)
			r := command.NewRegistry()
			require.NoError(t, r.Register([]string{"whois"}, NewWhoisCommand(c)))

			reply := command.NewDispatcher(r).Dispatch(t.Context(), "whois", &command.Context{
				CommandLine: append([]string{"whois"}, tc.args...),
				Caller:      tc.caller,
				RoomID:      tc.roomID,
			})

			assert.Equal(t, []string{tc.want}, command.Messages(reply))
		})
	}
}
