package service

import (
	"errors"
	"testing"

	"sparkbot/internal/core/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewAuthorizer(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		wantErr  bool
		expected []string
	}{
		{
			name: "loads allowed organizations",
			setup: func() {
				viper.Set("bot.allowed_orgs", []string{"org1", "org2"})
			},
			wantErr:  false,
			expected: []string{"org1", "org2"},
		},
		{
			name: "invalid type returns error",
			setup: func() {
				viper.Set("bot.allowed_orgs", map[string]int{"a": 1})
			},
			wantErr: true,
		},
		{
			name: "empty list is fine",
			setup: func() {
				viper.Set("bot.allowed_orgs", []string{})
			},
			wantErr:  false,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setup()
			auth, err := NewAuthorizer(&mockReplySink{})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, auth)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, auth)
				assert.Equal(t, tt.expected, auth.allowlist)
			}
		})
	}
	viper.Reset()
}

func TestOrgAuthorizer_IsAuthorized(t *testing.T) {
	tests := []struct {
		name       string
		allowlist  []string
		caller     *domain.Person
		sendErr    error
		want       bool
		expectSend bool
	}{
		{
			name:       "no allowlist lets everyone in",
			allowlist:  nil,
			caller:     &domain.Person{ID: "p", OrgID: "anything"},
			want:       true,
			expectSend: false,
		},
		{
			name:       "caller in allowed org",
			allowlist:  []string{"org1", "org2"},
			caller:     &domain.Person{ID: "p", OrgID: "org2"},
			want:       true,
			expectSend: false,
		},
		{
			name:       "caller outside allowed orgs is told so",
			allowlist:  []string{"org1"},
			caller:     &domain.Person{ID: "p", OrgID: "other"},
			want:       false,
			expectSend: true,
		},
		{
			name:       "unknown caller rejected",
			allowlist:  []string{"org1"},
			caller:     nil,
			want:       false,
			expectSend: true,
		},
		{
			name:       "send failure still rejects",
			allowlist:  []string{"org1"},
			caller:     &domain.Person{ID: "p", OrgID: "other"},
			sendErr:    errors.New("send failed"),
			want:       false,
			expectSend: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &mockReplySink{sendError: tt.sendErr}
			a := &OrgAuthorizer{allowlist: tt.allowlist, sender: sink}

			got := a.IsAuthorized(t.Context(), "room", tt.caller)

			assert.Equal(t, tt.want, got)
			if tt.expectSend {
				assert.Equal(t, []string{forbidden}, sink.sendReplies)
			} else {
				assert.Zero(t, sink.callCount)
			}
		})
	}
}
