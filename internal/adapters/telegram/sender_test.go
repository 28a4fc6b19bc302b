package telegram

import (
	"context"
	"errors"
	"sparkbot/internal/core/domain"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockBot) SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

func TestSender_SendMessage(t *testing.T) {
	longText := strings.Repeat("x", MessageLimit+10)

	tests := []struct {
		name      string
		roomID    string
		text      string
		wantCalls int
		setupMock func(mb *MockBot)
		wantErr   error
	}{
		{
			name:      "single message",
			roomID:    "1001",
			text:      "hello",
			wantCalls: 1,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
					return params.Text == "hello" && params.ChatID == int64(1001)
				})).
					Return(&models.Message{ID: 123}, nil).
					Once()
			},
		},
		{
			name:      "message chunked in two",
			roomID:    "1001",
			text:      longText,
			wantCalls: 2,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
					return len(params.Text) <= MessageLimit
				})).
					Return(&models.Message{ID: 456}, nil).
					Twice()
			},
		},
		{
			name:      "send fails",
			roomID:    "1001",
			text:      "fail",
			wantCalls: 1,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("fail")).Once()
			},
			wantErr: errors.New("fail"),
		},
		{
			name:      "empty text rejected",
			roomID:    "1001",
			text:      "",
			wantCalls: 0,
			setupMock: func(_ *MockBot) {},
			wantErr:   domain.ErrEmptyMessage,
		},
		{
			name:      "bad room id",
			roomID:    "not-a-chat",
			text:      "hello",
			wantCalls: 0,
			setupMock: func(_ *MockBot) {},
			wantErr:   errors.New("invalid chat id"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mb := new(MockBot)
			sender := NewSender(mb)

			tc.setupMock(mb)
			err := sender.SendMessage(t.Context(), tc.roomID, tc.text)

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr.Error())
			} else {
				require.NoError(t, err)
			}
			mb.AssertNumberOfCalls(t, "SendMessage", tc.wantCalls)
			mb.AssertExpectations(t)
		})
	}
}

func TestSender_SendTyping(t *testing.T) {
	mb := new(MockBot)
	mb.On("SendChatAction", mock.Anything, &bot.SendChatActionParams{
		ChatID: int64(12345),
		Action: models.ChatActionTyping,
	}).Return(true, nil).Once()

	NewSender(mb).SendTyping(t.Context(), 12345)

	mb.AssertExpectations(t)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"abc"}, chunk("abc", 5))
	assert.Equal(t, []string{"ab", "cd", "e"}, chunk("abcde", 2))
	assert.Equal(t, []string{"⚠️", "ok"}, chunk("⚠️ok", 2))
	assert.Equal(t, []string{"a😀", "b"}, chunk("a😀b", 3))
	assert.Equal(t, []string{"😀", "😀"}, chunk("😀😀", 3))
}

func TestChunk_CountsUTF16Units(t *testing.T) {
	text := strings.Repeat("😀", MessageLimit)

	chunks := chunk(text, MessageLimit)

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(utf16.Encode([]rune(c))), MessageLimit)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
