package webex

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"sparkbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWorker struct {
	mock.Mock
}

func (m *MockWorker) Work(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const payload = `{
	"id": "hook",
	"resource": "messages",
	"event": "created",
	"actorId": "person",
	"data": {
		"id": "msg",
		"roomId": "room",
		"personId": "person",
		"personEmail": "matt@example.com",
		"created": "2015-10-18T14:26:16.000Z"
	}
}`

func signed(secret []byte, body string) string {
	return hex.EncodeToString(Sign(secret, []byte(body)))
}

func TestReceiver_ServeHTTP(t *testing.T) {
	secret := []byte("1234")

	tests := []struct {
		name       string
		method     string
		body       string
		signature  string
		secret     []byte
		workerErr  error
		wantStatus int
		wantWork   bool
	}{
		{
			name:       "valid signed event",
			method:     http.MethodPost,
			body:       payload,
			signature:  signed(secret, payload),
			secret:     secret,
			wantStatus: http.StatusNoContent,
			wantWork:   true,
		},
		{
			name:       "worker error still acknowledged",
			method:     http.MethodPost,
			body:       payload,
			signature:  signed(secret, payload),
			secret:     secret,
			workerErr:  errors.New("fail"),
			wantStatus: http.StatusNoContent,
			wantWork:   true,
		},
		{
			name:       "no secret configured skips verification",
			method:     http.MethodPost,
			body:       payload,
			wantStatus: http.StatusNoContent,
			wantWork:   true,
		},
		{
			name:       "wrong signature",
			method:     http.MethodPost,
			body:       payload,
			signature:  "asdf1234",
			secret:     secret,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing signature",
			method:     http.MethodPost,
			body:       payload,
			secret:     secret,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "empty body",
			method:     http.MethodPost,
			body:       "",
			secret:     secret,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "junk body",
			method:     http.MethodPost,
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "own message",
			method:     http.MethodPost,
			body:       `{"id":"hook","actorId":"bot","data":{"id":"msg"}}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "readiness probe",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unsupported method",
			method:     http.MethodPut,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			worker := new(MockWorker)
			if tc.wantWork {
				worker.On("Work", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
					return e.Data.ID == "msg" && e.Data.RoomID == "room"
				})).Return(tc.workerErr).Once()
			}

			r := NewReceiver(worker, tc.secret, "bot")

			req := httptest.NewRequest(tc.method, DefaultPath, bytes.NewBufferString(tc.body))
			if tc.signature != "" {
				req.Header.Set(SignatureHeader, tc.signature)
			}
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)
			r.Wait()

			assert.Equal(t, tc.wantStatus, rec.Code)
			worker.AssertExpectations(t)
			if !tc.wantWork {
				worker.AssertNotCalled(t, "Work", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestReceiver_IgnoresRedelivery(t *testing.T) {
	worker := new(MockWorker)
	worker.On("Work", mock.Anything, mock.Anything).Return(nil).Once()

	r := NewReceiver(worker, nil, "bot")

	for range 2 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, DefaultPath, bytes.NewBufferString(payload)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	r.Wait()

	worker.AssertNumberOfCalls(t, "Work", 1)
}

func TestRecentSet(t *testing.T) {
	s := newRecentSet(2)

	assert.False(t, s.add("a"))
	assert.True(t, s.add("a"))
	assert.False(t, s.add("b"))
	assert.False(t, s.add("c"))

	// "a" was evicted by "c"
	assert.False(t, s.add("a"))
	assert.True(t, s.add("c"))
}
