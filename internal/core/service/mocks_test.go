package service

import (
	"context"
	"sparkbot/internal/core/domain"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockReplySink struct {
	mu          sync.Mutex
	callCount   int
	sendReplies []string
	sendError   error
}

func (m *mockReplySink) SendMessage(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.sendReplies = append(m.sendReplies, text)

	return m.sendError
}

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) Me(ctx context.Context) (*domain.Person, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*domain.Person)
	return p, args.Error(1)
}

func (m *MockIdentity) GetPerson(ctx context.Context, personID string) (*domain.Person, error) {
	args := m.Called(ctx, personID)
	p, _ := args.Get(0).(*domain.Person)
	return p, args.Error(1)
}

type MockMessages struct {
	mock.Mock
}

func (m *MockMessages) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	msg, _ := args.Get(0).(*domain.Message)
	return msg, args.Error(1)
}
