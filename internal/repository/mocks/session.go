// Package mocks holds testify mocks of the repository contracts.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"usermgr/internal/repository"
)

// SessionProvider is a mock of repository.SessionProvider.
// Return a func(context.Context, func(repository.Session) error) error to run the callback.
type SessionProvider struct {
	mock.Mock
}

func (m *SessionProvider) WithSession(ctx context.Context, fn func(repository.Session) error) error {
	ret := m.Called(ctx, fn)
	if rf, ok := ret.Get(0).(func(context.Context, func(repository.Session) error) error); ok {
		return rf(ctx, fn)
	}
	return ret.Error(0)
}

// Session is a mock of repository.Session.
type Session struct {
	mock.Mock
}

func (m *Session) Users() repository.UserRepository {
	ret := m.Called()
	if users, ok := ret.Get(0).(repository.UserRepository); ok {
		return users
	}
	return nil
}

func (m *Session) Commit() error {
	return m.Called().Error(0)
}

func (m *Session) Rollback() error {
	return m.Called().Error(0)
}

var (
	_ repository.SessionProvider = (*SessionProvider)(nil)
	_ repository.Session         = (*Session)(nil)
)
