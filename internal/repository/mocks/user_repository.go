package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"usermgr/internal/domain"
	"usermgr/internal/repository"
)

// UserRepository is a mock of repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	ret := m.Called(ctx, user)
	id, _ := ret.Get(0).(int64)
	return id, ret.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	ret := m.Called(ctx, username)
	user, _ := ret.Get(0).(*domain.User)
	return user, ret.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ret := m.Called(ctx)
	users, _ := ret.Get(0).([]domain.User)
	return users, ret.Error(1)
}

func (m *UserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	ret := m.Called(ctx, query)
	users, _ := ret.Get(0).([]domain.User)
	return users, ret.Error(1)
}

func (m *UserRepository) Page(ctx context.Context, limit, offset int) ([]domain.User, error) {
	ret := m.Called(ctx, limit, offset)
	users, _ := ret.Get(0).([]domain.User)
	return users, ret.Error(1)
}

func (m *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	return m.Called(ctx, id, email).Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ repository.UserRepository = (*UserRepository)(nil)
