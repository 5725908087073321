package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"usermgr/internal/domain"
	"usermgr/internal/repository"
)

var (
	// ErrUserNotFound indicates that no user carries the requested username.
	ErrUserNotFound = repository.ErrUserNotFound
	// ErrUserAlreadyExists indicates a username or email collision.
	ErrUserAlreadyExists = repository.ErrUserAlreadyExists
	// ErrInvalidInput wraps argument validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// SeedUser is inserted by Initialize.
var SeedUser = domain.User{Username: "bob", Email: "bob@mail.com", Password: "bobpass"}

// UserService describes user lifecycle operations. Every call runs in its own session.
type UserService interface {
	Initialize(ctx context.Context) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
	Find(ctx context.Context, query string) ([]domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	ChangeEmail(ctx context.Context, username, newEmail string) error
	Create(ctx context.Context, username, email, password string) (*domain.User, error)
	Delete(ctx context.Context, username string) error
}

type usernameInput struct {
	Username string `validate:"required"`
}

type findInput struct {
	Query string `validate:"required"`
}

type pageInput struct {
	Limit  int `validate:"gte=0"`
	Offset int `validate:"gte=0"`
}

type changeEmailInput struct {
	Username string `validate:"required"`
	NewEmail string `validate:"required"`
}

type createUserInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type userService struct {
	sessions repository.SessionProvider
	validate *validator.Validate
}

func NewUserService(sessions repository.SessionProvider) UserService {
	return &userService{
		sessions: sessions,
		validate: validator.New(),
	}
}

func (s *userService) Initialize(ctx context.Context) (*domain.User, error) {
	seed := SeedUser
	err := s.sessions.WithSession(ctx, func(sess repository.Session) error {
		if err := sess.Users().Reset(ctx); err != nil {
			return err
		}
		if _, err := sess.Users().Create(ctx, &seed); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		return sess.Commit()
	})
	if err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *userService) Get(ctx context.Context, username string) (*domain.User, error) {
	if err := s.check(usernameInput{Username: username}); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.sessions.WithSession(ctx, func(sess repository.Session) error {
		var err error
		user, err = sess.Users().GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.sessions.WithSession(ctx, func(sess repository.Session) error {
		var err error
		users, err = sess.Users().List(ctx)
		return err
	})
	return users, err
}

func (s *userService) Find(ctx context.Context, query string) ([]domain.User, error) {
	if err := s.check(findInput{Query: query}); err != nil {
		return nil, err
	}

	var users []domain.User
	err := s.sessions.WithSession(ctx, func(sess repository.Session) error {
		var err error
		users, err = sess.Users().Search(ctx, query)
		return err
	})
	return users, err
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if err := s.check(pageInput{Limit: limit, Offset: offset}); err != nil {
		return nil, err
	}

	var users []domain.User
	err := s.sessions.WithSession(ctx, func(sess repository.Session) error {
		var err error
		users, err = sess.Users().Page(ctx, limit, offset)
		return err
	})
	return users, err
}

func (s *userService) ChangeEmail(ctx context.Context, username, newEmail string) error {
	if err := s.check(changeEmailInput{Username: username, NewEmail: newEmail}); err != nil {
		return err
	}

	return s.sessions.WithSession(ctx, func(sess repository.Session) error {
		user, err := sess.Users().GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := sess.Users().UpdateEmail(ctx, user.ID, newEmail); err != nil {
			if errors.Is(err, ErrUserAlreadyExists) {
				return rollback(sess, err)
			}
			return err
		}
		return sess.Commit()
	})
}

func (s *userService) Create(ctx context.Context, username, email, password string) (*domain.User, error) {
	if err := s.check(createUserInput{Username: username, Email: email, Password: password}); err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: password,
	}
	err := s.sessions.WithSession(ctx, func(sess repository.Session) error {
		if _, err := sess.Users().Create(ctx, user); err != nil {
			if errors.Is(err, ErrUserAlreadyExists) {
				return rollback(sess, err)
			}
			return err
		}
		return sess.Commit()
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.check(usernameInput{Username: username}); err != nil {
		return err
	}

	return s.sessions.WithSession(ctx, func(sess repository.Session) error {
		user, err := sess.Users().GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := sess.Users().Delete(ctx, user.ID); err != nil {
			return err
		}
		return sess.Commit()
	})
}

func (s *userService) check(input any) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// rollback discards the session and reports cause unless the rollback itself failed.
func rollback(sess repository.Session, cause error) error {
	if err := sess.Rollback(); err != nil {
		return fmt.Errorf("%w (after %v)", err, cause)
	}
	return cause
}
