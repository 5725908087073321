package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"usermgr/internal/repository"
)

type session struct {
	tx       *sql.Tx
	users    *UserRepository
	finished bool
}

// WithSession runs fn inside a transaction. Whatever fn did not commit is
// rolled back before WithSession returns, including when fn panics.
func (s *Store) WithSession(ctx context.Context, fn func(repository.Session) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", repository.ErrConnection, err)
	}

	sess := &session{
		tx:    tx,
		users: &UserRepository{db: tx, dialect: s.dialect},
	}
	defer func() {
		if rbErr := sess.Rollback(); rbErr != nil && err == nil {
			err = rbErr
		}
	}()

	return fn(sess)
}

func (s *session) Users() repository.UserRepository {
	return s.users
}

func (s *session) Commit() error {
	if s.finished {
		return fmt.Errorf("commit tx: %w", sql.ErrTxDone)
	}
	s.finished = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Rollback is a no-op once the session has been committed or rolled back.
func (s *session) Rollback() error {
	if s.finished {
		return nil
	}
	s.finished = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

var _ repository.SessionProvider = (*Store)(nil)
