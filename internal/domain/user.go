package domain

import "fmt"

// User represents a single row of the users table.
type User struct {
	ID       int64
	Username string
	Email    string
	Password string
}

// String renders the row the way the CLI prints it.
func (u User) String() string {
	return fmt.Sprintf("id=%d username='%s' email='%s' password='%s'", u.ID, u.Username, u.Email, u.Password)
}
