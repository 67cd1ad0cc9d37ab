package domain

import "fmt"

// User is the sole entity managed by this tool. The id is assigned by the
// store on first insert; username and email are unique across all records.
type User struct {
	ID       int64
	Username string
	Email    string
	Password string
}

// String renders the record for terminal output. The password is stored in
// the clear and is never printed.
func (u User) String() string {
	return fmt.Sprintf("User(id=%d, username=%s, email=%s)", u.ID, u.Username, u.Email)
}
