package domain

import "time"

type User struct {
	ID           int64
	Username     string // unique, case-sensitive, immutable
	PasswordHash string // bcrypt or argon2id encoded, never empty
	Role         Role
	CreatedAt    time.Time
}

// Identity is the public part of a user: what a session token asserts and
// what the API is allowed to return.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

func (u User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}
