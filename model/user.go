package model

import "time"

// User is a registered account. Salt and PasswordHash never leave the server.
type User struct {
	ID           int       `json:"id"`
	Login        string    `json:"login"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Salt         string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// DisplayName is "First Last".
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
