// Package models contains data structures for the marketplace's domain models.
package models

import "time"

// User represents a registered marketplace member.
// Password is only populated on the stored user list; every value handed
// out of the auth layer goes through Redacted first.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Redacted returns a copy of the user without the password field.
func (u User) Redacted() User {
	u.Password = ""
	return u
}
