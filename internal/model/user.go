package model

import "time"

// User is keyed by Email. Password is kept as submitted.
type User struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
