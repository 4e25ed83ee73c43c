// Package models holds the persistent data types of the identity service.
package models

import "time"

// User is a registered account. PasswordHash carries the encoded hash
// (argon2id PHC string or a legacy bcrypt record) and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
