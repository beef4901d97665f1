// Package models holds the wire-level domain types shared by the client
// and the state stores.
package models

import "time"

// User is the identity returned by the /user/me endpoint. The client
// never constructs one itself; the backend is authoritative.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}