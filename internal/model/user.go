// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered identity.
//
// The ID is an xid generated at registration and never changes; every profile
// references it. PasswordHash carries the `json:"-"` tag so the hash can never
// leak through an API response, even if a handler serializes the whole struct.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"date"`
}

// UserSummary is the slice of a User that is joined into profile reads.
type UserSummary struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
