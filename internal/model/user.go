// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash WITH json:"-"?
// The guarantee that the password hash never leaves the server lives in the
// struct tag, not in handler discipline. `json:"-"` tells encoding/json to skip
// the field entirely, so no endpoint — including list-all — can serialize it,
// even if a future handler forgets to strip it.
//
// WHY GitHubID *int64 (a pointer)?
// Most accounts are created with email/password and have no GitHub identity.
// A nil pointer means "not linked"; a non-nil pointer holds GitHub's stable
// numeric user ID. The UNIQUE index on github_id ensures one GitHub account
// maps to exactly one app account.
//
// OAuth-only accounts have an empty PasswordHash. Password login for them must
// fail with the same generic error as a wrong password — an empty string is
// never a valid bcrypt hash, so verification naturally rejects it.
type User struct {
	ID           string    `json:"id"         db:"id"`
	FullName     string    `json:"fullName"   db:"full_name"`
	Email        string    `json:"email"      db:"email"` // unique across all users, stored as-is
	PasswordHash string    `json:"-"          db:"password_hash"`
	City         string    `json:"city"       db:"city"`
	Country      string    `json:"country"    db:"country"`
	IsGraduate   bool      `json:"isGraduate" db:"is_graduate"`
	GitHubID     *int64    `json:"-"          db:"github_id"` // nil unless linked via GitHub OAuth
	CreatedAt    time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"  db:"updated_at"`
}
