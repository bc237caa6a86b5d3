// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered identity. Email is the login name and is stored
// lower-cased. LockoutEnd is nil when the account has never been locked.
type User struct {
	ID                string
	Email             string
	PasswordHash      []byte
	EmailConfirmed    bool
	AccessFailedCount int
	LockoutEnd        *time.Time
	CreatedAt         time.Time
}

// IsLockedOut reports whether the lockout window is still open at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// FailedAttempt is the outcome of recording one failed login.
type FailedAttempt struct {
	// Count is the attempt number that was just recorded (1-based).
	Count int
	// LockedOut is true when the login must be refused as locked: either
	// this attempt reached the threshold or a window was already open.
	LockedOut bool
	// AlreadyLocked is true when a lockout window was open before this
	// attempt. Nothing is recorded in that case.
	AlreadyLocked bool
}
