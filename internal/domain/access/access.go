// Package access holds the predicates that gate teacher and admin sessions.
package access

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Status is the account lock state of a teacher profile
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Decision is the outcome of an admin credential check
type Decision string

const (
	Authorized   Decision = "authorized"
	Unauthorized Decision = "unauthorized"
)

// CheckExpiry reports whether a profile with the given expiration is usable at now.
// A nil expiration means the account was never activated.
func CheckExpiry(expireAt *time.Time, now time.Time) Status {
	if expireAt == nil || expireAt.Before(now) {
		return StatusExpired
	}
	return StatusActive
}

// RenewalBase returns the instant a renewal should extend from: the current
// expiration while it is still in the future, otherwise now.
func RenewalBase(expireAt *time.Time, now time.Time) time.Time {
	if expireAt != nil && expireAt.After(now) {
		return *expireAt
	}
	return now
}

// Credentials is an admin login submission
type Credentials struct {
	Username string
	Password string
}

// StoredCredentials is the persisted admin handle and bcrypt password hash
type StoredCredentials struct {
	Username     string
	PasswordHash string
}

// VerifyAdmin authorizes only on an exact handle match and a password that
// matches the stored hash.
func VerifyAdmin(submitted Credentials, stored StoredCredentials) Decision {
	if stored.Username == "" || stored.PasswordHash == "" {
		return Unauthorized
	}
	if submitted.Username != stored.Username {
		return Unauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(submitted.Password)) != nil {
		return Unauthorized
	}
	return Authorized
}
