package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name     string
		expireAt *time.Time
		want     Status
	}{
		{name: "never activated", expireAt: nil, want: StatusExpired},
		{name: "yesterday", expireAt: &yesterday, want: StatusExpired},
		{name: "tomorrow", expireAt: &tomorrow, want: StatusActive},
		{name: "exactly now", expireAt: &now, want: StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckExpiry(tt.expireAt, now))
		})
	}
}

func TestRenewalBase(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 0, 20)

	assert.Equal(t, now, RenewalBase(nil, now))
	assert.Equal(t, now, RenewalBase(&past, now))
	assert.Equal(t, future, RenewalBase(&future, now))
}

func TestVerifyAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	assert.NoError(t, err)
	stored := StoredCredentials{Username: "admin", PasswordHash: string(hash)}

	tests := []struct {
		name   string
		submit Credentials
		stored StoredCredentials
		want   Decision
	}{
		{name: "exact match", submit: Credentials{"admin", "s3cret!"}, stored: stored, want: Authorized},
		{name: "wrong password", submit: Credentials{"admin", "s3cret"}, stored: stored, want: Unauthorized},
		{name: "wrong handle", submit: Credentials{"Admin", "s3cret!"}, stored: stored, want: Unauthorized},
		{name: "no stored credentials", submit: Credentials{"", ""}, stored: StoredCredentials{}, want: Unauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyAdmin(tt.submit, tt.stored))
		})
	}
}
