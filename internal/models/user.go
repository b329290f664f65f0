package models

import (
	"strings"
	"time"
)

// User is a local account used for sign-in, soundtrack authorship, and votes.
type User struct {
	id           string
	sequence     int
	email        string
	displayName  string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a user with the given credentials. The password hash is
// produced by the auth service; models never see plaintext passwords.
func NewUser(sequence int, email, displayName, passwordHash string) *User {
	now := time.Now()
	return &User{
		sequence:     sequence,
		email:        email,
		displayName:  displayName,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Email() string         { return u.email }
func (u *User) DisplayName() string   { return u.displayName }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)           { u.id = id }
func (u *User) SetDisplayName(n string)   { u.displayName = n }
func (u *User) SetCreatedAt(t time.Time)  { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)  { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time) { u.deletedAt = t }

// Validate checks if the user's data is valid.
func (u *User) Validate() error {
	if !strings.Contains(u.email, "@") {
		return errBlank("valid email")
	}
	if strings.TrimSpace(u.displayName) == "" {
		return errBlank("display name")
	}
	if u.passwordHash == "" {
		return errBlank("password hash")
	}
	return nil
}
