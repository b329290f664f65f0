package models

import (
	"strings"
	"time"
)

// Issue is the local record created lazily for an external Comic Vine issue
// id. At most one record should exist per external id; concurrent first-time
// lookups can race and create duplicates (accepted gap, documented in
// DESIGN.md).
type Issue struct {
	id          string
	sequence    int
	comicVineID string
	title       string
	coverURL    string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewIssue creates an issue record for the given external catalog id.
func NewIssue(sequence int, comicVineID, title, coverURL string) *Issue {
	now := time.Now()
	return &Issue{
		sequence:    sequence,
		comicVineID: comicVineID,
		title:       title,
		coverURL:    coverURL,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (i *Issue) ID() string           { return i.id }
func (i *Issue) Sequence() int        { return i.sequence }
func (i *Issue) ComicVineID() string  { return i.comicVineID }
func (i *Issue) Title() string        { return i.title }
func (i *Issue) CoverURL() string     { return i.coverURL }
func (i *Issue) CreatedAt() time.Time { return i.createdAt }
func (i *Issue) UpdatedAt() time.Time { return i.updatedAt }

func (i *Issue) SetID(id string)           { i.id = id }
func (i *Issue) SetCreatedAt(t time.Time)  { i.createdAt = t }
func (i *Issue) SetUpdatedAt(t time.Time)  { i.updatedAt = t }
func (i *Issue) SetDeletedAt(t *time.Time) { i.deletedAt = t }
func (i *Issue) DeletedAt() *time.Time     { return i.deletedAt }

// Validate checks if the issue's data is valid.
func (i *Issue) Validate() error {
	if strings.TrimSpace(i.comicVineID) == "" {
		return errBlank("comicvine issue id")
	}
	if strings.TrimSpace(i.title) == "" {
		return errBlank("issue title")
	}
	return nil
}
