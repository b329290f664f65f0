package models

import (
	"strings"
	"time"
)

// Soundtrack is a community-curated playlist attached to an issue.
//
// Vote tallies (score, upvotes, downvotes) are denormalized onto the record
// and must only be mutated through the vote transaction; score stays equal to
// upvotes - downvotes after every commit. ViewerVote is view-only annotation
// for the requesting user and is never persisted on the record itself.
type Soundtrack struct {
	id         string
	sequence   int
	issueID    string
	title      string
	ownerID    string
	ownerName  string
	tracks     []Track
	score      int
	upvotes    int
	downvotes  int
	viewerVote int
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewSoundtrack creates a soundtrack with zeroed tallies owned by the given user.
func NewSoundtrack(sequence int, issueID, title, ownerID, ownerName string, tracks []Track) *Soundtrack {
	now := time.Now()
	return &Soundtrack{
		sequence:  sequence,
		issueID:   issueID,
		title:     title,
		ownerID:   ownerID,
		ownerName: ownerName,
		tracks:    tracks,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Soundtrack) ID() string           { return s.id }
func (s *Soundtrack) Sequence() int        { return s.sequence }
func (s *Soundtrack) IssueID() string      { return s.issueID }
func (s *Soundtrack) Title() string        { return s.title }
func (s *Soundtrack) OwnerID() string      { return s.ownerID }
func (s *Soundtrack) OwnerName() string    { return s.ownerName }
func (s *Soundtrack) Tracks() []Track      { return s.tracks }
func (s *Soundtrack) Score() int           { return s.score }
func (s *Soundtrack) Upvotes() int         { return s.upvotes }
func (s *Soundtrack) Downvotes() int       { return s.downvotes }
func (s *Soundtrack) ViewerVote() int      { return s.viewerVote }
func (s *Soundtrack) CreatedAt() time.Time { return s.createdAt }
func (s *Soundtrack) UpdatedAt() time.Time { return s.updatedAt }
func (s *Soundtrack) DeletedAt() *time.Time { return s.deletedAt }

func (s *Soundtrack) SetID(id string)           { s.id = id }
func (s *Soundtrack) SetTitle(title string)     { s.title = title }
func (s *Soundtrack) SetTracks(tracks []Track)  { s.tracks = tracks }
func (s *Soundtrack) SetViewerVote(v int)       { s.viewerVote = v }
func (s *Soundtrack) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Soundtrack) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Soundtrack) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// SetTallies overwrites the denormalized counters from a store read.
func (s *Soundtrack) SetTallies(score, upvotes, downvotes int) {
	s.score = score
	s.upvotes = upvotes
	s.downvotes = downvotes
}

// Validate checks if the soundtrack's data is valid: a non-blank title and at
// least one valid track.
func (s *Soundtrack) Validate() error {
	if strings.TrimSpace(s.title) == "" {
		return errBlank("soundtrack title")
	}
	if strings.TrimSpace(s.issueID) == "" {
		return errBlank("issue id")
	}
	if strings.TrimSpace(s.ownerID) == "" {
		return errBlank("owner id")
	}
	if len(s.tracks) == 0 {
		return errBlank("at least one track")
	}
	for _, track := range s.tracks {
		if err := track.Validate(); err != nil {
			return err
		}
	}
	return nil
}
