package library

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vincentsto199-blip/Comic/internal/catalog"
	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/repositories"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// Library coordinates issue records, soundtracks, and votes.
type Library struct {
	issues      *repositories.IssueRepository
	soundtracks *repositories.SoundtrackRepository
	votes       *repositories.VoteRepository
	logger      *log.Logger
}

// NewLibrary creates a Library over db.
func NewLibrary(db *sql.DB, logger *log.Logger) *Library {
	return &Library{
		issues:      repositories.NewIssueRepository(db),
		soundtracks: repositories.NewSoundtrackRepository(db),
		votes:       repositories.NewVoteRepository(db),
		logger:      logger,
	}
}

// SetLogger swaps the library's logger, used when the TUI redirects logs to a file.
func (l *Library) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// TrackInput is one authoring-form track row.
type TrackInput struct {
	Title      string
	YouTubeURL string
	PageStart  *int
	PageEnd    *int
}

// SoundtrackInput is the authoring payload. A blank ID creates; a set ID
// updates (owner only).
type SoundtrackInput struct {
	ID        string
	IssueID   string
	Title     string
	OwnerID   string
	OwnerName string
	Tracks    []TrackInput
}

// IssueTitle composes the stored display title for a catalog issue.
func IssueTitle(issue catalog.Issue) string {
	volume := "Untitled"
	if issue.Volume != nil && issue.Volume.Name != "" {
		volume = issue.Volume.Name
	}
	return fmt.Sprintf("%s #%s", volume, issue.IssueNumber)
}

// CoverURL picks the stored cover for a catalog issue, preferring the large
// rendition.
func CoverURL(issue catalog.Issue) string {
	if issue.Image == nil {
		return ""
	}
	if issue.Image.SuperURL != "" {
		return issue.Image.SuperURL
	}
	return issue.Image.SmallURL
}

// ResolveIssue maps a catalog issue to the local issue record, creating one
// lazily on first sight.
//
// The lookup-or-create is not transactional: two concurrent first-time
// lookups of the same catalog id can both create a record. Reads resolve to
// the earliest record, so later duplicates are inert rather than harmful.
func (l *Library) ResolveIssue(issue catalog.Issue) (*models.Issue, error) {
	comicVineID := strconv.Itoa(issue.ID)

	existing, err := l.issues.GetByComicVineID(comicVineID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrIssueNotFound) {
		return nil, err
	}

	record := models.NewIssue(0, comicVineID, IssueTitle(issue), CoverURL(issue))
	if err := l.issues.Create(record); err != nil {
		return nil, err
	}

	l.logger.Info("created issue record", "comicvine_id", comicVineID, "title", record.Title())
	return record, nil
}

// Issue returns a local issue record by id.
func (l *Library) Issue(id string) (*models.Issue, error) {
	return l.issues.Get(id)
}

// ListSoundtracks returns an issue's soundtracks ordered by score descending,
// each annotated with viewerID's current vote when a viewer is given.
func (l *Library) ListSoundtracks(issueID, viewerID string) ([]*models.Soundtrack, error) {
	soundtracks, err := l.soundtracks.List(map[string]any{"issue_id": issueID})
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		if err := l.soundtracks.AnnotateViewerVote(soundtracks, viewerID); err != nil {
			return nil, err
		}
	}

	return soundtracks, nil
}

// Soundtrack returns one soundtrack with its tracks.
func (l *Library) Soundtrack(id string) (*models.Soundtrack, error) {
	return l.soundtracks.Get(id)
}

// SaveSoundtrack creates or updates a soundtrack from form input.
//
// Track rows with a blank title or URL are dropped; order follows the
// surviving rows. Fails with [shared.ErrValidation] when the title is blank
// or no valid tracks remain, with [shared.ErrNotAuthenticated] for an
// anonymous author, and with [shared.ErrNotOwner] when updating someone
// else's soundtrack.
func (l *Library) SaveSoundtrack(input SoundtrackInput) (*models.Soundtrack, error) {
	if input.OwnerID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: soundtrack title is required", shared.ErrValidation)
	}

	tracks := cleanTracks(input.Tracks)
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: at least one track with a title and URL is required", shared.ErrValidation)
	}

	if input.ID == "" {
		soundtrack := models.NewSoundtrack(0, input.IssueID, title, input.OwnerID, input.OwnerName, tracks)
		if err := l.soundtracks.Create(soundtrack); err != nil {
			return nil, err
		}
		return soundtrack, nil
	}

	existing, err := l.soundtracks.Get(input.ID)
	if err != nil {
		return nil, err
	}

	if existing.OwnerID() != input.OwnerID {
		return nil, shared.ErrNotOwner
	}

	existing.SetTitle(title)
	existing.SetTracks(tracks)
	if err := l.soundtracks.Update(existing); err != nil {
		return nil, err
	}

	return l.soundtracks.Get(input.ID)
}

// Vote applies the toggle-or-switch vote protocol for userID on a
// soundtrack.
func (l *Library) Vote(soundtrackID, userID string, direction int) error {
	return l.votes.Apply(soundtrackID, userID, direction)
}

// cleanTracks drops rows missing a title or URL and assigns playback order
// from the surviving sequence.
func cleanTracks(inputs []TrackInput) []models.Track {
	tracks := make([]models.Track, 0, len(inputs))
	for _, input := range inputs {
		title := strings.TrimSpace(input.Title)
		mediaURL := strings.TrimSpace(input.YouTubeURL)
		if title == "" || mediaURL == "" {
			continue
		}

		tracks = append(tracks, models.Track{
			Title:      title,
			YouTubeURL: mediaURL,
			PageStart:  input.PageStart,
			PageEnd:    input.PageEnd,
			OrderIndex: len(tracks),
		})
	}
	return tracks
}
