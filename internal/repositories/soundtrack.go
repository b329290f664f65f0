package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// SoundtrackRepository implements models.Repository[*models.Soundtrack].
//
// Tracks are owned by their soundtrack: they are inserted alongside a create
// and replaced wholesale on update, never written independently. Vote tallies
// are read here but only ever mutated by [VoteRepository.Apply].
type SoundtrackRepository struct {
	db *sql.DB
}

// NewSoundtrackRepository creates a new SoundtrackRepository with the given database connection
func NewSoundtrackRepository(db *sql.DB) *SoundtrackRepository {
	return &SoundtrackRepository{db: db}
}

// Create inserts a new [models.Soundtrack] and its tracks with generated ID and sequence
func (r *SoundtrackRepository) Create(soundtrack *models.Soundtrack) error {
	sequence, err := NextSequence(r.db, "soundtracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	soundtrack.SetID(id)

	if err := soundtrack.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO soundtracks (
			id, sequence, issue_id, title, user_id, user_name,
			votes_count, upvotes, downvotes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		soundtrack.IssueID(),
		soundtrack.Title(),
		soundtrack.OwnerID(),
		soundtrack.OwnerName(),
		soundtrack.CreatedAt(),
		soundtrack.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert soundtrack: %w", err)
	}

	if err := insertTracks(tx, id, soundtrack.Tracks()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit soundtrack: %w", err)
	}

	return nil
}

// Get retrieves a soundtrack with its tracks, excluding soft-deleted soundtracks
func (r *SoundtrackRepository) Get(id string) (*models.Soundtrack, error) {
	query := `
		SELECT id, sequence, issue_id, title, user_id, user_name,
			votes_count, upvotes, downvotes, created_at, updated_at, deleted_at
		FROM soundtracks
		WHERE id = ? AND deleted_at IS NULL
	`

	soundtrack, err := scanSoundtrack(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSoundtrackNotFound
	}
	if err != nil {
		return nil, err
	}

	tracks, err := r.loadTracks(id)
	if err != nil {
		return nil, err
	}
	soundtrack.SetTracks(tracks)

	return soundtrack, nil
}

// Update replaces a soundtrack's title and track list in one transaction.
//
// Ownership is enforced by the library service; tallies are untouched.
func (r *SoundtrackRepository) Update(soundtrack *models.Soundtrack) error {
	if err := soundtrack.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	soundtrack.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE soundtracks
		SET title = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, soundtrack.Title(), now, soundtrack.ID())
	if err != nil {
		return fmt.Errorf("failed to update soundtrack: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSoundtrackNotFound, soundtrack.ID())
	}

	if _, err := tx.Exec("DELETE FROM soundtrack_tracks WHERE soundtrack_id = ?", soundtrack.ID()); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}

	if err := insertTracks(tx, soundtrack.ID(), soundtrack.Tracks()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit soundtrack update: %w", err)
	}

	return nil
}

// Delete soft-deletes a soundtrack by ID
func (r *SoundtrackRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE soundtracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete soundtrack: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSoundtrackNotFound, id)
	}

	return nil
}

// List retrieves all soundtracks matching the given criteria ordered by score
// descending, excluding soft-deleted soundtracks
func (r *SoundtrackRepository) List(criteria map[string]any) ([]*models.Soundtrack, error) {
	query := `
		SELECT id, sequence, issue_id, title, user_id, user_name,
			votes_count, upvotes, downvotes, created_at, updated_at, deleted_at
		FROM soundtracks
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if issueID, ok := criteria["issue_id"].(string); ok && issueID != "" {
		query += " AND issue_id = ?"
		args = append(args, issueID)
	}

	if ownerID, ok := criteria["user_id"].(string); ok && ownerID != "" {
		query += " AND user_id = ?"
		args = append(args, ownerID)
	}

	query += " ORDER BY votes_count DESC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query soundtracks: %w", err)
	}
	defer rows.Close()

	var soundtracks []*models.Soundtrack
	for rows.Next() {
		soundtrack, err := scanSoundtrack(rows.Scan)
		if err != nil {
			return nil, err
		}
		soundtracks = append(soundtracks, soundtrack)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, soundtrack := range soundtracks {
		tracks, err := r.loadTracks(soundtrack.ID())
		if err != nil {
			return nil, err
		}
		soundtrack.SetTracks(tracks)
	}

	return soundtracks, nil
}

// AnnotateViewerVote sets the viewer's current vote value on each soundtrack.
// A missing vote row reports as 0; stored values are only ever +1 or -1.
func (r *SoundtrackRepository) AnnotateViewerVote(soundtracks []*models.Soundtrack, viewerID string) error {
	if viewerID == "" {
		return nil
	}

	for _, soundtrack := range soundtracks {
		var value int
		err := r.db.QueryRow(
			"SELECT value FROM votes WHERE soundtrack_id = ? AND user_id = ?",
			soundtrack.ID(), viewerID,
		).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read viewer vote: %w", err)
		}
		soundtrack.SetViewerVote(value)
	}

	return nil
}

// loadTracks reads a soundtrack's tracks ordered by order_index (stable on
// insertion order for ties).
func (r *SoundtrackRepository) loadTracks(soundtrackID string) ([]models.Track, error) {
	rows, err := r.db.Query(`
		SELECT id, title, youtube_url, page_start, page_end, order_index
		FROM soundtrack_tracks
		WHERE soundtrack_id = ?
		ORDER BY order_index ASC, rowid ASC
	`, soundtrackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var (
			track     models.Track
			pageStart sql.NullInt64
			pageEnd   sql.NullInt64
		)

		if err := rows.Scan(&track.ID, &track.Title, &track.YouTubeURL, &pageStart, &pageEnd, &track.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}

		if pageStart.Valid {
			start := int(pageStart.Int64)
			track.PageStart = &start
		}
		if pageEnd.Valid {
			end := int(pageEnd.Int64)
			track.PageEnd = &end
		}

		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// insertTracks writes a soundtrack's track rows inside the caller's transaction.
func insertTracks(tx *sql.Tx, soundtrackID string, tracks []models.Track) error {
	for _, track := range tracks {
		trackID := track.ID
		if trackID == "" {
			trackID = shared.GenerateID()
		}

		var pageStart, pageEnd any
		if track.PageStart != nil {
			pageStart = *track.PageStart
		}
		if track.PageEnd != nil {
			pageEnd = *track.PageEnd
		}

		_, err := tx.Exec(`
			INSERT INTO soundtrack_tracks (id, soundtrack_id, title, youtube_url, page_start, page_end, order_index)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, trackID, soundtrackID, track.Title, track.YouTubeURL, pageStart, pageEnd, track.OrderIndex)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	return nil
}

// scanSoundtrack builds a [models.Soundtrack] from any row-shaped scan function.
// The caller attaches tracks separately.
func scanSoundtrack(scan func(...any) error) (*models.Soundtrack, error) {
	var (
		id        string
		sequence  int
		issueID   string
		title     string
		ownerID   string
		ownerName string
		score     int
		upvotes   int
		downvotes int
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := scan(&id, &sequence, &issueID, &title, &ownerID, &ownerName, &score, &upvotes, &downvotes, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan soundtrack: %w", err)
	}

	soundtrack := models.NewSoundtrack(sequence, issueID, title, ownerID, ownerName, nil)
	soundtrack.SetID(id)
	soundtrack.SetTallies(score, upvotes, downvotes)
	soundtrack.SetCreatedAt(createdAt)
	soundtrack.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		soundtrack.SetDeletedAt(&deletedAt.Time)
	}

	return soundtrack, nil
}
