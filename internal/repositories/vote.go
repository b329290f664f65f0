package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// voteRetries bounds how many times a vote transaction is re-run when the
// store reports a concurrent conflicting write.
const voteRetries = 3

// VoteRepository applies the toggle-or-switch vote protocol.
//
// Every tally mutation on a soundtrack goes through [VoteRepository.Apply];
// direct increments elsewhere are disallowed so that
// votes_count == upvotes - downvotes holds after every commit.
type VoteRepository struct {
	db *sql.DB
}

// NewVoteRepository creates a new VoteRepository with the given database connection
func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Apply records user's vote with direction +1 or -1 on a soundtrack inside a
// single transaction, updating the denormalized tallies atomically with the
// vote-record change.
//
// Re-clicking the same direction removes the vote; the opposite direction
// switches it. The whole operation is all-or-nothing: it fails with
// [shared.ErrSoundtrackNotFound] if the soundtrack is gone at read time, or
// [shared.ErrTransactionConflict] once conflict retries are exhausted.
func (r *VoteRepository) Apply(soundtrackID, userID string, direction int) error {
	if direction != 1 && direction != -1 {
		return fmt.Errorf("%w: vote direction must be +1 or -1, got %d", shared.ErrInvalidArgument, direction)
	}
	if userID == "" {
		return shared.ErrNotAuthenticated
	}

	var err error
	for attempt := 0; attempt < voteRetries; attempt++ {
		err = r.applyOnce(soundtrackID, userID, direction)
		if !isConflict(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}

	return fmt.Errorf("%w: %v", shared.ErrTransactionConflict, err)
}

// Get returns the user's current vote value for a soundtrack: +1, -1, or 0
// when no vote record exists.
func (r *VoteRepository) Get(soundtrackID, userID string) (int, error) {
	var value int
	err := r.db.QueryRow(
		"SELECT value FROM votes WHERE soundtrack_id = ? AND user_id = ?",
		soundtrackID, userID,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read vote: %w", err)
	}
	return value, nil
}

func (r *VoteRepository) applyOnce(soundtrackID, userID string, direction int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var score, upvotes, downvotes int
	err = tx.QueryRow(`
		SELECT votes_count, upvotes, downvotes
		FROM soundtracks
		WHERE id = ? AND deleted_at IS NULL
	`, soundtrackID).Scan(&score, &upvotes, &downvotes)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", shared.ErrSoundtrackNotFound, soundtrackID)
	}
	if err != nil {
		return fmt.Errorf("failed to read tallies: %w", err)
	}

	var existing int
	hasVote := true
	err = tx.QueryRow(
		"SELECT value FROM votes WHERE soundtrack_id = ? AND user_id = ?",
		soundtrackID, userID,
	).Scan(&existing)
	if err == sql.ErrNoRows {
		hasVote = false
	} else if err != nil {
		return fmt.Errorf("failed to read vote: %w", err)
	}

	switch {
	case !hasVote:
		_, err = tx.Exec(
			"INSERT INTO votes (soundtrack_id, user_id, value, created_at) VALUES (?, ?, ?, ?)",
			soundtrackID, userID, direction, time.Now(),
		)
		score += direction
		if direction == 1 {
			upvotes++
		} else {
			downvotes++
		}

	case existing == direction:
		// Same direction again: un-vote.
		_, err = tx.Exec(
			"DELETE FROM votes WHERE soundtrack_id = ? AND user_id = ?",
			soundtrackID, userID,
		)
		score -= direction
		if direction == 1 {
			upvotes--
		} else {
			downvotes--
		}

	default:
		// Opposite direction: switch, removing the old contribution and
		// adding the new one.
		_, err = tx.Exec(
			"UPDATE votes SET value = ? WHERE soundtrack_id = ? AND user_id = ?",
			direction, soundtrackID, userID,
		)
		score += 2 * direction
		if direction == 1 {
			upvotes++
			downvotes--
		} else {
			downvotes++
			upvotes--
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write vote record: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE soundtracks
		SET votes_count = ?, upvotes = ?, downvotes = ?
		WHERE id = ?
	`, score, upvotes, downvotes, soundtrackID)
	if err != nil {
		return fmt.Errorf("failed to write tallies: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}

	return nil
}

// isConflict reports whether err is SQLite telling us another writer held the
// database.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}
