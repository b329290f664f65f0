package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// IssueRepository implements models.Repository[*models.Issue] for local issue records.
//
// Issue records map an external Comic Vine issue id to a locally generated id.
// The lookup-or-create sequence lives in the library service; this repository
// only offers the primitives.
type IssueRepository struct {
	db *sql.DB
}

// NewIssueRepository creates a new IssueRepository with the given database connection
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts a new [models.Issue] into the database with generated ID and sequence
func (r *IssueRepository) Create(issue *models.Issue) error {
	sequence, err := NextSequence(r.db, "issues")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	issue.SetID(id)

	if err := issue.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO issues (id, sequence, comicvine_issue_id, title, cover_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var coverURL any = issue.CoverURL()
	if coverURL == "" {
		coverURL = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		issue.ComicVineID(),
		issue.Title(),
		coverURL,
		issue.CreatedAt(),
		issue.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert issue: %w", err)
	}

	return nil
}

// Get retrieves an issue by ID, excluding soft-deleted issues
func (r *IssueRepository) Get(id string) (*models.Issue, error) {
	query := `
		SELECT id, sequence, comicvine_issue_id, title, cover_url, created_at, updated_at, deleted_at
		FROM issues
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByComicVineID retrieves the issue record for an external catalog id.
//
// When duplicates exist (see the lookup-or-create race note in DESIGN.md) the
// earliest record wins.
func (r *IssueRepository) GetByComicVineID(comicVineID string) (*models.Issue, error) {
	query := `
		SELECT id, sequence, comicvine_issue_id, title, cover_url, created_at, updated_at, deleted_at
		FROM issues
		WHERE comicvine_issue_id = ? AND deleted_at IS NULL
		ORDER BY sequence ASC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, comicVineID))
}

// Update modifies an existing issue in the database
func (r *IssueRepository) Update(issue *models.Issue) error {
	if err := issue.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	issue.SetUpdatedAt(now)

	query := `
		UPDATE issues
		SET title = ?, cover_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, issue.Title(), issue.CoverURL(), now, issue.ID())
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrIssueNotFound, issue.ID())
	}

	return nil
}

// Delete soft-deletes an issue by ID
func (r *IssueRepository) Delete(id string) error {
	query := `
		UPDATE issues
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrIssueNotFound, id)
	}

	return nil
}

// List retrieves all issues matching the given criteria, excluding soft-deleted issues
func (r *IssueRepository) List(criteria map[string]any) ([]*models.Issue, error) {
	query := `
		SELECT id, sequence, comicvine_issue_id, title, cover_url, created_at, updated_at, deleted_at
		FROM issues
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if comicVineID, ok := criteria["comicvine_issue_id"].(string); ok && comicVineID != "" {
		query += " AND comicvine_issue_id = ?"
		args = append(args, comicVineID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows.Scan)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return issues, nil
}

// scanOne scans a single [sql.Row] into a [models.Issue]
func (r *IssueRepository) scanOne(row *sql.Row) (*models.Issue, error) {
	issue, err := scanIssue(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrIssueNotFound
	}
	return issue, err
}

// scanIssue builds a [models.Issue] from any row-shaped scan function.
func scanIssue(scan func(...any) error) (*models.Issue, error) {
	var (
		id          string
		sequence    int
		comicVineID string
		title       string
		coverURL    sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := scan(&id, &sequence, &comicVineID, &title, &coverURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	issue := models.NewIssue(sequence, comicVineID, title, coverURL.String)
	issue.SetID(id)
	issue.SetCreatedAt(createdAt)
	issue.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		issue.SetDeletedAt(&deletedAt.Time)
	}

	return issue, nil
}
