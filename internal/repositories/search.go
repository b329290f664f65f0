package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// defaultRecentLimit caps the recent-search list when no limit is configured.
const defaultRecentLimit = 8

// SearchRepository persists the bounded recent-search affordance.
//
// Queries are deduplicated by exact text; re-searching moves an entry back to
// the front. The list never grows beyond the configured limit.
type SearchRepository struct {
	db    *sql.DB
	limit int
}

// NewSearchRepository creates a SearchRepository keeping at most limit entries.
func NewSearchRepository(db *sql.DB, limit int) *SearchRepository {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return &SearchRepository{db: db, limit: limit}
}

// Record stores query as the most recent search and prunes entries beyond
// the limit.
func (r *SearchRepository) Record(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO recent_searches (query, searched_at) VALUES (?, ?)",
		query, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM recent_searches
		WHERE query NOT IN (
			SELECT query FROM recent_searches ORDER BY searched_at DESC LIMIT ?
		)
	`, r.limit); err != nil {
		return fmt.Errorf("failed to prune searches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search: %w", err)
	}

	return nil
}

// Recent returns up to limit stored queries, most recent first.
func (r *SearchRepository) Recent(limit int) ([]string, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}
	return r.collect("SELECT query FROM recent_searches ORDER BY searched_at DESC LIMIT ?", limit)
}

// Matching returns stored queries containing q (case-insensitive), most
// recent first.
func (r *SearchRepository) Matching(q string, limit int) ([]string, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	return r.collect(
		"SELECT query FROM recent_searches WHERE LOWER(query) LIKE ? ORDER BY searched_at DESC LIMIT ?",
		pattern, limit,
	)
}

func (r *SearchRepository) collect(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		queries = append(queries, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return queries, nil
}
