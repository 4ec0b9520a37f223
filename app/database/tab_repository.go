package database

import (
	"database/sql"
	"fmt"
	"time"
)

// PgTabRepository handles database operations for saved tabs
type PgTabRepository struct {
	db *DB
}

var _ TabRepository = (*PgTabRepository)(nil)

// NewTabRepository creates a new tab repository
func NewTabRepository(db *DB) *PgTabRepository {
	return &PgTabRepository{db: db}
}

// Insert stores a captured tab and returns its assigned id. Summary
// columns are left NULL; the enrichment task fills them in later.
func (r *PgTabRepository) Insert(ownerID int, tab NewTab) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO tabs (user_id, url, title, fav_icon_url, content, description, saved_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), COALESCE($7, NOW()))
		RETURNING id
	`, ownerID, tab.URL, tab.Title, tab.FavIconURL, tab.Content, tab.Description, tab.SavedAt).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to insert tab: %w", err)
	}

	return id, nil
}

// UpdateSummary sets the summary and its timestamp in a single statement,
// so a row is never observable with one field and not the other. Returns
// false when the tab no longer exists (deleted while enrichment ran).
func (r *PgTabRepository) UpdateSummary(id string, ownerID int, summary string, generatedAt time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE tabs
		SET summary = $3, summary_generated_at = $4
		WHERE id = $1 AND user_id = $2
	`, id, ownerID, summary, generatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update tab summary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UpdateContent backfills extracted page text for a tab saved without it.
func (r *PgTabRepository) UpdateContent(id string, ownerID int, content string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE tabs
		SET content = $3
		WHERE id = $1 AND user_id = $2
	`, id, ownerID, content)
	if err != nil {
		return false, fmt.Errorf("failed to update tab content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// List returns tabs for an owner ordered by saved_at descending
func (r *PgTabRepository) List(ownerID, limit, offset int) ([]Tab, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, url, title, COALESCE(fav_icon_url, ''),
		       COALESCE(content, ''), COALESCE(description, ''),
		       summary, summary_generated_at, saved_at, created_at
		FROM tabs
		WHERE user_id = $1
		ORDER BY saved_at DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	defer rows.Close()

	return scanTabs(rows)
}

// Count returns the total number of tabs for an owner
func (r *PgTabRepository) Count(ownerID int) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM tabs WHERE user_id = $1", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tabs: %w", err)
	}
	return count, nil
}

// Get returns a single tab, or nil if it does not exist for this owner
func (r *PgTabRepository) Get(id string, ownerID int) (*Tab, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, url, title, COALESCE(fav_icon_url, ''),
		       COALESCE(content, ''), COALESCE(description, ''),
		       summary, summary_generated_at, saved_at, created_at
		FROM tabs
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)

	var tab Tab
	err := row.Scan(
		&tab.ID, &tab.OwnerID, &tab.URL, &tab.Title, &tab.FavIconURL,
		&tab.Content, &tab.Description, &tab.Summary, &tab.SummaryGeneratedAt,
		&tab.SavedAt, &tab.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}

	return &tab, nil
}

// Delete removes a tab. Returns false when no row matched.
func (r *PgTabRepository) Delete(id string, ownerID int) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM tabs WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete tab: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListRange returns tabs saved within [start, end] inclusive, ascending
// by saved_at, for digest generation.
func (r *PgTabRepository) ListRange(ownerID int, start, end time.Time) ([]Tab, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, url, title, COALESCE(fav_icon_url, ''),
		       COALESCE(content, ''), COALESCE(description, ''),
		       summary, summary_generated_at, saved_at, created_at
		FROM tabs
		WHERE user_id = $1 AND saved_at >= $2 AND saved_at <= $3
		ORDER BY saved_at ASC
	`, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs in range: %w", err)
	}
	defer rows.Close()

	return scanTabs(rows)
}

func scanTabs(rows *sql.Rows) ([]Tab, error) {
	var tabs []Tab
	for rows.Next() {
		var tab Tab
		err := rows.Scan(
			&tab.ID, &tab.OwnerID, &tab.URL, &tab.Title, &tab.FavIconURL,
			&tab.Content, &tab.Description, &tab.Summary, &tab.SummaryGeneratedAt,
			&tab.SavedAt, &tab.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tab row: %w", err)
		}
		tabs = append(tabs, tab)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tab rows: %w", err)
	}

	return tabs, nil
}
