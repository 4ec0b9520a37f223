package database

import (
	"database/sql"
	"fmt"
	"time"
)

// PgDigestRepository handles database operations for digests
type PgDigestRepository struct {
	db *DB
}

var _ DigestRepository = (*PgDigestRepository)(nil)

// NewDigestRepository creates a new digest repository
func NewDigestRepository(db *DB) *PgDigestRepository {
	return &PgDigestRepository{db: db}
}

// Insert stores a generated digest and returns the full row
func (r *PgDigestRepository) Insert(ownerID int, startDate, endDate time.Time, content string, tabCount int) (*Digest, error) {
	var digest Digest
	err := r.db.QueryRow(`
		INSERT INTO digests (user_id, start_date, end_date, content, tab_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, start_date, end_date, content, tab_count, created_at
	`, ownerID, startDate, endDate, content, tabCount).Scan(
		&digest.ID, &digest.OwnerID, &digest.StartDate, &digest.EndDate,
		&digest.Content, &digest.TabCount, &digest.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert digest: %w", err)
	}

	return &digest, nil
}

// List returns digest summaries (no content) newest first
func (r *PgDigestRepository) List(ownerID int) ([]Digest, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, start_date, end_date, tab_count, created_at
		FROM digests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	defer rows.Close()

	var digests []Digest
	for rows.Next() {
		var digest Digest
		err := rows.Scan(
			&digest.ID, &digest.OwnerID, &digest.StartDate, &digest.EndDate,
			&digest.TabCount, &digest.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan digest row: %w", err)
		}
		digests = append(digests, digest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating digest rows: %w", err)
	}

	return digests, nil
}

// Get returns a full digest, or nil if it does not exist for this owner
func (r *PgDigestRepository) Get(id string, ownerID int) (*Digest, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, start_date, end_date, content, tab_count, created_at
		FROM digests
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)

	var digest Digest
	err := row.Scan(
		&digest.ID, &digest.OwnerID, &digest.StartDate, &digest.EndDate,
		&digest.Content, &digest.TabCount, &digest.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get digest: %w", err)
	}

	return &digest, nil
}

// Delete removes a digest. Returns false when no row matched.
func (r *PgDigestRepository) Delete(id string, ownerID int) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM digests WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete digest: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
