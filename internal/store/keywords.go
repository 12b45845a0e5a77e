package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// InsertKeywordIgnore inserts a keyword if absent (case-insensitive) and
// reports whether a row was actually added.
func InsertKeywordIgnore(ctx context.Context, db *sql.DB, keyword string) (added bool, err error) {
	_, err = db.ExecContext(ctx, `
INSERT OR IGNORE INTO keywords (keyword, used, created_at)
VALUES (?, 0, ?);`,
		keyword, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert keyword: %w", err)
	}

	// INSERT OR IGNORE doesn't report rows affected reliably across
	// drivers; SELECT changes() does.
	var changes int
	if e := db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

// TakeKeywords returns up to n unused keywords without side effects.
func TakeKeywords(ctx context.Context, db *sql.DB, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx, `
SELECT keyword FROM keywords WHERE used = 0 ORDER BY created_at LIMIT ?;`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// ClaimKeyword atomically marks a keyword used, conditioned on it still
// being unused. Returns false when another overlapping run claimed it
// first; a plain find-then-update here would be a race.
func ClaimKeyword(ctx context.Context, db *sql.DB, keyword string) (bool, error) {
	res, err := db.ExecContext(ctx, `
UPDATE keywords SET used = 1, used_at = ?
WHERE keyword = ? AND used = 0;`,
		time.Now().UTC().Format(time.RFC3339), keyword)
	if err != nil {
		return false, fmt.Errorf("claim keyword: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func CountAvailableKeywords(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM keywords WHERE used = 0;`).Scan(&n)
	return n, err
}

// RecentlyUsedKeywords lists the most recently claimed terms, newest
// first, for the generator's avoid list.
func RecentlyUsedKeywords(ctx context.Context, db *sql.DB, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := db.QueryContext(ctx, `
SELECT keyword FROM keywords WHERE used = 1 ORDER BY used_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// AllKeywords returns every known term lowercased, for case-insensitive
// dedup during replenish.
func AllKeywords(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT lower(keyword) FROM keywords;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out[k] = true
	}
	return out, rows.Err()
}

// ListKeywords is used by the operator CLI.
func ListKeywords(ctx context.Context, db *sql.DB, usedOnly bool) ([]domain.Keyword, error) {
	q := `SELECT keyword, used, used_at, created_at FROM keywords ORDER BY created_at;`
	if usedOnly {
		q = `SELECT keyword, used, used_at, created_at FROM keywords WHERE used = 1 ORDER BY used_at DESC;`
	}
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Keyword
	for rows.Next() {
		var k domain.Keyword
		var used int
		var usedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&k.Keyword, &used, &usedAt, &createdAt); err != nil {
			return nil, err
		}
		k.Used = used != 0
		if usedAt.Valid {
			if t, err := time.Parse(time.RFC3339, usedAt.String); err == nil {
				k.UsedAt = &t
			}
		}
		k.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, k)
	}
	return out, rows.Err()
}
