package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Card is a deck-log row.
type Card struct {
	ID               string
	Simplified       string
	Traditional      string
	Pinyin           string
	Zhuyin           string
	Definition       string
	ExtraDefinition  string
	Tags             string
	DictionaryDigest string
	CreatedAt        time.Time
}

// InsertCard appends c to the log and returns its id. The id and creation
// time are assigned when empty.
func InsertCard(ctx context.Context, db DBExecutor, c Card) (string, error) {
	if strings.TrimSpace(c.Simplified) == "" {
		return "", fmt.Errorf("card simplified form must be non-empty")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO cards (id, simplified, traditional, pinyin, zhuyin, definition, extra_definition, tags, dictionary_digest, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Simplified, c.Traditional, c.Pinyin, c.Zhuyin, c.Definition, c.ExtraDefinition, c.Tags, c.DictionaryDigest, c.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert card: %w", err)
	}
	return c.ID, nil
}

// CardExists reports whether a card with the same headword and pinyin was
// logged before.
func CardExists(ctx context.Context, db DBExecutor, simplified, traditional, pinyin string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE simplified = ? AND traditional = ? AND pinyin = ?`,
		simplified, traditional, pinyin,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check card: %w", err)
	}
	return n > 0, nil
}

// CountCards returns the number of logged cards.
func CountCards(ctx context.Context, db DBExecutor) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// SavedHeadwords returns every simplified form in the log.
func SavedHeadwords(ctx context.Context, db DBExecutor) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT simplified FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("query headwords: %w", err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out[s] = true
	}
	return out, rows.Err()
}

// RecentCards returns up to limit cards, newest first.
func RecentCards(ctx context.Context, db DBExecutor, limit int) ([]Card, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, simplified, traditional, pinyin, zhuyin, definition, extra_definition, tags, dictionary_digest, created_at
		 FROM cards ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.Simplified, &c.Traditional, &c.Pinyin, &c.Zhuyin,
			&c.Definition, &c.ExtraDefinition, &c.Tags, &c.DictionaryDigest, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetSource returns the id of the source with url, inserting it when
// missing. Concurrent callers racing on the insert all get the same row.
func CreateOrGetSource(ctx context.Context, db DBExecutor, url, title string) (int64, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return 0, fmt.Errorf("source url must be non-empty")
	}

	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		var id int64
		err := db.QueryRowContext(ctx, `SELECT id FROM sources WHERE url = ?`, url).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.ExecContext(ctx, `INSERT INTO sources (url, title) VALUES (?, ?)`, url, title)
		if err != nil {
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}
	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// GetSourceProgress returns how many vocabulary words of a source were handled.
func GetSourceProgress(ctx context.Context, db DBExecutor, sourceID int64) (int, error) {
	var index int
	err := db.QueryRowContext(ctx, `SELECT last_processed_word FROM sources WHERE id = ?`, sourceID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateSourceProgress records how many vocabulary words of a source were handled.
func UpdateSourceProgress(ctx context.Context, db DBExecutor, sourceID int64, index int) error {
	_, err := db.ExecContext(ctx, `UPDATE sources SET last_processed_word = ? WHERE id = ?`, index, sourceID)
	return err
}
