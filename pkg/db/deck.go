package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/japaniel/zhcards/pkg/flashcard"
)

// Deck logs saved flashcards, stamping each with the digest of the
// dictionary that produced it.
type Deck struct {
	db     *sql.DB
	digest string
}

// NewDeck wraps an opened deck database.
func NewDeck(db *sql.DB, digest string) *Deck {
	return &Deck{db: db, digest: digest}
}

func (d *Deck) row(c flashcard.Card) Card {
	return Card{
		Simplified:       c.Simplified,
		Traditional:      c.Traditional,
		Pinyin:           c.Pinyin,
		Zhuyin:           c.Zhuyin,
		Definition:       c.Definition,
		ExtraDefinition:  c.ExtraDefinition,
		Tags:             c.Tags,
		DictionaryDigest: d.digest,
	}
}

// Save appends c to the log.
func (d *Deck) Save(ctx context.Context, c flashcard.Card) error {
	_, err := InsertCard(ctx, d.db, d.row(c))
	return err
}

// Exists reports whether a card for the same word was saved before.
func (d *Deck) Exists(ctx context.Context, c flashcard.Card) (bool, error) {
	return CardExists(ctx, d.db, c.Simplified, c.Traditional, c.Pinyin)
}

// Seen returns the simplified forms already in the deck.
func (d *Deck) Seen(ctx context.Context) (map[string]bool, error) {
	return SavedHeadwords(ctx, d.db)
}

// Count returns the number of logged cards.
func (d *Deck) Count(ctx context.Context) (int, error) {
	return CountCards(ctx, d.db)
}

// Recent returns up to limit logged cards, newest first.
func (d *Deck) Recent(ctx context.Context, limit int) ([]Card, error) {
	return RecentCards(ctx, d.db, limit)
}

// ImportResult summarizes an import.
type ImportResult struct {
	Read       int
	Inserted   int
	Duplicates int
	Completed  int
}

// ImportCSV loads a cards CSV into the log in batched transactions. Rows
// already logged, or repeated within the file, are skipped. When complete is
// non-nil it may fill missing fields and reports whether it did.
func (d *Deck) ImportCSV(ctx context.Context, r io.Reader, complete func(flashcard.Card) (flashcard.Card, bool)) (ImportResult, error) {
	cards, err := flashcard.ReadCards(r)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Read: len(cards)}

	type key struct{ s, t, p string }
	seen := make(map[key]bool)

	bw := NewBatchWriter(d.db, 100, 0)
	now := time.Now().UTC()
	for _, c := range cards {
		if complete != nil {
			var changed bool
			if c, changed = complete(c); changed {
				res.Completed++
			}
		}
		k := key{c.Simplified, c.Traditional, c.Pinyin}
		if seen[k] {
			res.Duplicates++
			continue
		}
		seen[k] = true
		exists, err := d.Exists(ctx, c)
		if err != nil {
			_ = bw.Close()
			return res, err
		}
		if exists {
			res.Duplicates++
			continue
		}

		row := d.row(c)
		row.CreatedAt = now
		if err := bw.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			_, err := InsertCard(ctx, tx, row)
			return err
		}); err != nil {
			_ = bw.Close()
			return res, err
		}
	}
	if err := bw.Close(); err != nil {
		res.Inserted = int(bw.Committed())
		return res, fmt.Errorf("import cards: %w", err)
	}
	res.Inserted = int(bw.Committed())
	return res, nil
}
