package flashcard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Store persists saved cards.
type Store interface {
	Save(ctx context.Context, c Card) error
}

// CSVStore appends cards to a CSV file without a header row, the layout
// Anki's importer expects.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store appending to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the file the store writes to.
func (s *CSVStore) Path() string { return s.path }

// Save appends c as one row, creating the file when missing.
func (s *CSVStore) Save(ctx context.Context, c Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create card directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open card file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(c.Record()); err != nil {
		f.Close()
		return fmt.Errorf("write card: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write card: %w", err)
	}
	return f.Close()
}

// legacyColumns is the row width of decks written before stroke columns
// existed: simplified, traditional, pinyin, zhuyin, definition,
// extra_definition, two related-word columns and tags.
const legacyColumns = 9

// ReadCards parses a cards CSV. An optional header row is skipped and rows
// in the legacy nine-column layout are accepted.
func ReadCards(r io.Reader) ([]Card, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var cards []Card
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return cards, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read cards: %w", err)
		}
		line++
		if line == 1 && len(rec) > 0 && rec[0] == Columns[0] {
			continue
		}
		c, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		cards = append(cards, c)
	}
}

func fromRecord(rec []string) (Card, error) {
	switch len(rec) {
	case len(Columns):
		return Card{
			Simplified:        rec[0],
			Traditional:       rec[1],
			Pinyin:            rec[2],
			Zhuyin:            rec[3],
			SimplifiedStroke:  rec[4],
			TraditionalStroke: rec[5],
			Definition:        rec[6],
			ExtraDefinition:   rec[7],
			SamePronunciation: rec[8],
			SameDefinition:    rec[9],
			Tags:              rec[10],
		}, nil
	case legacyColumns:
		return Card{
			Simplified:        rec[0],
			Traditional:       rec[1],
			Pinyin:            rec[2],
			Zhuyin:            rec[3],
			Definition:        rec[4],
			ExtraDefinition:   rec[5],
			SamePronunciation: rec[6],
			SameDefinition:    rec[7],
			Tags:              rec[8],
		}, nil
	default:
		return Card{}, fmt.Errorf("expected %d or %d columns, got %d", len(Columns), legacyColumns, len(rec))
	}
}
