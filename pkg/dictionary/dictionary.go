package dictionary

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"
)

// ErrSourceUnavailable is matched when the dictionary file cannot be read or
// fetched.
var ErrSourceUnavailable = errors.New("dictionary source unavailable")

// Stats summarizes a dictionary load.
type Stats struct {
	TotalLines   int
	CommentLines int
	BlankLines   int
	Parsed       int
	Malformed    int
	// Digest is the hex BLAKE3-256 of the file bytes, recorded with saved
	// cards so a deck can be traced to the dictionary release it came from.
	Digest string
}

// maxMalformedWarnings bounds per-line warnings; the rest are summarized.
const maxMalformedWarnings = 10

// Load parses the dictionary file at path. Malformed lines are skipped and
// counted; a read failure aborts the load so no partial index is built.
func Load(path string, logger *slog.Logger) ([]RawEntry, Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	entries, stats, err := Read(f, logger)
	if err != nil {
		return nil, stats, err
	}
	logger.Info("dictionary loaded",
		"path", path,
		"entries", stats.Parsed,
		"malformed", stats.Malformed,
		"lines", stats.TotalLines,
		"digest", stats.Digest,
	)
	return entries, stats, nil
}

// Read parses CC-CEDICT text from r and hashes it as it goes.
func Read(r io.Reader, logger *slog.Logger) ([]RawEntry, Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := blake3.New()
	var stats Stats
	var entries []RawEntry
	for e, err := range scanEntries(io.TeeReader(r, h), &stats) {
		if err != nil {
			var mle *MalformedLineError
			if !errors.As(err, &mle) {
				return nil, stats, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
			}
			if stats.Malformed <= maxMalformedWarnings {
				logger.Warn("skipping malformed dictionary line", "line", mle.Line, "reason", mle.Reason)
			}
			continue
		}
		entries = append(entries, e)
	}
	if stats.Malformed > maxMalformedWarnings {
		logger.Warn("additional malformed dictionary lines skipped", "count", stats.Malformed-maxMalformedWarnings)
	}
	stats.Digest = hex.EncodeToString(h.Sum(nil))
	if len(entries) == 0 {
		return nil, stats, fmt.Errorf("%w: no entries parsed", ErrSourceUnavailable)
	}
	return entries, stats, nil
}

// Open makes sure the dictionary exists locally, downloading it from src.URL
// when missing, and builds an index over it.
func Open(ctx context.Context, src Source, t Transcriber, opts ...Option) (*Index, Stats, error) {
	if err := src.Ensure(ctx); err != nil {
		return nil, Stats{}, err
	}
	entries, stats, err := Load(src.Path, src.Logger)
	if err != nil {
		return nil, stats, err
	}
	return NewIndex(entries, t, opts...), stats, nil
}
