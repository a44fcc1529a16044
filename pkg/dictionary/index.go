package dictionary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/japaniel/zhcards/pkg/workerpool"
)

// Transcriber is the phonetic service an Index hydrates results with and
// classifies queries against.
type Transcriber interface {
	IsPhonetic(s string) bool
	IsScript(s string) bool
	NumberedToAccented(numbered string) string
	NumberedToZhuyin(numbered string) string
}

// accentedReader is implemented by transcribers that can rewrite tone-marked
// pinyin into the numbered form stored in the dictionary.
type accentedReader interface {
	AccentedToNumbered(s string) (string, bool)
}

// QueryKind is the result of classifying a query.
type QueryKind int

const (
	Phonetic QueryKind = iota + 1
	Script
)

func (k QueryKind) String() string {
	switch k {
	case Phonetic:
		return "phonetic"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

// ErrUnrecognizedQuery is matched by queries that are neither pinyin nor Chinese text.
var ErrUnrecognizedQuery = errors.New("query is neither pinyin nor Chinese characters")

// QueryError carries the query that could not be classified.
type QueryError struct {
	Query string
}

func (e *QueryError) Error() string { return fmt.Sprintf("%s: %q", ErrUnrecognizedQuery, e.Query) }

func (e *QueryError) Unwrap() error { return ErrUnrecognizedQuery }

// Classify decides whether s is pinyin or Chinese characters. Pinyin is
// tested first.
func Classify(s string, t Transcriber) (QueryKind, error) {
	switch {
	case t.IsPhonetic(s):
		return Phonetic, nil
	case t.IsScript(s):
		return Script, nil
	}
	return 0, &QueryError{Query: s}
}

const (
	defaultParallelThreshold = 256
)

// Index is an immutable, order-preserving collection of dictionary entries.
// It is safe for concurrent use.
type Index struct {
	entries   []RawEntry
	t         Transcriber
	workers   int
	threshold int
}

// Option configures an Index.
type Option func(*Index)

// WithWorkers sets how many goroutines hydrate large result sets.
func WithWorkers(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// WithParallelThreshold sets the result count at which hydration is fanned
// out to workers.
func WithParallelThreshold(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.threshold = n
		}
	}
}

// NewIndex builds an index over entries, keeping their order. The slice is
// copied.
func NewIndex(entries []RawEntry, t Transcriber, opts ...Option) *Index {
	idx := &Index{
		entries:   slices.Clone(entries),
		t:         t,
		workers:   4,
		threshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Headwords yields every non-empty simplified and traditional form. A form
// shared by both scripts is yielded once per entry.
func (idx *Index) Headwords() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range idx.entries {
			if e.Simplified != "" && !yield(e.Simplified) {
				return
			}
			if e.Traditional != "" && e.Traditional != e.Simplified && !yield(e.Traditional) {
				return
			}
		}
	}
}

// FindByPhonetic returns every entry whose numbered pinyin matches query,
// in dictionary order.
func (idx *Index) FindByPhonetic(query string) []HydratedEntry {
	var matched []RawEntry
	for _, e := range idx.entries {
		if MatchNumbered(e.Numbered, query) {
			matched = append(matched, e)
		}
	}
	return idx.hydrateAll(matched)
}

// FindByScript returns every entry whose simplified or traditional form
// equals query exactly, in dictionary order.
func (idx *Index) FindByScript(query string) []HydratedEntry {
	var matched []RawEntry
	for _, e := range idx.entries {
		if e.Simplified == query || e.Traditional == query {
			matched = append(matched, e)
		}
	}
	return idx.hydrateAll(matched)
}

// FindWords classifies and normalizes query, then dispatches to
// FindByPhonetic or FindByScript. An empty result is not an error.
func (idx *Index) FindWords(query string) ([]HydratedEntry, error) {
	q := NormalizeQuery(query)
	kind, err := Classify(q, idx.t)
	if err != nil {
		return nil, err
	}
	if kind == Script {
		return idx.FindByScript(q), nil
	}
	return idx.FindByPhonetic(idx.phoneticQuery(q)), nil
}

// phoneticQuery rewrites tone-marked or v-spelled pinyin into the numbered
// form. Plain numbered or toneless input is returned as is.
func (idx *Index) phoneticQuery(q string) string {
	q = strings.NewReplacer("'", " ", "’", " ").Replace(q)
	ar, ok := idx.t.(accentedReader)
	if !ok || !needsRewrite(q) {
		return q
	}
	if numbered, ok := ar.AccentedToNumbered(q); ok {
		return numbered
	}
	return q
}

func needsRewrite(q string) bool {
	return strings.ContainsFunc(q, func(r rune) bool {
		return r > unicode.MaxASCII || r == 'v' || r == 'V'
	})
}

// NormalizeQuery folds full-width forms, composes combining marks and trims
// surrounding space.
func NormalizeQuery(q string) string {
	q = width.Fold.String(q)
	q = norm.NFC.String(q)
	return strings.TrimSpace(q)
}

// Hydrate renders e with accented pinyin and zhuyin.
func Hydrate(e RawEntry, t Transcriber) HydratedEntry {
	return HydratedEntry{
		Simplified:  e.Simplified,
		Traditional: e.Traditional,
		Pinyin:      t.NumberedToAccented(e.Numbered),
		Zhuyin:      t.NumberedToZhuyin(e.Numbered),
		Glosses:     slices.Clone(e.Glosses),
	}
}

func (idx *Index) hydrateAll(matched []RawEntry) []HydratedEntry {
	if len(matched) == 0 {
		return nil
	}
	hydrate := func(e RawEntry) HydratedEntry { return Hydrate(e, idx.t) }
	if idx.workers > 1 && len(matched) >= idx.threshold {
		out, err := workerpool.Map(context.Background(), idx.workers, matched, hydrate)
		if err == nil {
			return out
		}
	}
	out := make([]HydratedEntry, len(matched))
	for i, e := range matched {
		out[i] = hydrate(e)
	}
	return out
}
