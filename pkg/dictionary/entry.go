// Package dictionary parses CC-CEDICT and answers pinyin and character
// lookups against it.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"
)

// RawEntry is one parsed CC-CEDICT line. Pinyin stays in the compact
// numbered form until an entry is returned from a lookup.
type RawEntry struct {
	Simplified  string
	Traditional string
	// Numbered holds space-separated syllables with tone digits, e.g. "ni3 hao3".
	Numbered string
	Glosses  []string
}

// HydratedEntry is a lookup result with human-facing pinyin notations.
type HydratedEntry struct {
	Simplified  string
	Traditional string
	Pinyin      string // accented, e.g. "nǐ hǎo"
	Zhuyin      string
	Glosses     []string
}

// ErrMalformedEntryLine is matched by every line that fails the CC-CEDICT grammar.
var ErrMalformedEntryLine = errors.New("malformed dictionary line")

// MalformedLineError describes a rejected dictionary line.
type MalformedLineError struct {
	Line   int // 1-based; 0 when parsed outside a file
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d (%s): %q", ErrMalformedEntryLine, e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s (%s): %q", ErrMalformedEntryLine, e.Reason, e.Text)
}

func (e *MalformedLineError) Unwrap() error { return ErrMalformedEntryLine }

// entryRE matches: traditional simplified [pin1 yin1] /gloss/gloss/
var entryRE = regexp.MustCompile(`^(\S*)\s*(\S*)\s*\[(.*?)\]\s*/(.*)/$`)

const maxLineSize = 1 << 20

// ParseLine parses a single CC-CEDICT entry line.
func ParseLine(line string) (RawEntry, error) {
	line = strings.TrimRight(line, "\r\n")
	m := entryRE.FindStringSubmatch(line)
	if m == nil {
		return RawEntry{}, &MalformedLineError{Text: line, Reason: "does not match entry grammar"}
	}
	traditional, simplified, numbered := m[1], m[2], strings.TrimSpace(m[3])
	if traditional == "" && simplified == "" {
		return RawEntry{}, &MalformedLineError{Text: line, Reason: "no headword"}
	}
	if numbered == "" {
		return RawEntry{}, &MalformedLineError{Text: line, Reason: "empty pinyin"}
	}

	var glosses []string
	for _, g := range strings.Split(m[4], "/") {
		if g = strings.TrimSpace(g); g != "" {
			glosses = append(glosses, g)
		}
	}
	if len(glosses) == 0 {
		return RawEntry{}, &MalformedLineError{Text: line, Reason: "no glosses"}
	}

	return RawEntry{
		Simplified:  simplified,
		Traditional: traditional,
		Numbered:    numbered,
		Glosses:     glosses,
	}, nil
}

// lineKind classifies lines that carry no entry.
type lineKind int

const (
	lineEntry lineKind = iota
	lineComment
	lineBlank
)

func classifyLine(line string) lineKind {
	switch {
	case strings.TrimSpace(line) == "":
		return lineBlank
	case strings.HasPrefix(line, "#"):
		return lineComment
	default:
		return lineEntry
	}
}

// Entries lazily parses CC-CEDICT text from r. Comment and blank lines are
// skipped. A malformed line yields a *MalformedLineError and iteration
// continues; a read failure is yielded last. The sequence is single-use.
func Entries(r io.Reader) iter.Seq2[RawEntry, error] {
	return scanEntries(r, nil)
}

func scanEntries(r io.Reader, stats *Stats) iter.Seq2[RawEntry, error] {
	return func(yield func(RawEntry, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		n := 0
		for sc.Scan() {
			n++
			line := sc.Text()
			if stats != nil {
				stats.TotalLines++
			}
			switch classifyLine(line) {
			case lineComment:
				if stats != nil {
					stats.CommentLines++
				}
				continue
			case lineBlank:
				if stats != nil {
					stats.BlankLines++
				}
				continue
			}

			entry, err := ParseLine(line)
			if err != nil {
				var mle *MalformedLineError
				if errors.As(err, &mle) {
					mle.Line = n
				}
				if stats != nil {
					stats.Malformed++
				}
				if !yield(RawEntry{}, err) {
					return
				}
				continue
			}
			if stats != nil {
				stats.Parsed++
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(RawEntry{}, fmt.Errorf("read dictionary: %w", err))
		}
	}
}
