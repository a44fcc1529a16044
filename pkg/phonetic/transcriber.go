// Package phonetic converts between pinyin notations and recognizes pinyin
// and Chinese script input.
package phonetic

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Transcriber converts CC-CEDICT numbered pinyin into accented pinyin and
// zhuyin, and recognizes pinyin and Chinese script input. It holds no
// mutable state and is safe for concurrent use.
type Transcriber struct {
	table     SyllableTable
	syllables map[string]struct{}
	maxLen    int
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithTable replaces the zhuyin syllable table.
func WithTable(t SyllableTable) Option {
	return func(tr *Transcriber) { tr.table = t }
}

// New returns a Transcriber that consults Interjections before the
// standard syllable table.
func New(opts ...Option) *Transcriber {
	t := &Transcriber{
		table:     Chain(Interjections, Standard()),
		syllables: make(map[string]struct{}, len(standardSyllables)),
	}
	for syl := range standardSyllables {
		t.syllables[syl] = struct{}{}
		if n := len([]rune(syl)); n > t.maxLen {
			t.maxLen = n
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// known reports whether the zhuyin table can spell syllable.
func (t *Transcriber) known(syllable string) bool {
	_, ok := t.table.Lookup(syllable)
	return ok
}

// isSyllable reports whether a lowercase, toneless syllable is standard
// Mandarin or known to the zhuyin table, which adds the interjections.
func (t *Transcriber) isSyllable(s string) bool {
	if _, ok := t.syllables[s]; ok {
		return true
	}
	return t.known(s)
}

// parseChunk splits a space-free run of letters into syllables, each
// optionally followed by a tone digit. It prefers longer syllables and
// backtracks when the remainder does not parse. Syllables keep the case
// they were written in.
func (t *Transcriber) parseChunk(letters []rune, marks []int) ([]string, bool) {
	lower := make([]rune, len(letters))
	for i, r := range letters {
		lower[i] = unicode.ToLower(r)
	}
	var out []string
	var walk func(pos int) bool
	walk = func(pos int) bool {
		if pos == len(letters) {
			return true
		}
		for n := min(t.maxLen, len(letters)-pos); n > 0; n-- {
			if !t.isSyllable(string(lower[pos : pos+n])) {
				continue
			}
			cand := string(letters[pos : pos+n])
			end := pos + n
			tone := 0
			for _, m := range marks[pos:end] {
				if m != 0 {
					tone = m
				}
			}
			if end < len(letters) && unicode.IsDigit(letters[end]) {
				d := letters[end] - '0'
				if d < 1 || d > 5 {
					continue
				}
				tone = int(d)
				end++
			}
			if tone != 0 {
				cand += string(rune('0' + tone))
			}
			out = append(out, cand)
			if walk(end) {
				return true
			}
			out = out[:len(out)-1]
		}
		return false
	}
	if !walk(0) {
		return nil, false
	}
	return out, true
}

// IsPhonetic reports whether s reads as pinyin: numbered, accented or
// toneless syllables, with or without separating spaces.
func (t *Transcriber) IsPhonetic(s string) bool {
	chunks := splitChunks(s)
	if len(chunks) == 0 {
		return false
	}
	for _, chunk := range chunks {
		letters, marks := stripMarks(chunk)
		if _, ok := t.parseChunk(letters, marks); !ok {
			return false
		}
	}
	return true
}

// IsScript reports whether s is Chinese text: at least one Han character,
// possibly mixed with Latin letters, digits and CJK punctuation as in
// CC-CEDICT headwords like "卡拉OK".
func (t *Transcriber) IsScript(s string) bool {
	hasHan := false
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r):
			hasHan = true
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		case r == '·' || r == '・' || r == '，' || r == '〇':
		default:
			return false
		}
	}
	return hasHan
}

// HasChinese reports whether s contains at least one Han character.
func HasChinese(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return unicode.Is(unicode.Han, r) }) >= 0
}

// HanziToNumbered transliterates Chinese text into numbered pinyin, one
// syllable per character. Neutral tones carry no digit.
func (t *Transcriber) HanziToNumbered(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone3
	return strings.Join(pinyin.LazyPinyin(text, args), " ")
}
