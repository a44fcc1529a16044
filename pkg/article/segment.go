package article

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences cuts text after Chinese and ASCII sentence punctuation and
// newlines. Delimiters stay with their sentence; blank pieces are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	emit := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '。', '！', '？', '；', '!', '?', '\n':
			emit()
		}
	}
	emit()
	return sentences
}

// Segmenter splits Chinese text into dictionary words by forward maximum
// matching.
type Segmenter struct {
	words  map[string]struct{}
	maxLen int
}

// NewSegmenter builds a segmenter over the given headwords.
func NewSegmenter(headwords iter.Seq[string]) *Segmenter {
	s := &Segmenter{words: make(map[string]struct{})}
	for w := range headwords {
		if w == "" {
			continue
		}
		s.words[w] = struct{}{}
		if n := utf8.RuneCountInString(w); n > s.maxLen {
			s.maxLen = n
		}
	}
	return s
}

// Segment returns the words of sentence in order. At each position the
// longest dictionary word wins; runs of Han characters the dictionary does
// not know come out one character at a time, and other runes are skipped.
func (s *Segmenter) Segment(sentence string) []string {
	runes := []rune(sentence)
	var out []string
	for i := 0; i < len(runes); {
		if !unicode.Is(unicode.Han, runes[i]) {
			i++
			continue
		}
		n := min(s.maxLen, len(runes)-i)
		for ; n > 1; n-- {
			if _, ok := s.words[string(runes[i:i+n])]; ok {
				break
			}
		}
		if n < 1 {
			n = 1
		}
		out = append(out, string(runes[i:i+n]))
		i += n
	}
	return out
}
