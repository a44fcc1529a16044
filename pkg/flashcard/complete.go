package flashcard

import (
	"strings"

	"github.com/japaniel/zhcards/pkg/dictionary"
)

// Finder looks up entries by exact characters.
type Finder interface {
	FindByScript(text string) []dictionary.HydratedEntry
}

// Complete fills a card's empty pinyin, zhuyin and definition from the
// dictionary. When several entries share the characters, one whose
// traditional form or pinyin agrees with the card is preferred, then the
// first. It reports whether the card changed.
func Complete(c Card, f Finder) (Card, bool) {
	if c.Pinyin != "" && c.Zhuyin != "" && c.Definition != "" {
		return c, false
	}
	matches := f.FindByScript(c.Simplified)
	if len(matches) == 0 {
		return c, false
	}
	best := matches[0]
	for _, m := range matches {
		if (c.Traditional != "" && m.Traditional == c.Traditional) || (c.Pinyin != "" && m.Pinyin == c.Pinyin) {
			best = m
			break
		}
	}

	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&c.Pinyin, best.Pinyin)
	fill(&c.Zhuyin, best.Zhuyin)
	fill(&c.Definition, strings.Join(best.Glosses, glossSeparator))
	if c.Traditional == "" && c.Pinyin == best.Pinyin {
		fill(&c.Traditional, traditionalOrBlank(best.Simplified, best.Traditional))
	}
	return c, changed
}
