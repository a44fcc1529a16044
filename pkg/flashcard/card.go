// Package flashcard turns dictionary entries into Anki-importable cards.
package flashcard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/japaniel/zhcards/pkg/dictionary"
)

// Card is one flashcard row. Field order matches the CSV column order.
type Card struct {
	Simplified        string
	Traditional       string // empty when identical to Simplified
	Pinyin            string
	Zhuyin            string
	SimplifiedStroke  string
	TraditionalStroke string
	Definition        string
	ExtraDefinition   string
	SamePronunciation string
	SameDefinition    string
	Tags              string
}

// Columns names the CSV columns in order.
var Columns = []string{
	"simplified",
	"traditional",
	"pinyin",
	"zhuyin",
	"simplified_stroke",
	"traditional_stroke",
	"definition",
	"extra_definition",
	"words_with_same_pronunciation",
	"words_with_same_definition",
	"tags",
}

const glossSeparator = "; "

// Record returns the card as a CSV row.
func (c Card) Record() []string {
	return []string{
		c.Simplified,
		c.Traditional,
		c.Pinyin,
		c.Zhuyin,
		c.SimplifiedStroke,
		c.TraditionalStroke,
		c.Definition,
		c.ExtraDefinition,
		c.SamePronunciation,
		c.SameDefinition,
		c.Tags,
	}
}

func (c Card) String() string {
	parts := []string{c.Simplified}
	if c.Traditional != "" {
		parts = append(parts, c.Traditional)
	}
	parts = append(parts, c.Pinyin, c.Zhuyin, c.Definition)
	if c.ExtraDefinition != "" {
		parts = append(parts, "("+c.ExtraDefinition+")")
	}
	if c.Tags != "" {
		parts = append(parts, "#"+c.Tags)
	}
	return strings.Join(parts, " | ")
}

func traditionalOrBlank(simplified, traditional string) string {
	if simplified == traditional {
		return ""
	}
	return traditional
}

// FromEntry builds a card whose definition holds every gloss.
func FromEntry(e dictionary.HydratedEntry, tags []string) Card {
	return Card{
		Simplified:  e.Simplified,
		Traditional: traditionalOrBlank(e.Simplified, e.Traditional),
		Pinyin:      e.Pinyin,
		Zhuyin:      e.Zhuyin,
		Definition:  strings.Join(e.Glosses, glossSeparator),
		Tags:        strings.Join(tags, " "),
	}
}

// PickError reports a gloss choice outside the entry's glosses.
type PickError struct {
	Pick  int
	Count int
}

func (e *PickError) Error() string {
	return fmt.Sprintf("no definition %d (choose 0-%d)", e.Pick, e.Count-1)
}

// FromPicks builds a card whose definition holds the picked glosses and
// whose extra definition holds the rest, both in gloss order.
func FromPicks(e dictionary.HydratedEntry, picks []int) (Card, error) {
	if len(picks) == 0 {
		return Card{}, fmt.Errorf("no definitions picked")
	}
	for _, p := range picks {
		if p < 0 || p >= len(e.Glosses) {
			return Card{}, &PickError{Pick: p, Count: len(e.Glosses)}
		}
	}

	var primary, rest []string
	for i, g := range e.Glosses {
		if slices.Contains(picks, i) {
			primary = append(primary, g)
		} else {
			rest = append(rest, g)
		}
	}
	c := FromEntry(e, nil)
	c.Definition = strings.Join(primary, glossSeparator)
	c.ExtraDefinition = strings.Join(rest, glossSeparator)
	return c, nil
}
