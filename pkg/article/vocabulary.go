package article

import (
	"context"
	"slices"
	"unicode"

	"github.com/japaniel/zhcards/pkg/workerpool"
)

// Word is a distinct word of an article.
type Word struct {
	Text  string
	Count int
	first int
}

// Vocabulary segments text sentence by sentence on a worker pool and returns
// its distinct Han words, most frequent first, ties in order of first
// appearance.
func Vocabulary(ctx context.Context, text string, seg *Segmenter, workers int) ([]Word, error) {
	sentences := SplitSentences(text)
	segmented, err := workerpool.Map(ctx, workers, sentences, seg.Segment)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var words []Word
	for _, ws := range segmented {
		for _, w := range ws {
			if !isHan(w) {
				continue
			}
			if i, ok := index[w]; ok {
				words[i].Count++
				continue
			}
			index[w] = len(words)
			words = append(words, Word{Text: w, Count: 1, first: len(words)})
		}
	}
	slices.SortStableFunc(words, func(a, b Word) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return a.first - b.first
	})
	return words, nil
}

func isHan(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			return false
		}
	}
	return s != ""
}
