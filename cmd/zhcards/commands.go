package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/japaniel/zhcards/pkg/article"
	"github.com/japaniel/zhcards/pkg/db"
	"github.com/japaniel/zhcards/pkg/dictionary"
	"github.com/japaniel/zhcards/pkg/flashcard"
	"github.com/japaniel/zhcards/pkg/output"
	"github.com/japaniel/zhcards/pkg/session"
)

// ReplCmd runs the interactive session.
type ReplCmd struct{}

func (c *ReplCmd) Run(a *app) error {
	s, _, _, err := a.interactive()
	if err != nil {
		return err
	}
	return s.Run(a.ctx)
}

// BatchCmd runs the session once per word of a file.
type BatchCmd struct {
	File string `arg:"" help:"File with one word per line" type:"existingfile"`
}

func (c *BatchCmd) Run(a *app) error {
	words, err := readWords(c.File)
	if err != nil {
		return err
	}
	s, _, _, err := a.interactive()
	if err != nil {
		return err
	}
	return s.RunFile(a.ctx, words, nil)
}

func readWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return words, nil
}

// FindCmd prints the matches for one query.
type FindCmd struct {
	Query []string `arg:"" help:"Pinyin (ni3hao3, nǐhǎo, nihao) or characters (你好)"`
}

func (c *FindCmd) Run(a *app) error {
	idx, _, err := a.index()
	if err != nil {
		return err
	}
	words, err := idx.FindWords(strings.Join(c.Query, " "))
	if err != nil {
		return err
	}
	if len(words) == 0 {
		a.printer.Warning("could not find character or phrase")
		return nil
	}
	return session.ShowResults(a.printer, words)
}

// ArticleCmd mines an article for words and runs the session over them.
type ArticleCmd struct {
	URL         string `arg:"" help:"Article URL"`
	MinCount    int    `name:"min-count" help:"Only words appearing at least this often (default from config)"`
	Limit       int    `name:"limit" help:"Stop after this many words; 0 means all (default from config)"`
	IncludeSeen bool   `name:"include-seen" help:"Also offer words already in the deck log"`
	Restart     bool   `name:"restart" help:"Ignore saved progress for this article"`
}

// candidate is a vocabulary word with its position in the full list.
type candidate struct {
	pos  int
	word article.Word
}

func (c *ArticleCmd) Run(a *app) error {
	minCount, limit := a.cfg.Article.MinCount, a.cfg.Article.Limit
	if c.MinCount > 0 {
		minCount = c.MinCount
	}
	if c.Limit > 0 {
		limit = c.Limit
	}

	s, idx, deck, err := a.interactive()
	if err != nil {
		return err
	}

	art, err := article.Fetch(a.ctx, nil, c.URL)
	if err != nil {
		return err
	}
	a.printer.Info("%s (%d characters)", art.Title, len([]rune(art.Text)))

	seg := article.NewSegmenter(idx.Headwords())
	vocab, err := article.Vocabulary(a.ctx, art.Text, seg, a.cfg.Dictionary.Workers)
	if err != nil {
		return err
	}
	var all []article.Word
	for _, w := range vocab {
		if w.Count >= minCount {
			all = append(all, w)
		}
	}

	var (
		sourceID int64
		start    int
		seen     map[string]bool
	)
	if deck != nil {
		sourceID, err = db.CreateOrGetSource(a.ctx, a.deckDB, art.URL, art.Title)
		if err != nil {
			return err
		}
		if !c.Restart {
			if start, err = db.GetSourceProgress(a.ctx, a.deckDB, sourceID); err != nil {
				return err
			}
			start = min(start, len(all))
		}
		if !c.IncludeSeen {
			if seen, err = deck.Seen(a.ctx); err != nil {
				return err
			}
		}
	}

	var todo []candidate
	for i := start; i < len(all); i++ {
		if seen[all[i].Text] {
			continue
		}
		todo = append(todo, candidate{pos: i, word: all[i]})
		if limit > 0 && len(todo) == limit {
			break
		}
	}
	if start > 0 {
		a.printer.Info("resuming at word %d of %d", start+1, len(all))
	}
	if len(todo) == 0 {
		a.printer.Success("no new words to study")
		return nil
	}

	words := make([]string, len(todo))
	for i, cand := range todo {
		words[i] = cand.word.Text
	}
	return s.RunFile(a.ctx, words, func(i int) error {
		if deck == nil {
			return nil
		}
		return db.UpdateSourceProgress(a.ctx, a.deckDB, sourceID, todo[i].pos+1)
	})
}

// ImportCmd loads a cards CSV into the deck log.
type ImportCmd struct {
	File       string `arg:"" help:"Cards CSV" type:"existingfile"`
	NoComplete bool   `name:"no-complete" help:"Do not fill missing pinyin, zhuyin or definitions from the dictionary"`
}

func (c *ImportCmd) Run(a *app) error {
	if a.cfg.Cards.DisableDeck || a.cfg.Cards.DeckDB == "" {
		return fmt.Errorf("import needs the deck log; set --deck")
	}
	idx, stats, err := a.index()
	if err != nil {
		return err
	}
	deck, err := a.deck(stats.Digest)
	if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	var complete func(flashcard.Card) (flashcard.Card, bool)
	if !c.NoComplete {
		complete = func(card flashcard.Card) (flashcard.Card, bool) {
			return flashcard.Complete(card, idx)
		}
	}
	res, err := deck.ImportCSV(a.ctx, f, complete)
	if err != nil {
		return err
	}
	a.printer.Success("imported %d of %d cards (%d duplicates, %d completed from the dictionary)",
		res.Inserted, res.Read, res.Duplicates, res.Completed)
	total, err := deck.Count(a.ctx)
	if err != nil {
		return err
	}
	a.printer.Print("the deck log now holds %d cards", total)
	return nil
}

// RecentCmd lists the newest cards in the deck log.
type RecentCmd struct {
	Limit int `name:"limit" short:"n" default:"10" help:"How many cards to list"`
}

func (c *RecentCmd) Run(a *app) error {
	deck, err := a.deck("")
	if err != nil {
		return err
	}
	if deck == nil {
		return fmt.Errorf("recent needs the deck log; set --deck")
	}
	cards, err := deck.Recent(a.ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		a.printer.Warning("the deck log is empty")
		return nil
	}
	total, err := deck.Count(a.ctx)
	if err != nil {
		return err
	}
	a.printer.Info("%d of %d cards, newest first", len(cards), total)

	t := output.NewTable(a.stdout, []string{"simplified", "traditional", "pinyin", "definition", "added"})
	for _, card := range cards {
		t.AddRow([]string{
			a.printer.Bold(card.Simplified),
			card.Traditional,
			card.Pinyin,
			card.Definition,
			a.printer.Dim(card.CreatedAt.Local().Format(time.DateOnly)),
		})
	}
	return t.Render()
}

// FetchDictCmd makes sure the dictionary is present and parses it.
type FetchDictCmd struct{}

func (c *FetchDictCmd) Run(a *app) error {
	src := a.source()
	if err := src.Ensure(a.ctx); err != nil {
		return err
	}
	_, stats, err := dictionary.Load(src.Path, a.logger)
	if err != nil {
		return err
	}
	a.printer.Success("%s: %d entries, %d malformed lines skipped", src.Path, stats.Parsed, stats.Malformed)
	a.printer.Print("blake3 %s", stats.Digest)
	return nil
}
