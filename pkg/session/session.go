// Package session runs the interactive find/pick/save loop that turns
// dictionary lookups into flashcards.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/japaniel/zhcards/pkg/dictionary"
	"github.com/japaniel/zhcards/pkg/flashcard"
	"github.com/japaniel/zhcards/pkg/output"
	"github.com/japaniel/zhcards/pkg/phonetic"
)

// State is the picking state of a session.
type State int

const (
	Begin State = iota
	PickWord
	PickEnglish
)

func (s State) String() string {
	switch s {
	case Begin:
		return "begin"
	case PickWord:
		return "pick-word"
	case PickEnglish:
		return "pick-english"
	default:
		return "unknown"
	}
}

// Dictionary answers find queries.
type Dictionary interface {
	FindWords(query string) ([]dictionary.HydratedEntry, error)
}

// Transcriber derives readings for custom cards.
type Transcriber interface {
	HanziToNumbered(text string) string
	NumberedToAccented(numbered string) string
	NumberedToZhuyin(numbered string) string
}

// ScriptConverter maps between simplified and traditional characters.
type ScriptConverter interface {
	ToSimplified(s string) string
	ToTraditional(s string) string
}

// DuplicateChecker reports cards saved before.
type DuplicateChecker interface {
	Exists(ctx context.Context, c flashcard.Card) (bool, error)
}

// StrokeFetcher renders stroke-order images for characters.
type StrokeFetcher interface {
	Fetch(ctx context.Context, text string) string
}

// Config wires a Session. Dictionary, Printer and Input are required.
type Config struct {
	Dictionary  Dictionary
	Transcriber Transcriber
	Converter   ScriptConverter
	Stores      []flashcard.Store
	Duplicates  DuplicateChecker
	Strokes     StrokeFetcher
	Printer     *output.Printer
	Input       io.Reader
	Logger      *slog.Logger
	Tags        []string
	// Target names where cards go, shown in the save confirmation.
	Target string
}

// Session is a single-user command loop. It is not safe for concurrent use.
type Session struct {
	cfg    Config
	p      *output.Printer
	in     *bufio.Scanner
	logger *slog.Logger

	state    State
	results  []dictionary.HydratedEntry
	word     dictionary.HydratedEntry
	fileMode bool
	wordDone bool
}

// New creates a session reading commands from cfg.Input.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Target == "" {
		cfg.Target = "deck"
	}
	return &Session{
		cfg:    cfg,
		p:      cfg.Printer,
		in:     bufio.NewScanner(cfg.Input),
		logger: logger,
	}
}

// State returns the current picking state.
func (s *Session) State() State { return s.state }

const prompt = "入 "

// ErrQuit is returned by Execute when the user asked to leave.
var ErrQuit = errors.New("quit")

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// Run reads commands until exit or end of input.
func (s *Session) Run(ctx context.Context) error {
	s.p.Info("Welcome to zhcards. Type help or ? to list commands.")
	err := s.loop(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

func (s *Session) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.fileMode && s.wordDone {
			return nil
		}
		s.p.Prompt(prompt)
		line, ok := s.readLine()
		if !ok {
			s.p.Print("exiting.")
			return io.EOF
		}
		if err := s.Execute(ctx, line); err != nil {
			return err
		}
	}
}

// Execute runs one command line. Command errors the user can fix are printed
// and reported as nil; ErrQuit signals exit.
func (s *Session) Execute(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "find":
		return s.find(ctx, arg)
	case "pick":
		return s.pick(ctx, arg)
	case "make":
		return s.make(ctx, arg)
	case "help", "?":
		s.help()
		return nil
	case "exit", "quit":
		s.p.Print("exiting.")
		return ErrQuit
	default:
		s.p.Error("unknown command %q, type help to list commands", cmd)
		return nil
	}
}

func (s *Session) help() {
	s.p.Print("find <pinyin|汉字>        look up a word: find ni3hao, find nǐhǎo, find 你好")
	s.p.Print("pick <n> [n ...]         choose a listed word, or the definitions for the card")
	s.p.Print("make <汉字>               make a custom card and type its definition")
	s.p.Print("exit                     leave (in batch mode, move to the next word)")
}

func (s *Session) reset() {
	s.state = Begin
	s.results = nil
	s.word = dictionary.HydratedEntry{}
}

func (s *Session) find(ctx context.Context, arg string) error {
	if arg == "" {
		s.p.Error("usage: find <pinyin or characters>")
		return nil
	}
	words, err := s.cfg.Dictionary.FindWords(arg)
	if errors.Is(err, dictionary.ErrUnrecognizedQuery) {
		s.p.Error("input is not well formed pinyin or well formed Chinese characters")
		return nil
	}
	if err != nil {
		return err
	}
	if len(words) == 0 {
		s.p.Error("could not find character or phrase")
		return nil
	}
	s.results = words
	if len(words) == 1 && s.fileMode {
		return s.pickWord(ctx, 0)
	}

	if err := ShowResults(s.p, words); err != nil {
		return err
	}
	s.p.Print("type `pick [num]` to pick an option, or type any other command")
	s.state = PickWord
	return nil
}

// ShowResults prints find results as numbered options.
func ShowResults(p *output.Printer, words []dictionary.HydratedEntry) error {
	rows := make([][]string, len(words))
	for i, w := range words {
		rows[i] = []string{w.Simplified, w.Traditional, w.Pinyin, w.Zhuyin, strings.Join(w.Glosses, "; ")}
	}
	return p.Options([]string{"simplified", "traditional", "pinyin", "zhuyin", "definition"}, rows)
}

func parsePicks(arg string) ([]int, error) {
	fields := strings.Fields(arg)
	picks := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not an option number", f)
		}
		picks = append(picks, n)
	}
	return picks, nil
}

func (s *Session) pick(ctx context.Context, arg string) error {
	if s.state != PickWord && s.state != PickEnglish {
		s.p.Error("no options to pick from right now!")
		return nil
	}
	picks, err := parsePicks(arg)
	if err != nil {
		s.p.Error("%v", err)
		return nil
	}
	if len(picks) == 0 {
		s.p.Error("must choose an option!")
		return nil
	}

	if s.state == PickWord {
		if len(picks) > 1 {
			s.p.Error("can only choose one option!")
			return nil
		}
		if picks[0] < 0 || picks[0] >= len(s.results) {
			s.p.Error("no option %d (choose 0-%d)", picks[0], len(s.results)-1)
			return nil
		}
		return s.pickWord(ctx, picks[0])
	}

	card, err := flashcard.FromPicks(s.word, picks)
	if err != nil {
		s.p.Error("%v", err)
		return nil
	}
	card.Tags = strings.Join(s.cfg.Tags, " ")
	s.reset()
	return s.save(ctx, card)
}

func (s *Session) pickWord(ctx context.Context, i int) error {
	s.word = s.results[i]
	if len(s.word.Glosses) == 1 {
		card := flashcard.FromEntry(s.word, s.cfg.Tags)
		s.reset()
		return s.save(ctx, card)
	}

	s.p.Print("which definitions should go in the main definition?")
	rows := make([][]string, len(s.word.Glosses))
	for i, g := range s.word.Glosses {
		rows[i] = []string{g}
	}
	if err := s.p.Options([]string{"definition"}, rows); err != nil {
		return err
	}
	s.p.Print("type `pick [num] ([num] [num])` to pick option(s), or type any other command")
	s.state = PickEnglish
	return nil
}

func (s *Session) make(ctx context.Context, arg string) error {
	if !phonetic.HasChinese(arg) {
		s.p.Error("input is not well formed chinese characters")
		return nil
	}
	if s.cfg.Transcriber == nil {
		s.p.Error("custom cards are not available")
		return nil
	}
	simplified, traditional := arg, arg
	if s.cfg.Converter != nil {
		simplified = s.cfg.Converter.ToSimplified(arg)
		traditional = s.cfg.Converter.ToTraditional(arg)
	}
	numbered := s.cfg.Transcriber.HanziToNumbered(simplified)

	s.p.Prompt("english definition: ")
	english, ok := s.readLine()
	if !ok {
		s.p.Print("")
		s.p.Print("not saved.")
		s.reset()
		return nil
	}

	card := flashcard.Card{
		Simplified: simplified,
		Pinyin:     s.cfg.Transcriber.NumberedToAccented(numbered),
		Zhuyin:     s.cfg.Transcriber.NumberedToZhuyin(numbered),
		Definition: english,
		Tags:       strings.Join(s.cfg.Tags, " "),
	}
	if traditional != simplified {
		card.Traditional = traditional
	}
	s.reset()
	return s.save(ctx, card)
}

func (s *Session) save(ctx context.Context, card flashcard.Card) error {
	if s.fileMode {
		s.wordDone = true
	}
	if s.cfg.Duplicates != nil {
		dup, err := s.cfg.Duplicates.Exists(ctx, card)
		if err != nil {
			s.logger.Warn("duplicate check failed", "error", err)
		} else if dup {
			s.p.Warning("%s is already in your deck", card.Simplified)
		}
	}

	s.p.Prompt(fmt.Sprintf("saving %s to %s, looks ok ([Y]n) ? ", card, s.cfg.Target))
	answer, ok := s.readLine()
	if !ok {
		s.p.Print("")
	}
	if a := strings.ToLower(answer); !ok || a == "n" || a == "no" {
		s.p.Print("not saved.")
		return nil
	}

	if s.cfg.Strokes != nil {
		card.SimplifiedStroke = s.cfg.Strokes.Fetch(ctx, card.Simplified)
		if card.Traditional != "" {
			card.TraditionalStroke = s.cfg.Strokes.Fetch(ctx, card.Traditional)
		}
	}

	var errs []error
	for _, st := range s.cfg.Stores {
		if err := st.Save(ctx, card); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.p.Error("save failed: %v", err)
		return err
	}
	s.p.Success("saved!")
	s.logger.Debug("card saved", "simplified", card.Simplified, "pinyin", card.Pinyin)
	return nil
}

// RunFile looks up each word in turn and runs the command loop until a card
// for it is saved or skipped, or the user types exit. done, when non-nil, is
// called after each word with its index. End of input stops the batch.
func (s *Session) RunFile(ctx context.Context, words []string, done func(i int) error) error {
	s.fileMode = true
	defer func() { s.fileMode = false }()

	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		s.reset()
		s.wordDone = false
		s.p.Info("looking up %s (word %d of %d)", s.p.Bold(w), i+1, len(words))
		if err := s.find(ctx, w); err != nil {
			return err
		}
		err := s.loop(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil && !errors.Is(err, ErrQuit):
			return err
		}
		if done != nil {
			if err := done(i); err != nil {
				return err
			}
		}
	}
	return nil
}
