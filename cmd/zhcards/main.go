// Command zhcards builds Anki flashcards from CC-CEDICT lookups.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/japaniel/zhcards/pkg/config"
	"github.com/japaniel/zhcards/pkg/db"
	"github.com/japaniel/zhcards/pkg/dictionary"
	"github.com/japaniel/zhcards/pkg/flashcard"
	"github.com/japaniel/zhcards/pkg/logging"
	"github.com/japaniel/zhcards/pkg/output"
	"github.com/japaniel/zhcards/pkg/phonetic"
	"github.com/japaniel/zhcards/pkg/session"
	"github.com/japaniel/zhcards/pkg/stroke"
)

// Globals are flags shared by every command. Set flags override the config
// file and environment.
type Globals struct {
	Config    string   `name:"config" help:"YAML config file" type:"path"`
	Dict      string   `name:"dict" help:"CC-CEDICT file, downloaded when missing" type:"path"`
	Cards     string   `name:"cards" help:"Anki cards CSV to append to" type:"path"`
	Deck      string   `name:"deck" help:"SQLite deck log" type:"path"`
	NoDeck    bool     `name:"no-deck" help:"Do not record cards in the deck log"`
	NoStrokes bool     `name:"no-strokes" help:"Do not download stroke-order images"`
	Tags      []string `name:"tag" help:"Tag added to every saved card (repeatable)"`
	Color     string   `name:"color" help:"Color output: auto, always or never"`
	LogLevel  string   `name:"log-level" help:"Log level: debug, info, warn or error"`
}

// CLI defines the command-line interface for zhcards.
type CLI struct {
	Globals

	Repl      ReplCmd      `cmd:"" default:"1" help:"Interactive find/pick session (default)"`
	Batch     BatchCmd     `cmd:"" help:"Make cards for each word of a file, one per line"`
	Find      FindCmd      `cmd:"" help:"Look up pinyin or characters and print the matches"`
	Article   ArticleCmd   `cmd:"" help:"Make cards for the vocabulary of a web article"`
	Import    ImportCmd    `cmd:"" help:"Load an existing cards CSV into the deck log"`
	Recent    RecentCmd    `cmd:"" help:"List the newest cards in the deck log"`
	FetchDict FetchDictCmd `cmd:"" name:"fetch-dict" help:"Download the dictionary if missing and report its stats"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("zhcards: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("zhcards"),
		kong.Description("Chinese flashcards from CC-CEDICT"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a := &app{ctx: ctx, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := a.setup(&cli.Globals); err != nil {
		return err
	}
	defer a.close()
	return kctx.Run(a)
}

// app carries what commands share: resolved config, logger, printer and
// lazily opened resources.
type app struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer
	tr      *phonetic.Transcriber

	deckDB *sql.DB
}

func (a *app) setup(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if g.Dict != "" {
		cfg.Dictionary.Path = g.Dict
	}
	if g.Cards != "" {
		cfg.Cards.Path = g.Cards
	}
	if g.Deck != "" {
		cfg.Cards.DeckDB = g.Deck
	}
	if g.NoDeck {
		cfg.Cards.DisableDeck = true
	}
	if g.NoStrokes {
		cfg.Strokes.Disabled = true
	}
	if len(g.Tags) > 0 {
		cfg.Cards.Tags = g.Tags
	}
	if g.Color != "" {
		cfg.Output.Color = g.Color
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	mode, _ := output.ParseColorMode(cfg.Output.Color)

	a.cfg = cfg
	a.logger = logging.New(cfg.Log, a.stderr)
	a.printer = output.NewPrinter(a.stdout, a.stderr, mode)
	a.tr = phonetic.New()
	return nil
}

func (a *app) close() {
	if a.deckDB != nil {
		if err := a.deckDB.Close(); err != nil {
			a.logger.Warn("failed to close deck db", "error", err)
		}
	}
}

func (a *app) source() dictionary.Source {
	return dictionary.Source{
		Path:   a.cfg.Dictionary.Path,
		URL:    a.cfg.Dictionary.URL,
		Client: &http.Client{Timeout: a.cfg.Dictionary.Timeout},
		Logger: a.logger,
	}
}

func (a *app) index() (*dictionary.Index, dictionary.Stats, error) {
	idx, stats, err := dictionary.Open(a.ctx, a.source(), a.tr, dictionary.WithWorkers(a.cfg.Dictionary.Workers))
	if err != nil {
		return nil, stats, err
	}
	a.logger.Debug("dictionary ready", "path", a.cfg.Dictionary.Path, "entries", idx.Len(), "digest", stats.Digest)
	return idx, stats, nil
}

// deck opens the deck log, or returns nil when it is disabled.
func (a *app) deck(digest string) (*db.Deck, error) {
	if a.cfg.Cards.DisableDeck || a.cfg.Cards.DeckDB == "" {
		return nil, nil
	}
	if a.deckDB == nil {
		conn, err := db.Open(a.cfg.Cards.DeckDB)
		if err != nil {
			return nil, err
		}
		a.deckDB = conn
	}
	return db.NewDeck(a.deckDB, digest), nil
}

func (a *app) session(idx *dictionary.Index, deck *db.Deck) (*session.Session, error) {
	conv, err := dictionary.NewScriptConverter(a.logger)
	if err != nil {
		return nil, err
	}
	cfg := session.Config{
		Dictionary:  idx,
		Transcriber: a.tr,
		Converter:   conv,
		Stores:      []flashcard.Store{flashcard.NewCSVStore(a.cfg.Cards.Path)},
		Printer:     a.printer,
		Input:       a.stdin,
		Logger:      a.logger,
		Tags:        a.cfg.Cards.Tags,
		Target:      a.cfg.Cards.Path,
	}
	if deck != nil {
		cfg.Stores = append(cfg.Stores, deck)
		cfg.Duplicates = deck
	}
	if !a.cfg.Strokes.Disabled {
		cfg.Strokes = stroke.New(a.cfg.Strokes.Dir, a.cfg.Strokes.BaseURL,
			stroke.WithRate(a.cfg.Strokes.RatePerSecond),
			stroke.WithMaxTries(a.cfg.Strokes.MaxTries),
			stroke.WithLogger(a.logger),
		)
	}
	return session.New(cfg), nil
}

// interactive opens everything a session needs.
func (a *app) interactive() (*session.Session, *dictionary.Index, *db.Deck, error) {
	idx, stats, err := a.index()
	if err != nil {
		return nil, nil, nil, err
	}
	deck, err := a.deck(stats.Digest)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := a.session(idx, deck)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, idx, deck, nil
}
