// Package stroke downloads stroke-order animations for Chinese characters and
// caches them next to the card file for Anki's media folder.
package stroke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultBaseURL serves one GIF per code point, e.g. 20320.gif for 你.
const DefaultBaseURL = "https://www.mdbg.net/chinese/rsc/img/stroke_anim/"

const maxImageSize = 2 << 20

// Fetcher resolves characters to <img> tags, downloading missing images.
type Fetcher struct {
	dir         string
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	maxTries    uint
	concurrency int
	initialWait time.Duration
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithRate limits requests per second to the image server.
func WithRate(perSecond float64) Option {
	return func(f *Fetcher) { f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// WithMaxTries bounds attempts per image.
func WithMaxTries(n uint) Option { return func(f *Fetcher) { f.maxTries = n } }

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(d time.Duration) Option { return func(f *Fetcher) { f.initialWait = d } }

// WithLogger sets the logger for per-character failures.
func WithLogger(l *slog.Logger) Option { return func(f *Fetcher) { f.logger = l } }

// New returns a Fetcher caching images in dir.
func New(dir, baseURL string, opts ...Option) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	f := &Fetcher{
		dir:         dir,
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(2), 1),
		maxTries:    3,
		concurrency: 4,
		initialWait: 500 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns one <img> tag per Han character in text, separated by
// spaces. Characters whose image cannot be obtained are left out and logged.
func (f *Fetcher) Fetch(ctx context.Context, text string) string {
	runes := []rune(text)
	tags := make([]string, len(runes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, r := range runes {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		g.Go(func() error {
			tag, err := f.fetchOne(gctx, r)
			if err != nil {
				f.logger.Warn("unable to fetch stroke image", "char", string(r), "error", err)
				return nil
			}
			tags[i] = tag
			return nil
		})
	}
	_ = g.Wait()

	out := tags[:0]
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

func (f *Fetcher) fetchOne(ctx context.Context, r rune) (string, error) {
	name := string(r) + ".gif"
	tag := fmt.Sprintf(`<img src="%s">`, name)
	path := filepath.Join(f.dir, name)
	if _, err := os.Stat(path); err == nil {
		return tag, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.initialWait
	bo.MaxInterval = 10 * f.initialWait

	data, err := backoff.Retry(ctx, func() ([]byte, error) {
		return f.download(ctx, r)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(f.maxTries))
	if err != nil {
		return "", err
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return tag, nil
}

// errEmptyImage marks a successful response without a body.
var errEmptyImage = errors.New("empty image")

func (f *Fetcher) download(ctx context.Context, r rune) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}
	url := fmt.Sprintf("%s%d.gif", f.baseURL, r)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("stroke server returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("stroke server returned %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, backoff.Permanent(errEmptyImage)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".stroke-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
