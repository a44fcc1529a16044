// Package article pulls the readable text out of a Chinese web page and
// ranks the dictionary words it contains.
package article

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// Article is the extracted text of a page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// maxBodySize caps the HTML read from untrusted URLs.
const maxBodySize = 10 * 1024 * 1024

// DefaultClient is used when Fetch is given a nil client.
var DefaultClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads rawURL and extracts its main text.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (Article, error) {
	if client == nil {
		client = DefaultClient
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Host == "" {
		return Article{}, fmt.Errorf("invalid article url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Article{}, fmt.Errorf("create request: %w", err)
	}
	// Some news sites block non-browser agents outright.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,zh-TW;q=0.8,en;q=0.7")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetch article: got status code %d", resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return Article{}, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return Article{}, fmt.Errorf("read article: %w", err)
	}
	if len(body) > maxBodySize {
		return Article{}, fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}

	parsed, err := readability.FromReader(bytes.NewReader(SanitizeRuby(body)), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	return Article{
		URL:   rawURL,
		Title: strings.TrimSpace(parsed.Title),
		Text:  parsed.TextContent,
	}, nil
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby annotations (<rt>) and their fallback
// parentheses (<rp>). Pages that print pinyin or zhuyin over characters
// would otherwise yield text like "汉字hànzì".
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}
