package dictionary

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// DefaultURL is the MDBG CC-CEDICT export.
const DefaultURL = "https://www.mdbg.net/chinese/export/cedict/cedict_1_0_ts_utf-8_mdbg.txt.gz"

// maxDictionarySize caps the decompressed download.
const maxDictionarySize = 256 << 20

// Source locates a dictionary file and where to fetch it from when missing.
type Source struct {
	Path   string
	URL    string
	Client *http.Client
	Logger *slog.Logger
}

// EnsureDictionary downloads the dictionary at url into path unless path
// already exists.
func EnsureDictionary(ctx context.Context, path, url string) error {
	return Source{Path: path, URL: url}.Ensure(ctx)
}

// Ensure checks that the dictionary file exists, downloading and
// decompressing it when it does not. The file is written to a temporary
// name and renamed into place, so an interrupted download leaves no
// truncated dictionary behind.
func (s Source) Ensure(ctx context.Context) error {
	if _, err := os.Stat(s.Path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if s.URL == "" {
		return fmt.Errorf("%w: %s does not exist and no download URL is configured", ErrSourceUnavailable, s.Path)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("dictionary not found, downloading", "path", s.Path, "url", s.URL)

	n, err := s.download(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	logger.Info("dictionary downloaded", "path", s.Path, "bytes", n)
	return nil
}

func (s Source) download(ctx context.Context) (int64, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "zhcards-cli")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed: %s", resp.Status)
	}

	body, closeBody, err := decompress(resp.Body, archiveName(s.URL))
	if err != nil {
		return 0, err
	}
	defer closeBody()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, ".cedict-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.CopyN(tmp, body, maxDictionarySize+1)
	if err != nil && !errors.Is(err, io.EOF) {
		tmp.Close()
		return 0, fmt.Errorf("failed to write dictionary: %w", err)
	}
	if n > maxDictionarySize {
		tmp.Close()
		return 0, fmt.Errorf("dictionary exceeds %d bytes", maxDictionarySize)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return 0, err
	}
	return n, nil
}

// archiveName returns the last path element of rawURL without its query.
func archiveName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.ToLower(filepath.Base(u.Path))
	}
	return strings.ToLower(rawURL)
}

// decompress picks a decoder from the file suffix. Archives yield their
// first regular file.
func decompress(r io.Reader, name string) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".tar.gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		tr := tar.NewReader(gz)
		for {
			header, err := tr.Next()
			if err == io.EOF {
				gz.Close()
				return nil, noop, fmt.Errorf("no dictionary file found in downloaded archive")
			}
			if err != nil {
				gz.Close()
				return nil, noop, fmt.Errorf("error reading tar archive: %w", err)
			}
			if header.Typeflag == tar.TypeReg {
				return tr, func() { gz.Close() }, nil
			}
		}
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xr, noop, nil
	default:
		return r, noop, nil
	}
}
