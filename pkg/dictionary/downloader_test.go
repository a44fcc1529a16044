package dictionary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sampleDict = "# sample\n你好 你好 [ni3 hao3] /hello/hi/\n"

func TestEnsureDictionary_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cedict.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleDict), 0o644))

	// The URL is unreachable; an existing file must short-circuit the download.
	err := EnsureDictionary(context.Background(), path, "http://127.0.0.1:0/cedict.txt.gz")
	require.NoError(t, err)
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func tgzBytes(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "docs/", Typeflag: tar.TypeDir, Mode: 0o755}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(data))}))
	_, err := tw.Write(data)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	return gzipBytes(t, tarBuf.Bytes())
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestEnsureDownloadsAndDecompresses(t *testing.T) {
	payloads := map[string][]byte{
		"/cedict.txt.gz": gzipBytes(t, []byte(sampleDict)),
		"/cedict.tgz":    tgzBytes(t, "cedict_ts.u8", []byte(sampleDict)),
		"/cedict.txt.xz": xzBytes(t, []byte(sampleDict)),
		"/cedict.txt":    []byte(sampleDict),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "zhcards-cli", r.Header.Get("User-Agent"))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	for p := range payloads {
		t.Run(p, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "cedict.txt")
			src := Source{Path: path, URL: srv.URL + p + "?v=1", Client: srv.Client()}
			require.NoError(t, src.Ensure(context.Background()))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, sampleDict, string(got))

			leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".cedict-*"))
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestEnsureFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cedict.txt")
	err := Source{Path: path, URL: srv.URL + "/cedict.txt.gz", Client: srv.Client()}.Ensure(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureWithoutURL(t *testing.T) {
	err := Source{Path: filepath.Join(t.TempDir(), "missing.txt")}.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestEnsureRejectsCorruptGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not gzip"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cedict.txt")
	err := Source{Path: path, URL: srv.URL + "/cedict.txt.gz", Client: srv.Client()}.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
