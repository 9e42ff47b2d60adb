package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.Header.Get("Range")
		if rng == "" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(body))
			return
		}
		var lo, hi int
		err := parseRange(rng, &lo, &hi)
		require.NoError(t, err)
		if hi >= len(body) {
			hi = len(body) - 1
		}
		w.Header().Set("Content-Range", "bytes "+rng[6:]+"/"+strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(body[lo : hi+1]))
	}))
}

func parseRange(rng string, lo, hi *int) error {
	rng = strings.TrimPrefix(rng, "bytes=")
	parts := strings.SplitN(rng, "-", 2)
	var err error
	*lo, err = strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	*hi, err = strconv.Atoi(parts[1])
	return err
}

func TestSendChunked_ReassemblesFullFile(t *testing.T) {
	body := strings.Repeat("0123456789", 1000) // 10000 bytes: below ChunkSize, so a single range
	srv := rangeServer(t, body)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	size := int64(len(body))
	d := New(srv.Client(), srv.URL, &size, false).SaveTo(dest).Chunked().MaxConcurrentChunks(3)

	_, err := d.Send(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestSendChunked_OutputBytesSegmentsCoverWholeFile(t *testing.T) {
	body := strings.Repeat("ABCDEFGHIJ", 1000)
	srv := rangeServer(t, body)
	defer srv.Close()

	size := int64(len(body))
	d := New(srv.Client(), srv.URL, &size, false).OutputBytes().Chunked().MaxConcurrentChunks(2)

	result, err := d.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, ResultBytesSegments, result.Kind)
	assert.Equal(t, body, string(result.Segments.ReadAt(0, int64(len(body)))))
}

func TestSendChunked_ResumesUnfinishedLocalFile(t *testing.T) {
	body := strings.Repeat("xy", 50) // 100 bytes, well under one ChunkSize
	const resumeOffset = 40

	var sawFullRangeRequest atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lo, hi int
		require.NoError(t, parseRange(r.Header.Get("Range"), &lo, &hi))
		if lo < resumeOffset {
			sawFullRangeRequest.Store(true)
		}
		if hi >= len(body) {
			hi = len(body) - 1
		}
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(body[lo : hi+1]))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	size := int64(len(body))
	// Pre-populate the destination as if an earlier run wrote the first
	// resumeOffset bytes already, so resume should only request the remainder.
	require.NoError(t, os.WriteFile(dest, []byte(body[:resumeOffset]), 0o644))

	d := New(srv.Client(), srv.URL, &size, false).SaveTo(dest).Chunked()
	_, err := d.Send(context.Background())
	require.NoError(t, err)

	assert.False(t, sawFullRangeRequest.Load(), "resume should not re-request already-downloaded bytes")

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestSendChunked_ServerIgnoringRangeIsReported(t *testing.T) {
	body := strings.Repeat("z", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	size := int64(len(body))
	d := New(srv.Client(), srv.URL, &size, false).OutputBytes().Chunked()

	_, err := d.Send(context.Background())
	assert.ErrorIs(t, err, ErrRangeNotSupported)
}

func TestSendChunked_CancelRemovesThePartialSaveFile(t *testing.T) {
	body := strings.Repeat("0123456789", 1000)
	srv := rangeServer(t, body)
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	size := int64(len(body))
	d := New(srv.Client(), srv.URL, &size, false).SaveTo(dest).Chunked().MaxConcurrentChunks(1)
	d.RequestCancel()

	_, err := d.Send(context.Background())
	require.ErrorIs(t, err, ErrCancelled)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "a cancelled chunked transfer must not leave a partial file on disk")
}

func TestSendChunked_OutputBytesIgnoresAnExistingPartialFile(t *testing.T) {
	body := strings.Repeat("xy", 50) // 100 bytes, well under one ChunkSize

	var sawRangeRequest atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lo, hi int
		require.NoError(t, parseRange(r.Header.Get("Range"), &lo, &hi))
		if lo != 0 {
			sawRangeRequest.Store(true)
		}
		if hi >= len(body) {
			hi = len(body) - 1
		}
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(body[lo : hi+1]))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	size := int64(len(body))
	require.NoError(t, os.WriteFile(dest, []byte(body[:40]), 0o644))

	d := New(srv.Client(), srv.URL, &size, false).SaveTo(dest).OutputBytes().Chunked()
	result, err := d.Send(context.Background())
	require.NoError(t, err)

	assert.False(t, sawRangeRequest.Load(), "output-bytes mode must always start at 0")
	assert.Equal(t, body, string(result.Segments.ReadAt(0, int64(len(body)))))
}

func TestBuildChunkRanges_CoversWholeSpanWithoutOverlap(t *testing.T) {
	ranges := buildChunkRanges(0, int64(ChunkSize)*2+100)
	require.Len(t, ranges, 3)
	assert.Equal(t, int64(0), ranges[0].lo)
	assert.Equal(t, int64(ChunkSize-1), ranges[0].hi)
	assert.Equal(t, int64(ChunkSize), ranges[1].lo)
	assert.Equal(t, int64(ChunkSize)*2-1, ranges[1].hi)
	assert.Equal(t, int64(ChunkSize)*2, ranges[2].lo)
	assert.Equal(t, int64(ChunkSize)*2+99, ranges[2].hi)
}
