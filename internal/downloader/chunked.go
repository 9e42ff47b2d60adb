package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type chunkRange struct {
	index int
	lo    int64
	hi    int64 // inclusive
}

// sendChunked downloads the resource as a set of Range GETs, up to
// MaxConcurrentChunks at a time, each independently retried. It resumes by
// comparing the local save file's length against the known remote size and
// only requesting the remainder; this supersedes any teacher resume-state
// file, since the file itself is the only resume state needed.
func (d *Downloader) sendChunked(ctx context.Context) (*Result, error) {
	total := *d.size

	var (
		resumeOffset int64
		err          error
	)
	// Resume from local file length only applies to the save-to-file case;
	// output-bytes always starts at 0, since there is no prior buffer to
	// resume from.
	if !d.cfg.outputBytes {
		resumeOffset, err = localFileLength(d.cfg.savePath)
		if err != nil {
			return nil, newErr(KindSeekFile, err)
		}
	}
	if resumeOffset > total {
		resumeOffset = 0
	}

	var file *os.File
	if d.cfg.savePath != "" {
		file, err = os.OpenFile(d.cfg.savePath, os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return nil, newErr(KindCreateFile, err)
		}
		defer file.Close()
		if err := file.Truncate(total); err != nil {
			return nil, newErr(KindPreallocateFile, err)
		}
	}

	bytesDone := atomic.Uint64{}
	bytesDone.Store(uint64(resumeOffset))
	d.publishProgress(bytesDone.Load())

	ranges := buildChunkRanges(resumeOffset, total)

	var (
		segMu    sync.Mutex
		segments []ByteSegment
		errMu    sync.Mutex
		errs     []error
	)

	sem := semaphore.NewWeighted(d.cfg.maxConcurrentChunks)
	g, gctx := errgroup.WithContext(ctx)
	// Each task records its own error in errs and returns nil, so one
	// failed chunk never cancels gctx and the rest keep running; gctx is
	// cancelled only by the caller's ctx. Tasks that have not started yet
	// skip their range once rangeUnsupported or cancelled is closed.
	rangeUnsupported := make(chan struct{})
	var rangeUnsupportedOnce sync.Once
	cancelled := make(chan struct{})
	var cancelledOnce sync.Once

	for _, r := range ranges {
		r := r
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			if d.hooks.cancelRequested() {
				cancelledOnce.Do(func() { close(cancelled) })
				return nil
			}
			select {
			case <-rangeUnsupported:
				return nil
			case <-cancelled:
				return nil
			default:
			}
			if err := d.hooks.waitIfPaused(gctx); err != nil {
				return nil
			}

			data, err := d.fetchChunk(gctx, r)
			if err != nil {
				if err == errRangeNotSupported {
					rangeUnsupportedOnce.Do(func() { close(rangeUnsupported) })
				}
				errMu.Lock()
				errs = append(errs, chunkFailed(r.index, int(d.cfg.retryPolicy.MaxAttempts), err))
				errMu.Unlock()
				return nil
			}

			if file != nil {
				if _, werr := file.WriteAt(data, r.lo); werr != nil {
					errMu.Lock()
					errs = append(errs, chunkFailed(r.index, 0, werr))
					errMu.Unlock()
					return nil
				}
			}
			if d.cfg.outputBytes {
				segMu.Lock()
				segments = append(segments, ByteSegment{Offset: r.lo, Data: data})
				segMu.Unlock()
			}

			d.hooks.runOnChunk(data)
			done := bytesDone.Add(uint64(len(data)))
			d.publishProgress(done)
			return nil
		})
	}
	_ = g.Wait()

	select {
	case <-cancelled:
		removePartialFile(d.cfg.savePath)
		return nil, ErrCancelled
	default:
	}
	if ctx.Err() != nil {
		removePartialFile(d.cfg.savePath)
		return nil, ErrCancelled
	}

	select {
	case <-rangeUnsupported:
		removePartialFile(d.cfg.savePath)
		return nil, ErrRangeNotSupported
	default:
	}

	if len(errs) == 1 {
		removePartialFile(d.cfg.savePath)
		return nil, errs[0]
	}
	if len(errs) > 1 {
		removePartialFile(d.cfg.savePath)
		return nil, multipleChunksFailed(errs)
	}

	if file != nil {
		if err := file.Sync(); err != nil {
			return nil, newErr(KindFlushFile, err)
		}
	}

	result := &Result{Kind: ResultSaved}
	if d.cfg.outputBytes {
		result.Kind = ResultBytesSegments
		result.Segments = NewByteSegments(segments)
	}
	return result, nil
}

var errRangeNotSupported = fmt.Errorf("chunked: server returned 200 for a ranged request")

// fetchChunk performs one Range GET, retried per the downloader's policy.
func (d *Downloader) fetchChunk(ctx context.Context, r chunkRange) ([]byte, error) {
	var data []byte
	err := d.cfg.retryPolicy.run(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", r.lo, r.hi))

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusPartialContent:
		case http.StatusOK:
			return errRangeNotSupported
		case http.StatusRequestedRangeNotSatisfiable:
			return errRangeNotSupported
		default:
			return fmt.Errorf("chunked: unexpected status %s", resp.Status)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	return data, err
}

func buildChunkRanges(start, total int64) []chunkRange {
	var ranges []chunkRange
	idx := 0
	for lo := start; lo < total; lo += ChunkSize {
		hi := lo + ChunkSize - 1
		if hi >= total {
			hi = total - 1
		}
		ranges = append(ranges, chunkRange{index: idx, lo: lo, hi: hi})
		idx++
	}
	return ranges
}
