package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

const singleReadBufferSize = 32 * 1024

// sendSingle streams the resource with one GET, resuming from the local
// file's existing length via a Range header when SaveTo names a file that
// already exists. It is the path used whenever Chunked was not requested,
// and the only path available when the remote size is unknown.
func (d *Downloader) sendSingle(ctx context.Context) (*Result, error) {
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

	req, err := d.buildSingleRequest(ctx, resumeOffset)
	if err != nil {
		return nil, newErr(KindRequest, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, newErr(KindRequest, err)
	}
	defer resp.Body.Close()

	if resumeOffset > 0 && resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		return nil, ErrRangeNotSupported
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, newErrMsg(KindRequest, resp.Status)
	}
	// Server ignored the Range header and sent the whole body back; start
	// over from scratch rather than appending a duplicate prefix.
	if resumeOffset > 0 && resp.StatusCode == http.StatusOK {
		resumeOffset = 0
	}

	var (
		file    *os.File
		buf     *bytes.Buffer
		bytesDone = uint64(resumeOffset)
	)
	if d.cfg.savePath != "" {
		flag := os.O_WRONLY | os.O_CREATE
		if resumeOffset > 0 {
			flag |= os.O_APPEND
		} else {
			flag |= os.O_TRUNC
		}
		file, err = os.OpenFile(d.cfg.savePath, flag, 0o644)
		if err != nil {
			return nil, newErr(KindCreateFile, err)
		}
		defer file.Close()
	}
	if d.cfg.outputBytes {
		buf = &bytes.Buffer{}
	}

	d.publishProgress(bytesDone)

	reader := io.Reader(resp.Body)
	chunk := make([]byte, singleReadBufferSize)
	for {
		if d.hooks.cancelRequested() {
			removePartialFile(d.cfg.savePath)
			return nil, ErrCancelled
		}
		if err := d.hooks.waitIfPaused(ctx); err != nil {
			return nil, newErr(KindPaused, err)
		}

		n, readErr := reader.Read(chunk)
		if n > 0 {
			data := chunk[:n]
			if file != nil {
				if _, werr := file.Write(data); werr != nil {
					return nil, newErr(KindWriteFile, werr)
				}
			}
			if buf != nil {
				buf.Write(data)
			}
			bytesDone += uint64(n)
			d.hooks.runOnChunk(data)
			d.publishProgress(bytesDone)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, newErr(KindRequest, readErr)
		}
	}

	if file != nil {
		if err := file.Sync(); err != nil {
			return nil, newErr(KindFlushFile, err)
		}
	}

	result := &Result{Kind: ResultSaved}
	if buf != nil {
		result.Kind = ResultBytes
		result.Bytes = buf.Bytes()
	}
	return result, nil
}

func (d *Downloader) buildSingleRequest(ctx context.Context, resumeOffset int64) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, err
	}
	if resumeOffset > 0 {
		req.Header.Set("Range", rangeHeaderValue(resumeOffset, d.size))
	}
	return req, nil
}

// rangeHeaderValue builds a "bytes=lo-" (open-ended) range, or "bytes=lo-hi"
// when the total size is known, so a resumed GET still gets a well-formed
// Range header either way.
func rangeHeaderValue(lo int64, total *int64) string {
	if total == nil {
		return fmt.Sprintf("bytes=%d-", lo)
	}
	return fmt.Sprintf("bytes=%d-%d", lo, *total-1)
}

func localFileLength(path string) (int64, error) {
	if path == "" {
		return 0, nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// removePartialFile best-effort deletes the save-to destination after a
// cancelled or failed transfer, so a caller retrying the same path never
// mistakes a partial file for a complete one. Errors are ignored: if the
// file never existed (output-bytes mode, or nothing was written yet) or the
// remove itself fails, the caller's own error still takes precedence.
func removePartialFile(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
