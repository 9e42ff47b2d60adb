package downloader

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/rtx750ti/webdav-fs/internal/webdav"
)

// RetryPolicy governs how a single chunk's range GET is retried on
// transient failure. The defaults match the teacher's progress/resume
// tooling's own conservative backoff: a handful of attempts, one second
// apart, doubling up to a ceiling.
type RetryPolicy struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	IsRetryable  func(error) bool
}

// DefaultRetryPolicy returns the policy used when a Downloader is not
// configured with one explicitly.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		IsRetryable:  defaultIsRetryable,
	}
}

func defaultIsRetryable(err error) bool {
	if errors.Is(err, errRangeNotSupported) {
		return false
	}
	var se *webdav.StatusError
	if errors.As(err, &se) {
		return se.IsTemporary()
	}
	return true
}

// run executes fn under the policy, retrying on errors that IsRetryable
// accepts and giving up immediately on the ones it rejects.
func (p RetryPolicy) run(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(p.MaxAttempts),
		retry.Delay(p.InitialDelay),
		retry.MaxDelay(p.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if p.IsRetryable == nil {
				return true
			}
			return p.IsRetryable(err)
		}),
	)
}
