package downloader

import (
	"context"
)

// Status is the lifecycle state of a Controller-driven download.
type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusCancelled
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCancelled:
		return "cancelled"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Controller wraps a Downloader with external pause/resume/cancel, for
// callers that need to steer a long-running chunked transfer from another
// goroutine rather than only observing it.
type Controller struct {
	d *Downloader
}

// NewControlled wires pause/resume/cancel plumbing into d and returns a
// Controller for driving it. Send still runs on the caller's own
// goroutine; Pause/Resume/Cancel are safe to call concurrently with it.
func NewControlled(d *Downloader) *Controller {
	return &Controller{d: d}
}

// Pause enqueues a CommandPause onto the transfer's FIFO command queue. The
// transfer stops issuing new reads/range requests once it drains the
// command, at the next chunk boundary; already in-flight chunk requests are
// not interrupted.
func (c *Controller) Pause() {
	_ = c.d.hooks.commands.Sender().Send(CommandPause)
}

// Resume enqueues a CommandResume, releasing a paused transfer once drained.
func (c *Controller) Resume() {
	_ = c.d.hooks.commands.Sender().Send(CommandResume)
}

// Cancel enqueues a CommandCancel. Send then returns ErrCancelled, on
// either path, once the transfer drains the command at its next chunk
// boundary.
func (c *Controller) Cancel() {
	_ = c.d.hooks.commands.Sender().Send(CommandCancel)
}

// Status reports the controller's best-effort view of the transfer. It
// drains any commands queued since the last check before reporting, so it
// reflects a Pause/Resume/Cancel call immediately even if the transfer
// itself hasn't reached its next chunk boundary yet.
func (c *Controller) Status() Status {
	c.d.hooks.drainCommands()
	if c.d.hooks.isFinished() {
		return StatusFinished
	}
	if c.d.hooks.cancelRequested() {
		return StatusCancelled
	}
	if paused, ok := c.d.hooks.paused.GetCurrent(); ok && paused {
		return StatusPaused
	}
	return StatusRunning
}

// Send delegates to the wrapped Downloader.
func (c *Controller) Send(ctx context.Context) (*Result, error) {
	return c.d.Send(ctx)
}
