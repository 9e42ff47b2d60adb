package downloader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rtx750ti/webdav-fs/internal/reactive"
)

// Hook observes a single download's lifecycle. Implementations embed
// BaseHook so they only need to override the callbacks they care about.
type Hook interface {
	// BeforeStart runs once before any bytes are requested. Returning an
	// error aborts the download with ErrHookAbort wrapping it.
	BeforeStart(ctx context.Context) error
	// OnChunk runs on every chunk of bytes read from the wire, in the
	// single-thread path in stream order and in the chunked path in
	// whatever order each range task completes.
	OnChunk(chunk []byte)
	// OnProgress runs after OnChunk with the cumulative bytes transferred.
	OnProgress(bytesDone uint64, total *uint64)
	// AfterComplete runs once after the transfer finishes successfully.
	AfterComplete()
}

// BaseHook is a no-op Hook embed for implementations that only need one or
// two of the callbacks.
type BaseHook struct{}

func (BaseHook) BeforeStart(ctx context.Context) error           { return nil }
func (BaseHook) OnChunk(chunk []byte)                            {}
func (BaseHook) OnProgress(bytesDone uint64, total *uint64)      {}
func (BaseHook) AfterComplete()                                  {}

// ControlCommand is one entry in the FIFO queue a Controller feeds into a
// running transfer; the downloader loop drains it at every chunk boundary
// and applies it to the cancel flag / paused property below.
type ControlCommand int

const (
	CommandPause ControlCommand = iota
	CommandResume
	CommandCancel
)

// hookContainer fans callbacks out to every registered hook and tracks a
// cooperative cancellation flag checked at chunk boundaries, since neither
// the single-thread reader loop nor the chunked range tasks can be
// interrupted mid-read any other way without closing the underlying
// connection. A Controller never touches cancel/paused/finished directly;
// it enqueues a ControlCommand, and drainCommands applies it the next time
// the transfer loop (or a Status query) polls.
type hookContainer struct {
	mu       sync.Mutex
	callMu   sync.Mutex // serializes OnChunk/OnProgress calls across chunk tasks
	hooks    []Hook
	cancel   atomic.Bool
	paused   *reactive.LockProperty[bool]
	commands *reactive.Queue[ControlCommand]
	finished atomic.Bool
}

func newHookContainer() *hookContainer {
	return &hookContainer{
		paused:   reactive.NewLockProperty(false),
		commands: reactive.NewQueue[ControlCommand](),
	}
}

func (c *hookContainer) add(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

func (c *hookContainer) snapshot() []Hook {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Hook, len(c.hooks))
	copy(out, c.hooks)
	return out
}

func (c *hookContainer) runBeforeStart(ctx context.Context) error {
	for _, h := range c.snapshot() {
		if err := h.BeforeStart(ctx); err != nil {
			return newErr(KindHookAbort, err)
		}
	}
	return nil
}

func (c *hookContainer) runOnChunk(chunk []byte) {
	c.callMu.Lock()
	defer c.callMu.Unlock()
	for _, h := range c.snapshot() {
		h.OnChunk(chunk)
	}
}

func (c *hookContainer) runOnProgress(bytesDone uint64, total *uint64) {
	c.callMu.Lock()
	defer c.callMu.Unlock()
	for _, h := range c.snapshot() {
		h.OnProgress(bytesDone, total)
	}
}

func (c *hookContainer) runAfterComplete() {
	for _, h := range c.snapshot() {
		h.AfterComplete()
	}
}

// requestCancel marks the download as cancel-requested. The reader and
// chunked task loops poll cancelRequested between chunks and return
// ErrCancelled once they observe it.
func (c *hookContainer) requestCancel() {
	c.cancel.Store(true)
}

func (c *hookContainer) cancelRequested() bool {
	c.drainCommands()
	return c.cancel.Load()
}

func (c *hookContainer) setPaused(paused bool) {
	_ = c.paused.Update(paused)
}

// drainCommands applies every ControlCommand a Controller has enqueued
// since the last drain. It never blocks: TryRecv returns immediately once
// the queue is empty.
func (c *hookContainer) drainCommands() {
	for {
		cmd, ok := c.commands.TryRecv()
		if !ok {
			return
		}
		switch cmd {
		case CommandPause:
			c.setPaused(true)
		case CommandResume:
			c.setPaused(false)
		case CommandCancel:
			c.requestCancel()
			c.setPaused(false) // unblock a paused transfer so it can observe the cancel
		}
	}
}

func (c *hookContainer) markFinished() {
	c.finished.Store(true)
}

func (c *hookContainer) isFinished() bool {
	return c.finished.Load()
}

// pausePollInterval bounds how long a paused transfer can sit before it
// notices a queued CommandResume; a Controller's Resume only enqueues the
// command; nothing else wakes a parked caller.
const pausePollInterval = 25 * time.Millisecond

// waitIfPaused blocks the caller (a reader loop or chunk task) while the
// download is paused, re-checking the paused property and draining any
// newly queued commands every pausePollInterval until Resume or Cancel
// clears it, or ctx is cancelled.
func (c *hookContainer) waitIfPaused(ctx context.Context) error {
	for {
		c.drainCommands()
		if paused, _ := c.paused.GetCurrent(); !paused {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pausePollInterval):
		}
	}
}
