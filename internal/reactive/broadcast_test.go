package reactive

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_BorrowReturnsLatest(t *testing.T) {
	p := NewProperty(1)

	v, ok := p.Borrow()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	p.Update(2)
	v, ok = p.Borrow()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestProperty_WatcherObservesNextUpdate(t *testing.T) {
	p := NewProperty(0)
	w := p.Watch()

	var got int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := w.Changed()
		require.NoError(t, err)
		got = v
	}()

	time.Sleep(10 * time.Millisecond)
	p.Update(42)
	wg.Wait()

	assert.Equal(t, 42, got)
}

func TestProperty_CloseWakesWatchersWithError(t *testing.T) {
	p := NewProperty("hello")
	w := p.Watch()

	done := make(chan error, 1)
	go func() {
		_, err := w.Changed()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	p.Close()

	err := <-done
	assert.ErrorIs(t, err, ErrWatcherClosed)
}

func TestProperty_UpdateAfterCloseIsNoop(t *testing.T) {
	p := NewProperty(1)
	p.Close()
	p.Update(99)

	v, ok := p.Borrow()
	require.True(t, ok)
	assert.Equal(t, 1, v, "Update must be ignored once closed")
}

func TestProperty_UpdateFieldMutatesInPlace(t *testing.T) {
	type counter struct{ n int }
	p := NewProperty(counter{n: 1})

	p.UpdateField(func(c counter) counter {
		c.n += 10
		return c
	})

	v, ok := p.Borrow()
	require.True(t, ok)
	assert.Equal(t, 11, v.n)
}

func TestProperty_CollapsesIntermediateValues(t *testing.T) {
	p := NewProperty(0)
	w := p.Watch()

	readyToUpdate := make(chan struct{})
	go func() {
		<-readyToUpdate
		for i := 1; i <= 5; i++ {
			p.Update(i)
		}
	}()

	close(readyToUpdate)
	time.Sleep(20 * time.Millisecond)

	v, err := w.Changed()
	require.NoError(t, err)
	assert.Equal(t, 5, v, "a slow watcher only observes the latest value")
}
