package reactive

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockProperty_WaitUntilBlocksUntilPredicateHolds(t *testing.T) {
	lp := NewLockProperty(0)

	done := make(chan int, 1)
	go func() {
		v, err := lp.WaitUntil(func(n int) bool { return n >= 10 })
		require.NoError(t, err)
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	lp.Update(5)
	time.Sleep(10 * time.Millisecond)
	lp.Update(10)

	select {
	case v := <-done:
		assert.Equal(t, 10, v)
	case <-time.After(time.Second):
		t.Fatal("WaitUntil did not wake after predicate satisfied")
	}
}

func TestLockProperty_WaitUntilReturnsImmediatelyIfAlreadySatisfied(t *testing.T) {
	lp := NewLockProperty(10)

	v, err := lp.WaitUntil(func(n int) bool { return n == 10 })
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestLockProperty_NoLostWakeup(t *testing.T) {
	// Regression test for the register-before-check-before-suspend pattern:
	// even if Update races with WaitUntil's first predicate check, the
	// waiter must still observe it rather than blocking forever.
	for i := 0; i < 50; i++ {
		lp := NewLockProperty(0)
		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			lp.Update(1)
		}()

		go func() {
			defer wg.Done()
			_, err := lp.WaitUntil(func(n int) bool { return n == 1 })
			assert.NoError(t, err)
		}()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("lost wakeup: WaitUntil never observed the update")
		}
	}
}

func TestLockProperty_DestroyWakesWaitersWithError(t *testing.T) {
	lp := NewLockProperty("x")

	done := make(chan error, 1)
	go func() {
		_, err := lp.WaitUntil(func(string) bool { return false })
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	lp.Destroy()

	err := <-done
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestLockProperty_TryUpdateReportsContention(t *testing.T) {
	lp := NewLockProperty(1)

	lp.mu.Lock()
	ok, err := lp.TryUpdate(2)
	lp.mu.Unlock()

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLockProperty_UpdateAfterDestroyFails(t *testing.T) {
	lp := NewLockProperty(1)
	lp.Destroy()

	err := lp.Update(2)
	assert.ErrorIs(t, err, ErrDestroyed)
}
