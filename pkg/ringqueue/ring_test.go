package ringqueue

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingCapacity(t *testing.T) {
	const k = 7
	r := New[int](k)
	assert.Equal(t, k, r.Cap())
	assert.Len(t, r.buf, k+1)

	for i := 0; i < k; i++ {
		require.True(t, r.Push(i), "push %d", i)
	}
	assert.False(t, r.Push(k), "push beyond capacity must fail")
	assert.True(t, r.WasFull())
	assert.Equal(t, k, r.Len())

	for i := 0; i < k; i++ {
		v, ok := r.Pop()
		require.True(t, ok, "pop %d", i)
		assert.Equal(t, i, v)
	}
	_, ok := r.Pop()
	assert.False(t, ok, "pop from empty ring must fail")
	assert.True(t, r.WasEmpty())
}

func TestRingWrapsAround(t *testing.T) {
	r := New[int](3)
	next := 0
	for round := 0; round < 10; round++ {
		for i := 0; i < 2; i++ {
			require.True(t, r.Push(next+i))
		}
		for i := 0; i < 2; i++ {
			v, ok := r.Pop()
			require.True(t, ok)
			assert.Equal(t, next+i, v)
		}
		next += 2
	}
	assert.Equal(t, 0, r.Len())
}

func TestRingReleasesPoppedSlot(t *testing.T) {
	r := New[*int](1)
	v := 1
	r.Push(&v)
	r.Pop()
	assert.Nil(t, r.buf[0])
}

func TestRingSPSC(t *testing.T) {
	const n = 100_000
	r := New[int](64)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; {
			if !r.Push(i) {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	for want := 0; want < n; {
		v, ok := r.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if v != want {
			t.Fatalf("out of order: got %d want %d", v, want)
		}
		want++
	}
	<-done
}

func TestPushWaitGivesUp(t *testing.T) {
	r := New[int](1)
	require.True(t, r.Push(1))

	b := BackoffConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  10 * time.Millisecond,
	}.NewBackOff()

	err := r.PushWait(context.Background(), 2, b)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPushWaitSucceedsOnceDrained(t *testing.T) {
	r := New[int](1)
	require.True(t, r.Push(1))

	go func() {
		time.Sleep(5 * time.Millisecond)
		r.Pop()
	}()

	b := BackoffConfig{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}.NewBackOff()
	require.NoError(t, r.PushWait(context.Background(), 2, b))

	v, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestPushWaitContextCanceled(t *testing.T) {
	r := New[int](1)
	r.Push(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := BackoffConfig{InitialInterval: time.Millisecond}.NewBackOff()
	err := r.PushWait(ctx, 2, b)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPopWait(t *testing.T) {
	r := New[int](4)
	b := BackoffConfig{
		InitialInterval: time.Millisecond,
		MaxElapsedTime:  5 * time.Millisecond,
	}.NewBackOff()

	_, ok, err := r.PopWait(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, ok)

	r.Push(9)
	v, ok, err := r.PopWait(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestPopWaitContextCanceled(t *testing.T) {
	r := New[int](4)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	b := BackoffConfig{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}.NewBackOff()
	_, ok, err := r.PopWait(ctx, b)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
}

func BenchmarkRingPushPop(b *testing.B) {
	r := New[int](1024)
	for i := 0; i < b.N; i++ {
		r.Push(i)
		r.Pop()
	}
}
