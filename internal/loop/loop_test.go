package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsCallbacksInOrder(t *testing.T) {
	l := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Call(ctx, func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	cancel()
	require.NoError(t, <-done)
}

func TestLoopRecoversFromPanics(t *testing.T) {
	l := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Call(ctx, func() { ran = true }))
	assert.True(t, ran)
}

func TestLoopAfterFunc(t *testing.T) {
	l := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestLoopDropsPostsAfterStop(t *testing.T) {
	l := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	var ran atomic.Bool
	l.Post(func() { ran.Store(true) })
	assert.False(t, ran.Load())
}

func TestManualAdvanceFiresTimersInOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	var got []string
	m.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	stop := m.AfterFunc(200*time.Millisecond, func() { got = append(got, "b") })
	require.True(t, stop())
	require.False(t, stop())

	m.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1, m.PendingTimers())

	m.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, time.Unix(0, 0).Add(300*time.Millisecond), m.Now())
}

func TestManualTimerArmedByTimer(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	count := 0
	var tick func()
	tick = func() {
		count++
		m.AfterFunc(100*time.Millisecond, tick)
	}
	m.AfterFunc(100*time.Millisecond, tick)

	m.Advance(time.Second)
	assert.Equal(t, 10, count)
}

func TestManualDrainRunsNestedPosts(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var got []int
	m.Post(func() {
		got = append(got, 1)
		m.Post(func() { got = append(got, 2) })
	})
	assert.Equal(t, 2, m.Drain())
	assert.Equal(t, []int{1, 2}, got)
}
