package audio

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testFormat() Config {
	return Config{SampleRate: 24000, Channels: 1, BitsPerSample: 16}
}

func TestScheduler_StartTimesMonotonic(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	cfg := testFormat()
	s := NewScheduler(cfg, nil, WithClock(clock))

	// Segments of 100ms, 20ms and 250ms arriving back to back, faster
	// than real time.
	sizes := []int{
		cfg.BytesForDurationMs(100),
		cfg.BytesForDurationMs(20),
		cfg.BytesForDurationMs(250),
	}

	var starts []time.Time
	var durations []time.Duration
	for _, n := range sizes {
		starts = append(starts, s.Schedule(make([]byte, n)))
		durations = append(durations, cfg.Duration(n))
	}

	for i := 1; i < len(starts); i++ {
		if starts[i].Before(starts[i-1]) {
			t.Errorf("start %d (%v) before start %d (%v)", i, starts[i], i-1, starts[i-1])
		}
		if want := starts[i-1].Add(durations[i-1]); starts[i].Before(want) {
			t.Errorf("segment %d starts at %v, want >= %v", i, starts[i], want)
		}
	}
}

func TestScheduler_FirstSegmentStartsNow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := NewScheduler(testFormat(), nil, WithClock(clock))

	start := s.Schedule(make([]byte, 480))
	if !start.Equal(clock.Now()) {
		t.Errorf("first segment starts at %v, want %v", start, clock.Now())
	}
}

func TestScheduler_IdleCursorDoesNotDelay(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	cfg := testFormat()
	s := NewScheduler(cfg, nil, WithClock(clock))

	s.Schedule(make([]byte, cfg.BytesForDurationMs(20)))

	// The first segment finished long ago; the next starts immediately,
	// not at the stale cursor.
	clock.Advance(5 * time.Second)
	start := s.Schedule(make([]byte, cfg.BytesForDurationMs(20)))
	if !start.Equal(clock.Now()) {
		t.Errorf("segment after idle starts at %v, want %v", start, clock.Now())
	}
}

func TestScheduler_InterruptStopsAndResetsCursor(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	cfg := testFormat()

	var mu sync.Mutex
	stopped := 0
	play := func(pcm []byte) func() {
		return func() {
			mu.Lock()
			stopped++
			mu.Unlock()
		}
	}
	s := NewScheduler(cfg, play, WithClock(clock))

	// First segment plays immediately; the rest are pending.
	s.Schedule(make([]byte, cfg.BytesForDurationMs(500)))
	s.Schedule(make([]byte, cfg.BytesForDurationMs(500)))
	s.Schedule(make([]byte, cfg.BytesForDurationMs(500)))

	// Let the immediate segment's timer fire.
	deadline := time.Now().Add(time.Second)
	for s.Pending() > 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	s.Interrupt()

	if got := s.Pending(); got != 0 {
		t.Errorf("pending after interrupt: got %d, want 0", got)
	}
	if !s.NextStart().IsZero() {
		t.Errorf("cursor after interrupt: got %v, want zero", s.NextStart())
	}

	mu.Lock()
	got := stopped
	mu.Unlock()
	if got != 1 {
		t.Errorf("stopped playing segments: got %d, want 1", got)
	}

	// Scheduling after an interrupt starts immediately.
	start := s.Schedule(make([]byte, 480))
	if !start.Equal(clock.Now()) {
		t.Errorf("post-interrupt segment starts at %v, want %v", start, clock.Now())
	}
}

// A segment whose play callback is mid-invocation when Interrupt fires must
// still be stopped, even though its stop handle was not yet registered.
func TestScheduler_InterruptDuringPlayStopsSegment(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	cfg := testFormat()

	var s *Scheduler
	stopped := make(chan struct{}, 1)
	play := func(pcm []byte) func() {
		// Interrupt races the stop registration: it runs after play is
		// invoked but before begin takes the lock again.
		s.Interrupt()
		return func() { stopped <- struct{}{} }
	}
	s = NewScheduler(cfg, play, WithClock(clock))

	s.Schedule(make([]byte, cfg.BytesForDurationMs(500)))

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("segment playing at Interrupt time was never stopped")
	}
	if !s.NextStart().IsZero() {
		t.Errorf("cursor after interrupt: got %v, want zero", s.NextStart())
	}
}
