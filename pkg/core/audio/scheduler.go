package audio

import (
	"sync"
	"time"
)

// Clock abstracts time for the scheduler so tests can control it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// PlayFunc starts immediate playback of one PCM segment and returns a stop
// function that halts it. The stop function must be safe to call after
// playback has already finished.
type PlayFunc func(pcm []byte) (stop func())

// Scheduler chains decoded audio segments back-to-back on a single monotonic
// next-start cursor. Segments may arrive faster than real time; each one is
// scheduled at max(cursor, now) and the cursor advances by the segment's
// duration, so playback is gapless, non-overlapping and in arrival order.
//
// Interrupt stops every scheduled or playing segment and resets the cursor,
// so the next segment starts immediately.
type Scheduler struct {
	cfg   Config
	clock Clock
	play  PlayFunc

	mu     sync.Mutex
	cursor time.Time
	nextID int64
	gen    int64
	timers map[int64]*time.Timer
	stops  map[int64]func()
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock overrides the scheduler's clock.
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// NewScheduler creates a playback scheduler for the given format.
// play is invoked when a segment's start time arrives.
func NewScheduler(cfg Config, play PlayFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		clock:  systemClock{},
		play:   play,
		timers: make(map[int64]*time.Timer),
		stops:  make(map[int64]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues one PCM segment for playback and returns its start time.
func (s *Scheduler) Schedule(pcm []byte) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	start := now
	if s.cursor.After(now) {
		start = s.cursor
	}
	s.cursor = start.Add(s.cfg.Duration(len(pcm)))

	s.nextID++
	id := s.nextID
	duration := s.cfg.Duration(len(pcm))

	s.timers[id] = time.AfterFunc(start.Sub(now), func() {
		s.begin(id, pcm, duration)
	})
	return start
}

func (s *Scheduler) begin(id int64, pcm []byte, duration time.Duration) {
	s.mu.Lock()
	if _, ok := s.timers[id]; !ok {
		// Interrupted before the start time arrived.
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	play := s.play
	gen := s.gen
	s.mu.Unlock()

	var stop func()
	if play != nil {
		stop = play(pcm)
	}

	s.mu.Lock()
	if s.gen != gen {
		// Interrupted while play was being invoked; the new stops map
		// will never see this segment, so stop it here.
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
		return
	}
	s.stops[id] = stop
	s.mu.Unlock()

	// Forget the segment once it has fully played out.
	time.AfterFunc(duration, func() {
		s.mu.Lock()
		delete(s.stops, id)
		s.mu.Unlock()
	})
}

// Interrupt stops all scheduled and playing segments and resets the cursor
// to zero. The next scheduled segment starts immediately.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	timers := s.timers
	stops := s.stops
	s.timers = make(map[int64]*time.Timer)
	s.stops = make(map[int64]func())
	s.cursor = time.Time{}
	s.gen++
	s.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	for _, stop := range stops {
		if stop != nil {
			stop()
		}
	}
}

// NextStart returns the current cursor. A zero time means the next segment
// starts immediately.
func (s *Scheduler) NextStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Pending returns the number of segments waiting for their start time.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
