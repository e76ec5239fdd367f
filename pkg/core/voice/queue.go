// Package voice sequences synthesized speech so utterances play one at
// a time, in the order they were enqueued.
package voice

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quizhost-go/quizhost/pkg/core/voice/tts"
)

// PlayFunc plays a synthesized utterance to completion. It is called
// from the queue's worker goroutine, never concurrently.
type PlayFunc func(a tts.Audio)

const defaultQueueSize = 16

// Queue synthesizes and plays utterances strictly in order. A single
// worker drains the queue, so utterance n+1 is not synthesized until
// utterance n has finished playing. Synthesis failures are logged and
// skipped so the queue never stalls.
type Queue struct {
	synth  tts.Synthesizer
	play   PlayFunc
	voice  string
	logger zerolog.Logger

	jobs chan string
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the logger used for synthesis failures.
func WithLogger(logger zerolog.Logger) QueueOption {
	return func(q *Queue) { q.logger = logger }
}

// WithQueueSize sets the number of utterances that can wait without
// blocking Enqueue.
func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan string, n)
		}
	}
}

// NewQueue starts the queue's worker. The worker runs until Close is
// called.
func NewQueue(synth tts.Synthesizer, voice string, play PlayFunc, opts ...QueueOption) *Queue {
	q := &Queue{
		synth:  synth,
		play:   play,
		voice:  voice,
		logger: zerolog.Nop(),
		jobs:   make(chan string, defaultQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

// Enqueue adds text to the queue. It blocks only when the queue buffer
// is full. Enqueue after Close is a no-op.
func (q *Queue) Enqueue(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.jobs <- text
}

// Close stops accepting work, waits for pending utterances to finish,
// and stops the worker.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for text := range q.jobs {
		audio, err := q.synth.Synthesize(context.Background(), text, q.voice)
		if err != nil {
			q.logger.Error().Err(err).Msg("speech synthesis failed, skipping utterance")
			continue
		}
		if len(audio.PCM) == 0 {
			continue
		}
		q.play(audio)
	}
}
