package audio

import "sync"

// Buffer accumulates captured PCM and hands it back in fixed-size
// frames. Capacity is bounded: when a producer outruns the consumer the
// oldest audio is discarded, so a stalled reader resumes near real time
// instead of replaying a backlog.
type Buffer struct {
	mu        sync.Mutex
	cond      *sync.Cond
	data      []byte
	frameSize int
	max       int
	closed    bool
}

// NewBuffer creates a buffer emitting frames of frameSize bytes,
// retaining at most maxFrames frames of backlog.
func NewBuffer(frameSize, maxFrames int) *Buffer {
	if maxFrames < 1 {
		maxFrames = 1
	}
	b := &Buffer{
		frameSize: frameSize,
		max:       frameSize * maxFrames,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Push appends captured audio, discarding the oldest bytes when the
// backlog limit is exceeded. Push after Close is a no-op.
func (b *Buffer) Push(pcm []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.data = append(b.data, pcm...)
	if overflow := len(b.data) - b.max; overflow > 0 {
		b.data = b.data[overflow:]
	}
	if len(b.data) >= b.frameSize {
		b.cond.Signal()
	}
}

// ReadFrame blocks until a full frame is available and returns it.
// Returns nil after Close.
func (b *Buffer) ReadFrame() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.data) < b.frameSize && !b.closed {
		b.cond.Wait()
	}
	if b.closed {
		return nil
	}

	frame := make([]byte, b.frameSize)
	copy(frame, b.data)
	b.data = b.data[b.frameSize:]
	return frame
}

// Buffered returns the bytes currently accumulated.
func (b *Buffer) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Close unblocks any waiting reader.
func (b *Buffer) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cond.Broadcast()
}
