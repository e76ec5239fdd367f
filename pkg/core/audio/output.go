package audio

import (
	"sync"
)

// OutputConfig configures audio output buffering behavior.
type OutputConfig struct {
	// MinBufferMs is the minimum audio to buffer before emitting the first chunk.
	// This prevents glitches when the first chunk of a turn is small.
	// Default: 50ms. Set to 0 to disable pre-buffering.
	MinBufferMs int

	// ChannelSize is the buffer size for the chunks channel. Default: 20.
	ChannelSize int
}

// DefaultOutputConfig returns the default output configuration.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		MinBufferMs: 50,
		ChannelSize: 20,
	}
}

// Output manages streamed playback audio with built-in pre-buffering and an
// explicit flush signal for server-driven interruption.
//
// Usage:
//
//	for {
//	    select {
//	    case chunk := <-out.Chunks():
//	        speaker.Write(chunk)
//	    case <-out.Flush():
//	        speaker.Clear()
//	    }
//	}
type Output struct {
	config OutputConfig
	format Config

	chunks chan []byte
	flush  chan struct{}

	mu          sync.Mutex
	buffer      []byte
	bufferReady bool
	closed      bool
}

// NewOutput creates an Output for the given audio format.
func NewOutput(format Config, config OutputConfig) *Output {
	if config.MinBufferMs == 0 && config.ChannelSize == 0 {
		config = DefaultOutputConfig()
	}
	if config.ChannelSize == 0 {
		config.ChannelSize = 20
	}

	return &Output{
		config: config,
		format: format,
		chunks: make(chan []byte, config.ChannelSize),
		flush:  make(chan struct{}, 1),
	}
}

// Chunks returns a channel that emits audio ready for playback. Audio is
// pre-buffered according to MinBufferMs before the first chunk is emitted.
// After each flush, pre-buffering resets for the next stream.
func (o *Output) Chunks() <-chan []byte {
	return o.chunks
}

// Flush returns a channel that signals when the sink should discard its
// buffered audio, i.e. when the server reports an interruption.
func (o *Output) Flush() <-chan struct{} {
	return o.flush
}

// Push appends received audio. It emits to Chunks once pre-buffering is
// satisfied.
func (o *Output) Push(data []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.buffer = append(o.buffer, data...)

	minBytes := o.format.BytesForDurationMs(o.config.MinBufferMs)
	if !o.bufferReady && len(o.buffer) >= minBytes {
		o.bufferReady = true
	}

	if o.bufferReady && len(o.buffer) > 0 {
		chunk := o.buffer
		o.buffer = nil
		select {
		case o.chunks <- chunk:
		default:
			// Channel full; keep the data for the next push.
			o.buffer = chunk
		}
	}
}

// DoFlush discards buffered audio, drains pending chunks and signals the sink.
func (o *Output) DoFlush() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.buffer = nil
	o.bufferReady = false
	o.mu.Unlock()

	for {
		select {
		case <-o.chunks:
			continue
		default:
		}
		break
	}

	select {
	case o.flush <- struct{}{}:
	default:
		// A flush signal is already pending.
	}
}

// Close closes the output channels.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	close(o.chunks)
	close(o.flush)
}
