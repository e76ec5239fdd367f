package live

// Event is a session event delivered on Session.Events().
type Event interface {
	EventType() string
}

// AudioChunkEvent carries a chunk of model speech as raw PCM in the
// session's output format.
type AudioChunkEvent struct {
	PCM []byte
}

func (*AudioChunkEvent) EventType() string { return "audio_chunk" }

// TurnCompleteEvent signals that the model finished its current turn.
type TurnCompleteEvent struct{}

func (*TurnCompleteEvent) EventType() string { return "turn_complete" }

// InterruptedEvent signals that the model's turn was cut off by user
// speech. Any buffered or scheduled playback should be discarded.
type InterruptedEvent struct{}

func (*InterruptedEvent) EventType() string { return "interrupted" }

// ErrorEvent reports a session error. The session keeps running unless
// a ClosedEvent follows.
type ErrorEvent struct {
	Err error
}

func (*ErrorEvent) EventType() string { return "error" }

// ClosedEvent is the final event on the channel. Reason is empty for a
// clean local close.
type ClosedEvent struct {
	Reason string
}

func (*ClosedEvent) EventType() string { return "closed" }
