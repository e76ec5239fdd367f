// Package live implements a client for bidirectional voice sessions
// over the BidiGenerateContent websocket protocol. Audio flows both
// ways: 16-bit PCM microphone chunks go up, synthesized speech chunks
// come back, with turn-complete and interruption signals in between.
package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Session is an open live voice session. Create one with Connect.
type Session struct {
	conn     *websocket.Conn
	config   SessionConfig
	endpoint string
	logger   zerolog.Logger

	writeMu sync.Mutex

	events chan Event
	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// SessionOption configures a Session before it connects.
type SessionOption func(*Session)

// WithSessionLogger sets the logger for session lifecycle and errors.
func WithSessionLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithEndpoint overrides the websocket endpoint. Mainly for tests.
func WithEndpoint(endpoint string) SessionOption {
	return func(s *Session) { s.endpoint = endpoint }
}

// Connect dials the live endpoint, performs setup, and waits for the
// server's setup acknowledgement before returning. The returned
// session is ready for SendAudio, and Events delivers the server's
// side of the conversation until the session closes.
func Connect(ctx context.Context, apiKey string, cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	cfg.applyDefaults()

	s := &Session{
		config:   cfg,
		logger:   zerolog.Nop(),
		endpoint: DefaultEndpoint,
		events:   make(chan Event, 64),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("live: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("live: dial: %w", err)
	}
	s.conn = conn

	if err := conn.WriteJSON(newSetupFrame(cfg)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("live: send setup: %w", err)
	}

	// The first server frame must acknowledge setup.
	var ack serverFrame
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("live: read setup ack: %w", err)
	}
	if ack.SetupComplete == nil {
		conn.Close()
		return nil, fmt.Errorf("live: expected setup ack, got %s", frameSummary(&ack))
	}

	s.logger.Debug().Str("model", cfg.Model).Str("voice", cfg.Voice).Msg("live session established")

	go s.readLoop()
	return s, nil
}

// Events returns the channel of session events. It is closed after a
// ClosedEvent is delivered.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SendAudio sends one chunk of microphone PCM in the session's input
// format.
func (s *Session) SendAudio(pcm []byte) error {
	if s.closed.Load() {
		return fmt.Errorf("live: session closed")
	}
	frame := &clientFrame{RealtimeInput: &realtimeInputFrame{
		MediaChunks: []mediaChunk{{
			MIMEType: s.config.InputMIMEType(),
			Data:     base64.StdEncoding.EncodeToString(pcm),
		}},
	}}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("live: send audio: %w", err)
	}
	return nil
}

// Close tears down the websocket. Safe to call more than once, and
// safe concurrently with SendAudio. The events channel is closed after
// the final ClosedEvent.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.quit)
	err := s.conn.Close()
	<-s.done
	return err
}

func (s *Session) readLoop() {
	defer func() {
		close(s.done)
		close(s.events)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				s.deliver(&ClosedEvent{})
				return
			}
			s.logger.Debug().Err(err).Msg("live session read failed")
			s.closed.Store(true)
			s.conn.Close()
			s.deliver(&ClosedEvent{Reason: err.Error()})
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.deliver(&ErrorEvent{Err: fmt.Errorf("live: decode frame: %w", err)})
			continue
		}
		s.handleFrame(&frame)
	}
}

func (s *Session) handleFrame(frame *serverFrame) {
	sc := frame.ServerContent
	if sc == nil {
		return
	}

	// An interruption invalidates the audio already delivered for the
	// current turn, so report it before any trailing chunks.
	if sc.Interrupted {
		s.deliver(&InterruptedEvent{})
	}

	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				s.deliver(&ErrorEvent{Err: fmt.Errorf("live: decode audio: %w", err)})
				continue
			}
			s.deliver(&AudioChunkEvent{PCM: pcm})
		}
	}

	if sc.TurnComplete {
		s.deliver(&TurnCompleteEvent{})
	}
}

// deliver blocks until the consumer takes the event. Audio ordering
// matters, so events are never dropped while the session is open.
func (s *Session) deliver(event Event) {
	select {
	case s.events <- event:
	case <-s.quit:
	}
}

func frameSummary(frame *serverFrame) string {
	switch {
	case frame.SetupComplete != nil:
		return "setupComplete"
	case frame.ServerContent != nil:
		return "serverContent"
	default:
		return "unknown frame"
	}
}
