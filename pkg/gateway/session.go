package gateway

import (
	"context"
	"encoding/base64"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizhost-go/quizhost/pkg/core/live"
	"github.com/quizhost-go/quizhost/pkg/core/trivia"
	"github.com/quizhost-go/quizhost/pkg/gateway/protocol"
)

// session bridges one client websocket to one upstream live session.
type session struct {
	id      string
	server  *Server
	conn    *websocket.Conn
	logger  zerolog.Logger
	started time.Time

	writeMu  sync.Mutex
	upstream LiveSession

	// Set when the client interrupts; the pump drops the rest of the
	// current turn's audio instead of relaying stale host speech.
	muted atomic.Bool
}

func newSession(server *Server, conn *websocket.Conn) *session {
	id := uuid.NewString()
	return &session{
		id:      id,
		server:  server,
		conn:    conn,
		logger:  server.logger.With().Str("session_id", id).Logger(),
		started: time.Now(),
	}
}

// run drives the session to completion and closes both connections.
func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	s.server.metrics.RecordSessionStart()
	status := "completed"
	defer func() {
		s.server.metrics.RecordSessionEnd(status, time.Since(s.started))
		s.logger.Info().Str("status", status).Dur("duration", time.Since(s.started)).Msg("session ended")
	}()

	hello, err := s.readHello()
	if err != nil {
		s.sendError(err, true)
		status = "rejected"
		return
	}

	personality := trivia.PersonalityQuizmaster
	if hello.Personality != "" {
		personality, err = trivia.ParsePersonality(hello.Personality)
		if err != nil {
			s.sendError(&protocol.DecodeError{Code: "bad_request", Message: err.Error(), Param: "personality"}, true)
			status = "rejected"
			return
		}
	}

	count := hello.QuestionCount
	if count == 0 {
		count = s.server.config.QuestionCount
	}
	if count > s.server.config.MaxQuestionCount {
		count = s.server.config.MaxQuestionCount
	}

	questions, sources := s.server.questions.Generate(ctx, hello.Topic, count)
	s.server.metrics.RecordQuestions(len(questions))
	s.logger.Info().Str("topic", hello.Topic).Int("questions", len(questions)).Msg("round prepared")

	upstream, err := s.server.connect(ctx, live.SessionConfig{
		Model:             s.server.config.LiveModel,
		Voice:             personality.VoiceName(),
		SystemInstruction: live.HostInstruction(hello.Topic, personality, questions),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("upstream connect failed")
		s.sendError(err, true)
		status = "upstream_failed"
		return
	}
	s.upstream = upstream
	defer upstream.Close()

	if err := s.sendHelloAck(hello, personality, questions, sources); err != nil {
		status = "failed"
		return
	}

	// The upstream event pump owns host-to-client traffic; this
	// goroutine reads client frames until either side ends.
	done := make(chan string, 1)
	go s.pumpUpstream(done)

	readStatus := s.readClientFrames()

	upstream.Close()
	if upstreamStatus := <-done; upstreamStatus != "" {
		readStatus = upstreamStatus
	}
	status = readStatus
}

func (s *session) readHello() (protocol.ClientHello, error) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return protocol.ClientHello{}, &protocol.DecodeError{Code: "bad_request", Message: "connection closed before hello"}
	}
	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		return protocol.ClientHello{}, err
	}
	hello, ok := msg.(protocol.ClientHello)
	if !ok {
		return protocol.ClientHello{}, &protocol.DecodeError{Code: "bad_request", Message: "first frame must be hello", Param: "type"}
	}
	return hello, nil
}

func (s *session) sendHelloAck(hello protocol.ClientHello, personality trivia.Personality, questions []trivia.Question, sources []trivia.Source) error {
	ack := protocol.ServerHelloAck{
		Type:            "hello_ack",
		ProtocolVersion: protocol.ProtocolVersion1,
		SessionID:       s.id,
		Topic:           hello.Topic,
		Personality:     string(personality),
		AudioIn:         hello.AudioIn,
		AudioOut:        hello.AudioOut,
	}
	for i, q := range questions {
		ack.Questions = append(ack.Questions, protocol.Question{Index: i, Question: q.Question})
	}
	for _, src := range sources {
		ack.Sources = append(ack.Sources, protocol.Source{URI: src.URI, Title: src.Title})
	}
	return s.writeJSON(ack)
}

// readClientFrames consumes client frames until the connection drops
// or the client ends the session. Returns the terminal status.
func (s *session) readClientFrames() string {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return "client_gone"
		}

		msg, err := protocol.DecodeClientMessage(data)
		if err != nil {
			if de, ok := err.(*protocol.DecodeError); ok {
				s.server.metrics.RecordProtocolError(de.Code)
			}
			s.sendError(err, false)
			continue
		}

		switch frame := msg.(type) {
		case protocol.ClientAudioFrame:
			pcm, err := base64.StdEncoding.DecodeString(frame.DataB64)
			if err != nil {
				s.server.metrics.RecordProtocolError("bad_request")
				s.sendError(&protocol.DecodeError{Code: "bad_request", Message: "audio_frame.data_b64 is not base64", Param: "data_b64"}, false)
				continue
			}
			s.server.metrics.RecordAudio("in", len(pcm))
			if err := s.upstream.SendAudio(pcm); err != nil {
				s.logger.Warn().Err(err).Msg("upstream send failed")
				return "upstream_failed"
			}

		case protocol.ClientControl:
			switch frame.Op {
			case "interrupt":
				s.muted.Store(true)
				s.writeJSON(protocol.ServerInterrupted{Type: "interrupted"})
			case "end_session":
				return "completed"
			}

		case protocol.ClientHello:
			s.sendError(&protocol.DecodeError{Code: "bad_request", Message: "session already started", Param: "type"}, false)
		}
	}
}

// pumpUpstream forwards upstream events to the client. It sends the
// terminal status on done, or "" when the upstream outlived the client.
func (s *session) pumpUpstream(done chan<- string) {
	var seq int64
	for event := range s.upstream.Events() {
		switch e := event.(type) {
		case *live.AudioChunkEvent:
			if s.muted.Load() {
				continue
			}
			seq++
			s.server.metrics.RecordAudio("out", len(e.PCM))
			s.writeJSON(protocol.ServerAudioChunk{
				Type:     "audio_chunk",
				Seq:      seq,
				AudioB64: base64.StdEncoding.EncodeToString(e.PCM),
			})
		case *live.TurnCompleteEvent:
			s.muted.Store(false)
			s.writeJSON(protocol.ServerTurnComplete{Type: "turn_complete"})
		case *live.InterruptedEvent:
			s.muted.Store(false)
			s.writeJSON(protocol.ServerInterrupted{Type: "interrupted"})
		case *live.ErrorEvent:
			s.logger.Warn().Err(e.Err).Msg("upstream error")
			s.sendError(e.Err, false)
		case *live.ClosedEvent:
			if e.Reason != "" {
				s.logger.Warn().Str("reason", e.Reason).Msg("upstream closed")
				s.sendError(&protocol.DecodeError{Code: "upstream_closed", Message: "connection interrupted"}, true)
				s.conn.Close()
				done <- "upstream_closed"
				return
			}
		}
	}
	done <- ""
}

func (s *session) sendError(err error, closeConn bool) {
	s.writeJSON(protocol.ErrorFrame(err, closeConn))
}

func (s *session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}
