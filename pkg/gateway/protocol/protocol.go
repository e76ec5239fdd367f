// Package protocol defines the JSON frames spoken between a browser
// client and the gateway's live trivia endpoint.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const ProtocolVersion1 = "1"

// DecodeError is a protocol validation failure. It is safe to send its
// fields back to the client verbatim.
type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: "bad_request", Message: message, Param: param}
}

func unsupported(message, param string) *DecodeError {
	return &DecodeError{Code: "unsupported", Message: message, Param: param}
}

// AudioFormat describes one direction of the live audio stream.
type AudioFormat struct {
	Encoding     string `json:"encoding"`
	SampleRateHz int    `json:"sample_rate_hz"`
	Channels     int    `json:"channels"`
}

// ClientHello opens a session: the topic and personality to play, how
// many questions to prepare, and the audio formats the client speaks.
type ClientHello struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Topic           string      `json:"topic"`
	Personality     string      `json:"personality,omitempty"`
	QuestionCount   int         `json:"question_count,omitempty"`
	AudioIn         AudioFormat `json:"audio_in"`
	AudioOut        AudioFormat `json:"audio_out"`
}

// ClientAudioFrame carries one chunk of microphone PCM.
type ClientAudioFrame struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq,omitempty"`
	DataB64 string `json:"data_b64"`
}

// ClientControl carries an out-of-band operation. Op "interrupt" asks
// the gateway to stop relaying the host's current turn: the client gets
// an immediate interrupted frame and no further audio_chunk frames
// until the next turn starts. Op "end_session" closes the session.
type ClientControl struct {
	Type string `json:"type"`
	Op   string `json:"op"`
}

// DecodeClientMessage parses and validates one client frame. Errors
// are always *DecodeError.
func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("invalid json frame", "")
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, badRequest("missing type", "type")
	}

	switch typ {
	case "hello":
		var msg ClientHello
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid hello frame", "")
		}
		if err := ValidateHello(msg); err != nil {
			return nil, err
		}
		return msg, nil
	case "audio_frame":
		var msg ClientAudioFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid audio_frame", "")
		}
		if strings.TrimSpace(msg.DataB64) == "" {
			return nil, badRequest("audio_frame.data_b64 is required", "data_b64")
		}
		return msg, nil
	case "control":
		var msg ClientControl
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid control", "")
		}
		op := strings.TrimSpace(msg.Op)
		if op == "" {
			return nil, badRequest("control.op is required", "op")
		}
		switch op {
		case "interrupt", "end_session":
		default:
			return nil, unsupported("unsupported control operation", "op")
		}
		msg.Op = op
		return msg, nil
	default:
		return nil, badRequest("unsupported message type", "type")
	}
}

// ValidateHello checks the fields a session cannot start without.
func ValidateHello(msg ClientHello) error {
	if strings.TrimSpace(msg.ProtocolVersion) == "" {
		return badRequest("hello.protocol_version is required", "protocol_version")
	}
	if msg.ProtocolVersion != ProtocolVersion1 {
		return unsupported("unsupported protocol version", "protocol_version")
	}
	if strings.TrimSpace(msg.Topic) == "" {
		return badRequest("hello.topic is required", "topic")
	}
	if msg.QuestionCount < 0 {
		return badRequest("hello.question_count must be >= 0", "question_count")
	}
	if err := validateFormat(msg.AudioIn, "audio_in"); err != nil {
		return err
	}
	return validateFormat(msg.AudioOut, "audio_out")
}

func validateFormat(f AudioFormat, param string) error {
	if strings.TrimSpace(f.Encoding) == "" {
		return badRequest("hello."+param+".encoding is required", param+".encoding")
	}
	if f.Encoding != "pcm_s16le" {
		return unsupported("unsupported audio encoding", param+".encoding")
	}
	if f.SampleRateHz <= 0 {
		return badRequest("hello."+param+".sample_rate_hz must be > 0", param+".sample_rate_hz")
	}
	if f.Channels <= 0 {
		return badRequest("hello."+param+".channels must be > 0", param+".channels")
	}
	return nil
}

// Question is a prepared question as shown to the client. The answer
// stays server-side.
type Question struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
}

// Source is a grounding citation for the prepared questions.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// ServerHelloAck acknowledges a hello with the prepared round.
type ServerHelloAck struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Topic           string      `json:"topic"`
	Personality     string      `json:"personality"`
	Questions       []Question  `json:"questions"`
	Sources         []Source    `json:"sources,omitempty"`
	AudioIn         AudioFormat `json:"audio_in"`
	AudioOut        AudioFormat `json:"audio_out"`
}

// ServerAudioChunk carries one chunk of host speech.
type ServerAudioChunk struct {
	Type     string `json:"type"`
	Seq      int64  `json:"seq"`
	AudioB64 string `json:"audio_b64"`
}

// ServerTurnComplete signals the host finished a turn.
type ServerTurnComplete struct {
	Type string `json:"type"`
}

// ServerInterrupted tells the client to discard buffered host audio.
type ServerInterrupted struct {
	Type string `json:"type"`
}

// ServerError reports a session error. Close signals that the gateway
// will drop the connection.
type ServerError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	Close   bool   `json:"close,omitempty"`
}

// ErrorFrame builds a ServerError from any error, preserving
// DecodeError details when present.
func ErrorFrame(err error, closeConn bool) ServerError {
	frame := ServerError{Type: "error", Code: "internal", Message: err.Error(), Close: closeConn}
	if de, ok := err.(*DecodeError); ok {
		frame.Code = de.Code
		frame.Message = de.Message
		frame.Param = de.Param
	}
	return frame
}
