package live

import (
	"fmt"
	"strings"

	"github.com/quizhost-go/quizhost/pkg/core/audio"
	"github.com/quizhost-go/quizhost/pkg/core/trivia"
)

// DefaultEndpoint is the bidirectional streaming endpoint for live
// voice sessions.
const DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// DefaultModel is the model used for live sessions.
const DefaultModel = "gemini-2.0-flash-exp"

// SessionConfig configures a live voice session.
type SessionConfig struct {
	// Model is the live model name. Defaults to DefaultModel.
	Model string

	// Voice is the prebuilt voice name for audio responses.
	Voice string

	// SystemInstruction primes the model for the conversation.
	SystemInstruction string

	// Input is the microphone audio format sent upstream.
	// Defaults to 16 kHz mono 16-bit.
	Input audio.Config

	// Output is the audio format the model responds with.
	// Defaults to 24 kHz mono 16-bit.
	Output audio.Config
}

func (c *SessionConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Input.SampleRate == 0 {
		c.Input = audio.DefaultCaptureConfig()
	}
	if c.Output.SampleRate == 0 {
		c.Output = audio.DefaultPlaybackConfig()
	}
}

// InputMIMEType returns the MIME type for upstream audio chunks.
func (c *SessionConfig) InputMIMEType() string {
	return fmt.Sprintf("audio/pcm;rate=%d", c.Input.SampleRate)
}

// HostInstruction builds a system instruction that makes the model run
// a trivia round: ask the prepared questions one at a time, judge the
// player's spoken answers, and keep score out loud.
func HostInstruction(topic string, personality trivia.Personality, questions []trivia.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the host of a voice trivia game about %q. ", topic)
	fmt.Fprintf(&b, "Play the part of %s.", personality.Style())
	b.WriteString("\n\nRun the game with these questions, in order:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s (answer: %s)\n", i+1, q.Question, q.Answer)
	}
	b.WriteString("\nAsk one question at a time and wait for the player to answer aloud. ")
	b.WriteString("Tell them whether they were right, give the correct answer when they miss, ")
	b.WriteString("and keep a running score. After the last question, announce the final score ")
	b.WriteString("and say goodbye. Keep every reply short enough to speak in a few seconds.")
	return b.String()
}
