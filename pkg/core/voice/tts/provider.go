// Package tts defines the speech synthesis interface and its Gemini
// implementation.
package tts

import (
	"context"
	"time"

	"github.com/quizhost-go/quizhost/pkg/core/audio"
)

// Audio is one synthesized utterance as raw PCM.
type Audio struct {
	PCM    []byte
	Format audio.Config
}

// Duration returns the playback duration of the utterance.
func (a Audio) Duration() time.Duration {
	return a.Format.Duration(len(a.PCM))
}

// Synthesizer converts text to speech audio with the given vendor voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (Audio, error)
}
