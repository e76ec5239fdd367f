package tts

import (
	"context"
	"fmt"

	"github.com/quizhost-go/quizhost/pkg/core/audio"
	"github.com/quizhost-go/quizhost/pkg/core/providers/gemini"
)

// ContentClient is the slice of the Gemini provider the synthesizer needs.
type ContentClient interface {
	GenerateContent(ctx context.Context, model string, req *gemini.Request) (*gemini.Response, error)
}

// Gemini synthesizes speech with a Gemini TTS model. The endpoint returns
// base64 PCM at 24kHz mono 16-bit.
type Gemini struct {
	client ContentClient
	model  string
	format audio.Config
}

// NewGemini creates a synthesizer backed by the given client.
func NewGemini(client ContentClient) *Gemini {
	return &Gemini{
		client: client,
		model:  gemini.DefaultTTSModel,
		format: audio.DefaultPlaybackConfig(),
	}
}

// Synthesize requests one utterance in the given prebuilt voice.
func (g *Gemini) Synthesize(ctx context.Context, text, voice string) (Audio, error) {
	resp, err := g.client.GenerateContent(ctx, g.model, gemini.SpeechRequest(text, voice))
	if err != nil {
		return Audio{}, fmt.Errorf("synthesize: %w", err)
	}

	pcm, err := resp.InlineAudio()
	if err != nil {
		return Audio{}, fmt.Errorf("synthesize: %w", err)
	}
	if len(pcm) == 0 {
		return Audio{}, fmt.Errorf("synthesize: response carried no audio")
	}

	return Audio{PCM: pcm, Format: g.format}, nil
}
