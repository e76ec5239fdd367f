// Package gemini implements a minimal client for the Google Gemini API:
// text generation with Google Search grounding and single-shot speech
// synthesis. The live bidirectional API lives in pkg/core/live.
package gemini

import (
	"context"
	"net/http"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTextModel answers generate-content requests.
	DefaultTextModel = "gemini-2.5-flash"

	// DefaultTTSModel produces speech audio from text.
	DefaultTTSModel = "gemini-2.5-flash-preview-tts"
)

// Provider talks to the Gemini REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// GenerateContent sends a non-streaming request to the given model.
func (p *Provider) GenerateContent(ctx context.Context, model string, req *Request) (*Response, error) {
	body, err := p.doRequest(ctx, model, req)
	if err != nil {
		return nil, err
	}
	return parseResponse(body)
}
