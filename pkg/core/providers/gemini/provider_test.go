package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateContent(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi "},{"text":"there"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	resp, err := p.GenerateContent(context.Background(), "gemini-2.5-flash", TextRequest("hello"))
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header: got %q", gotKey)
	}
	if resp.Text() != "hi there" {
		t.Errorf("text: got %q, want %q", resp.Text(), "hi there")
	}
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := New("k", WithBaseURL(server.URL))
	if _, err := p.GenerateContent(context.Background(), "m", TextRequest("x")); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestGenerateContent_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantType  ErrorType
		retryable bool
	}{
		{
			name:     "invalid argument",
			status:   400,
			body:     `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`,
			wantType: ErrInvalidRequest,
		},
		{
			name:      "rate limited",
			status:    429,
			body:      `{"error":{"code":429,"message":"slow down","status":"RESOURCE_EXHAUSTED"}}`,
			wantType:  ErrRateLimit,
			retryable: true,
		},
		{
			name:      "unavailable",
			status:    503,
			body:      `{"error":{"code":503,"message":"try later","status":"UNAVAILABLE"}}`,
			wantType:  ErrOverloaded,
			retryable: true,
		},
		{
			name:     "unparseable body",
			status:   500,
			body:     `gateway exploded`,
			wantType: ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := New("k", WithBaseURL(server.URL))
			_, err := p.GenerateContent(context.Background(), "m", TextRequest("x"))
			if err == nil {
				t.Fatal("expected error")
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("type: got %s, want %s", apiErr.Type, tt.wantType)
			}
			if apiErr.IsRetryable() != tt.retryable {
				t.Errorf("retryable: got %v, want %v", apiErr.IsRetryable(), tt.retryable)
			}
		})
	}
}

func TestResponse_InlineAudio(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	resp := &Response{Candidates: []Candidate{{
		Content: Content{Parts: []Part{
			{InlineData: &Blob{MIMEType: "audio/pcm;rate=24000", Data: base64.StdEncoding.EncodeToString(pcm)}},
		}},
	}}}

	got, err := resp.InlineAudio()
	if err != nil {
		t.Fatalf("InlineAudio: %v", err)
	}
	if string(got) != string(pcm) {
		t.Errorf("audio: got %v, want %v", got, pcm)
	}
}

func TestResponse_InlineAudio_None(t *testing.T) {
	resp := &Response{Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "no audio"}}}}}}
	got, err := resp.InlineAudio()
	if err != nil {
		t.Fatalf("InlineAudio: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil audio, got %d bytes", len(got))
	}
}

func TestResponse_SourceURIs_Dedupes(t *testing.T) {
	resp := &Response{Candidates: []Candidate{{
		GroundingMetadata: &GroundingMetadata{GroundingChunks: []GroundingChunk{
			{Web: &WebChunk{URI: "https://a.example", Title: "A"}},
			{Web: &WebChunk{URI: "https://b.example", Title: "B"}},
			{Web: &WebChunk{URI: "https://a.example", Title: "A again"}},
			{Web: nil},
			{Web: &WebChunk{URI: "  "}},
		}},
	}}}

	got := resp.SourceURIs()
	if len(got) != 2 {
		t.Fatalf("expected 2 sources, got %d: %+v", len(got), got)
	}
	if got[0].URI != "https://a.example" || got[1].URI != "https://b.example" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestSpeechRequest(t *testing.T) {
	req := SpeechRequest("Welcome to the show", "Kore")
	if req.GenerationConfig == nil || len(req.GenerationConfig.ResponseModalities) != 1 ||
		req.GenerationConfig.ResponseModalities[0] != "AUDIO" {
		t.Errorf("response modalities: %+v", req.GenerationConfig)
	}
	voice := req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName
	if voice != "Kore" {
		t.Errorf("voice: got %q, want Kore", voice)
	}
}
