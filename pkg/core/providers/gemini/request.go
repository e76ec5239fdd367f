package gemini

// Request is the Gemini generate-content request body.
// Note: the Gemini API uses camelCase for JSON field names.
type Request struct {
	Contents          []Content  `json:"contents"`
	SystemInstruction *Content   `json:"systemInstruction,omitempty"`
	Tools             []Tool     `json:"tools,omitempty"`
	GenerationConfig  *GenConfig `json:"generationConfig,omitempty"`
}

// Content represents a content object in Gemini format.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Part is a single part within content.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob represents inline binary data.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

// Tool represents a tool definition.
type Tool struct {
	GoogleSearch *GoogleSearch `json:"googleSearch,omitempty"`
}

// GoogleSearch enables Google Search grounding.
type GoogleSearch struct{}

// GenConfig contains generation configuration.
type GenConfig struct {
	Temperature        *float64      `json:"temperature,omitempty"`
	MaxOutputTokens    *int          `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType   string        `json:"responseMimeType,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// SpeechConfig selects the synthesis voice for audio responses.
type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

// VoiceConfig wraps the prebuilt voice selection.
type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// PrebuiltVoiceConfig names one of the vendor's prebuilt voices.
type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

// TextRequest builds a single-turn user request with the given prompt.
func TextRequest(prompt string) *Request {
	return &Request{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: prompt}},
		}},
	}
}

// SpeechRequest builds a TTS request for the given text and voice name.
func SpeechRequest(text, voice string) *Request {
	req := TextRequest(text)
	req.GenerationConfig = &GenConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &SpeechConfig{
			VoiceConfig: &VoiceConfig{
				PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	return req
}
