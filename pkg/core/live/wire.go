package live

// Wire types for the BidiGenerateContent websocket protocol. The
// client sends exactly one setup frame, then realtime input frames;
// the server replies with a setupComplete frame followed by server
// content frames.

type clientFrame struct {
	Setup         *setupFrame         `json:"setup,omitempty"`
	RealtimeInput *realtimeInputFrame `json:"realtimeInput,omitempty"`
}

type setupFrame struct {
	Model             string           `json:"model"`
	GenerationConfig  *generationConf  `json:"generationConfig,omitempty"`
	SystemInstruction *wireInstruction `json:"systemInstruction,omitempty"`
}

type generationConf struct {
	ResponseModalities []string         `json:"responseModalities,omitempty"`
	SpeechConfig       *wireSpeechConf  `json:"speechConfig,omitempty"`
}

type wireSpeechConf struct {
	VoiceConfig wireVoiceConf `json:"voiceConfig"`
}

type wireVoiceConf struct {
	PrebuiltVoiceConfig wirePrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type wirePrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type wireInstruction struct {
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text       string    `json:"text,omitempty"`
	InlineData *wireBlob `json:"inlineData,omitempty"`
}

type wireBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type realtimeInputFrame struct {
	MediaChunks []mediaChunk `json:"mediaChunks"`
}

type mediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type serverFrame struct {
	SetupComplete *struct{}           `json:"setupComplete,omitempty"`
	ServerContent *serverContentFrame `json:"serverContent,omitempty"`
}

type serverContentFrame struct {
	ModelTurn    *wireModelTurn `json:"modelTurn,omitempty"`
	TurnComplete bool           `json:"turnComplete,omitempty"`
	Interrupted  bool           `json:"interrupted,omitempty"`
}

type wireModelTurn struct {
	Parts []wirePart `json:"parts"`
}

// newSetupFrame builds the opening frame for a session.
func newSetupFrame(cfg SessionConfig) *clientFrame {
	setup := &setupFrame{
		Model: "models/" + cfg.Model,
		GenerationConfig: &generationConf{
			ResponseModalities: []string{"AUDIO"},
		},
	}
	if cfg.Voice != "" {
		setup.GenerationConfig.SpeechConfig = &wireSpeechConf{
			VoiceConfig: wireVoiceConf{
				PrebuiltVoiceConfig: wirePrebuiltVoice{VoiceName: cfg.Voice},
			},
		}
	}
	if cfg.SystemInstruction != "" {
		setup.SystemInstruction = &wireInstruction{
			Parts: []wirePart{{Text: cfg.SystemInstruction}},
		}
	}
	return &clientFrame{Setup: setup}
}
