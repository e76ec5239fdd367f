package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quizhost-go/quizhost/pkg/core/providers/gemini"
)

// ContentClient is the slice of the Gemini provider the generator needs.
type ContentClient interface {
	GenerateContent(ctx context.Context, model string, req *gemini.Request) (*gemini.Response, error)
}

// Generator produces search-grounded trivia questions.
type Generator struct {
	client ContentClient
	model  string
	logger zerolog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithModel overrides the generation model.
func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		g.model = model
	}
}

// WithLogger sets the generator's logger.
func WithLogger(logger zerolog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator backed by the given client.
func NewGenerator(client ContentClient, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client: client,
		model:  gemini.DefaultTextModel,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// fallbackQuestion keeps the game playable when generation fails entirely.
var fallbackQuestion = Question{
	Question: "Which planet in our solar system has the most moons?",
	Answer:   "Saturn",
	Context:  "Saturn overtook Jupiter after a wave of small-moon discoveries.",
}

const promptTemplate = `You are a trivia question writer. Using up-to-date information, write %d trivia questions about %q.

Return ONLY a JSON object with this exact shape, no prose and no markdown:
{"questions":[{"question":"...","answer":"...","context":"one-sentence fun fact"}]}

Rules:
- Answers must be short and unambiguous.
- Questions must be answerable without seeing the sources.
- Vary difficulty from easy to hard.`

// questionList mirrors the wire shape of the generation response.
type questionList struct {
	Questions []Question `json:"questions"`
}

// Generate produces n questions about topic, with deduplicated grounding
// sources. Generation failures degrade to a single fallback question with no
// sources; the error is logged, never returned.
func (g *Generator) Generate(ctx context.Context, topic string, n int) ([]Question, []Source) {
	if n <= 0 {
		n = 5
	}

	req := gemini.TextRequest(fmt.Sprintf(promptTemplate, n, topic))
	req.Tools = []gemini.Tool{{GoogleSearch: &gemini.GoogleSearch{}}}

	resp, err := g.client.GenerateContent(ctx, g.model, req)
	if err != nil {
		g.logger.Error().Err(err).Str("topic", topic).Msg("question generation failed, using fallback")
		return []Question{fallbackQuestion}, nil
	}

	questions, err := parseQuestions(resp.Text())
	if err != nil {
		g.logger.Error().Err(err).Str("topic", topic).Msg("question parsing failed, using fallback")
		return []Question{fallbackQuestion}, nil
	}

	var sources []Source
	for _, web := range resp.SourceURIs() {
		sources = append(sources, Source{URI: web.URI, Title: web.Title})
	}
	return questions, sources
}

// parseQuestions decodes the model's JSON reply, tolerating markdown fences.
func parseQuestions(text string) ([]Question, error) {
	var list questionList
	if err := json.Unmarshal([]byte(StripFences(text)), &list); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(list.Questions) == 0 {
		return nil, fmt.Errorf("response contained no questions")
	}
	for i, q := range list.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("question %d is missing question or answer text", i)
		}
	}
	return list.Questions, nil
}

// StripFences removes a wrapping markdown code fence (```json ... ``` or
// ``` ... ```) if present. Content without fences passes through unchanged.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
