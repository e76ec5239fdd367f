// Package game tracks the state of a trivia round. State is transient:
// a new round replaces the old one entirely.
package game

import (
	"strings"

	"github.com/quizhost-go/quizhost/pkg/core/trivia"
)

// Mode selects how a round is played.
type Mode string

const (
	// ModeClassic reads questions aloud and checks typed answers.
	ModeClassic Mode = "classic"

	// ModeLive hands hosting to a live voice session.
	ModeLive Mode = "live"
)

// State is one trivia round in progress. Not safe for concurrent use.
type State struct {
	mode        Mode
	topic       string
	personality trivia.Personality
	questions   []trivia.Question
	score       int
	index       int
}

// New starts a round over the given questions.
func New(mode Mode, topic string, personality trivia.Personality, questions []trivia.Question) *State {
	return &State{
		mode:        mode,
		topic:       topic,
		personality: personality,
		questions:   questions,
	}
}

// Mode returns the round's play mode.
func (s *State) Mode() Mode { return s.mode }

// Topic returns the round's topic.
func (s *State) Topic() string { return s.topic }

// Personality returns the host personality for the round.
func (s *State) Personality() trivia.Personality { return s.personality }

// Total returns the number of questions in the round.
func (s *State) Total() int { return len(s.questions) }

// Score returns the number of correct answers so far.
func (s *State) Score() int { return s.score }

// Index returns the zero-based position of the current question.
func (s *State) Index() int { return s.index }

// Current returns the question at the cursor, or false when the round
// is finished.
func (s *State) Current() (trivia.Question, bool) {
	if s.index >= len(s.questions) {
		return trivia.Question{}, false
	}
	return s.questions[s.index], true
}

// RecordAnswer checks the given answer against the current question,
// updates the score, and advances. It reports whether the answer was
// correct. Recording against a finished round is a no-op.
func (s *State) RecordAnswer(answer string) bool {
	q, ok := s.Current()
	if !ok {
		return false
	}
	correct := AnswersMatch(answer, q.Answer)
	if correct {
		s.score++
	}
	s.Advance()
	return correct
}

// Advance moves to the next question. The cursor never moves past the
// end of the list.
func (s *State) Advance() {
	if s.index < len(s.questions) {
		s.index++
	}
}

// Finished reports whether every question has been answered.
func (s *State) Finished() bool {
	return s.index >= len(s.questions)
}

// Reset rewinds the round to the first question with a zero score.
func (s *State) Reset() {
	s.score = 0
	s.index = 0
}

// AnswersMatch compares a player's answer to the expected one,
// ignoring case, surrounding space, and a leading article. The
// comparison is deliberately loose: this is for self-checking in a
// terminal, not adjudication.
func AnswersMatch(got, want string) bool {
	return normalizeAnswer(got) != "" && normalizeAnswer(got) == normalizeAnswer(want)
}

func normalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, article) {
			s = s[len(article):]
			break
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
