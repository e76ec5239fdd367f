// Package trivia holds the quiz domain: questions, host personalities and
// grounded question generation.
package trivia

import (
	"fmt"
	"strings"
)

// Question is a single generated trivia question. Immutable once created.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  string `json:"context,omitempty"`
}

// Source is a grounding citation backing the generated questions.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Personality selects the host's style and, one-to-one, the vendor voice
// used for speech.
type Personality string

const (
	PersonalityQuizmaster Personality = "quizmaster"
	PersonalityProfessor  Personality = "professor"
	PersonalityComedian   Personality = "comedian"
	PersonalityDramatic   Personality = "dramatic"
	PersonalityCheerful   Personality = "cheerful"
)

// Personalities lists every supported host personality.
func Personalities() []Personality {
	return []Personality{
		PersonalityQuizmaster,
		PersonalityProfessor,
		PersonalityComedian,
		PersonalityDramatic,
		PersonalityCheerful,
	}
}

// ParsePersonality resolves a case-insensitive personality name.
func ParsePersonality(s string) (Personality, error) {
	name := Personality(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range Personalities() {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown personality %q", s)
}

// VoiceName returns the prebuilt vendor voice for this personality.
func (p Personality) VoiceName() string {
	switch p {
	case PersonalityProfessor:
		return "Charon"
	case PersonalityComedian:
		return "Puck"
	case PersonalityDramatic:
		return "Fenrir"
	case PersonalityCheerful:
		return "Aoede"
	default:
		return "Zephyr"
	}
}

// Style returns the personality's speaking-style directive, embedded in
// prompts and live system instructions.
func (p Personality) Style() string {
	switch p {
	case PersonalityProfessor:
		return "a patient professor who adds a short scholarly aside after each answer"
	case PersonalityComedian:
		return "a stand-up comedian who can't resist a quick joke between questions"
	case PersonalityDramatic:
		return "an over-the-top dramatic narrator who treats every question like a season finale"
	case PersonalityCheerful:
		return "a relentlessly upbeat morning-show host who celebrates every answer"
	default:
		return "a polished game-show quizmaster with impeccable timing"
	}
}
