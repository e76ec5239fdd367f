package game

import (
	"testing"

	"github.com/quizhost-go/quizhost/pkg/core/trivia"
)

func testQuestions() []trivia.Question {
	return []trivia.Question{
		{Question: "Which planet has the most moons?", Answer: "Saturn"},
		{Question: "Who painted the Mona Lisa?", Answer: "Leonardo da Vinci"},
		{Question: "What is the largest ocean?", Answer: "The Pacific Ocean"},
	}
}

func TestRoundScoring(t *testing.T) {
	s := New(ModeClassic, "general", trivia.PersonalityQuizmaster, testQuestions())

	if s.Finished() {
		t.Fatal("new round should not be finished")
	}
	if q, ok := s.Current(); !ok || q.Answer != "Saturn" {
		t.Fatalf("Current: got %v, %v", q, ok)
	}

	if !s.RecordAnswer("saturn") {
		t.Error("case-insensitive match should score")
	}
	if s.RecordAnswer("Michelangelo") {
		t.Error("wrong answer should not score")
	}
	if !s.RecordAnswer("  pacific ocean ") {
		t.Error("article and whitespace should be ignored")
	}

	if !s.Finished() {
		t.Error("round should be finished")
	}
	if s.Score() != 2 {
		t.Errorf("score: got %d, want 2", s.Score())
	}
}

func TestIndexStaysInBounds(t *testing.T) {
	s := New(ModeClassic, "general", trivia.PersonalityQuizmaster, testQuestions())
	for i := 0; i < 10; i++ {
		s.Advance()
	}
	if s.Index() != s.Total() {
		t.Errorf("index: got %d, want %d", s.Index(), s.Total())
	}
	if s.RecordAnswer("Saturn") {
		t.Error("recording against a finished round should not score")
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should report no question after the end")
	}
}

func TestReset(t *testing.T) {
	s := New(ModeLive, "history", trivia.PersonalityComedian, testQuestions())
	s.RecordAnswer("Saturn")
	s.RecordAnswer("Leonardo da Vinci")

	s.Reset()
	if s.Score() != 0 || s.Index() != 0 {
		t.Errorf("after reset: score=%d index=%d", s.Score(), s.Index())
	}
	if s.Mode() != ModeLive || s.Topic() != "history" {
		t.Error("reset should not change mode or topic")
	}
}

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		got, want string
		match     bool
	}{
		{"Saturn", "Saturn", true},
		{"saturn", "SATURN", true},
		{"the Pacific Ocean", "Pacific Ocean", true},
		{"An apple", "apple", true},
		{"Leonardo  da  Vinci", "Leonardo da Vinci", true},
		{"Jupiter", "Saturn", false},
		{"", "Saturn", false},
		{"   ", "Saturn", false},
	}
	for _, tt := range tests {
		if got := AnswersMatch(tt.got, tt.want); got != tt.match {
			t.Errorf("AnswersMatch(%q, %q) = %v, want %v", tt.got, tt.want, got, tt.match)
		}
	}
}

func TestEmptyRoundIsFinished(t *testing.T) {
	s := New(ModeClassic, "anything", trivia.PersonalityQuizmaster, nil)
	if !s.Finished() {
		t.Error("empty round should be finished immediately")
	}
}
