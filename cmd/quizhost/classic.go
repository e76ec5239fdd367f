package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quizhost-go/quizhost/pkg/core/audio"
	"github.com/quizhost-go/quizhost/pkg/core/providers/gemini"
	"github.com/quizhost-go/quizhost/pkg/core/trivia"
	"github.com/quizhost-go/quizhost/pkg/core/voice"
	"github.com/quizhost-go/quizhost/pkg/core/voice/tts"
	"github.com/quizhost-go/quizhost/pkg/game"
)

// runClassic generates a round, speaks each question, and checks typed
// answers.
func runClassic(ctx context.Context, apiKey, topic string, personality trivia.Personality, count int, mute bool) error {
	provider := gemini.New(apiKey)
	generator := trivia.NewGenerator(provider)

	fmt.Printf("Preparing %d questions about %q...\n", count, topic)
	questions, sources := generator.Generate(ctx, topic, count)

	state := game.New(game.ModeClassic, topic, personality, questions)

	var speak func(text string)
	if !mute {
		speaker, cleanup, err := initSpeaker(audio.DefaultPlaybackConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Speaker unavailable, continuing silently: %v\n", err)
		} else {
			defer cleanup()
			queue := voice.NewQueue(tts.NewGemini(provider), personality.VoiceName(), func(a tts.Audio) {
				speaker.Write(a.PCM)
				// Playback is asynchronous; hold the queue until this
				// utterance has been heard.
				time.Sleep(a.Duration())
			})
			defer queue.Close()
			speak = queue.Enqueue
		}
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		q, ok := state.Current()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		fmt.Printf("\nQuestion %d of %d: %s\n", state.Index()+1, state.Total(), q.Question)
		if speak != nil {
			speak(q.Question)
		}

		fmt.Print("Your answer: ")
		answer, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		answer = strings.TrimSpace(answer)

		if state.RecordAnswer(answer) {
			fmt.Println("Correct!")
			if speak != nil {
				speak("Correct!")
			}
		} else {
			fmt.Printf("Not quite. The answer is: %s\n", q.Answer)
			if q.Context != "" {
				fmt.Println(q.Context)
			}
			if speak != nil {
				speak(fmt.Sprintf("Not quite. The answer is %s.", q.Answer))
			}
		}
	}

	fmt.Printf("\nFinal score: %d out of %d\n", state.Score(), state.Total())
	if speak != nil {
		speak(fmt.Sprintf("Final score: %d out of %d. Thanks for playing!", state.Score(), state.Total()))
	}

	if len(sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range sources {
			fmt.Printf("  %s\n", src.URI)
		}
	}
	return nil
}
