// Command quizhost plays voice trivia in the terminal.
//
// Classic mode generates grounded questions, reads them aloud and
// checks typed answers. Live mode hands hosting to a realtime voice
// session: speak your answers, interrupt the host, hear the score.
//
// Usage:
//
//	quizhost -topic "90s movies" -mode classic
//	quizhost -topic "space exploration" -mode live -personality comedian
//
// Environment variables:
//
//	GEMINI_API_KEY - API key; prompted for interactively when unset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/quizhost-go/quizhost/pkg/core/trivia"
	"github.com/quizhost-go/quizhost/pkg/game"
)

func main() {
	_ = godotenv.Load()

	var (
		topic       = flag.String("topic", "", "trivia topic (required)")
		mode        = flag.String("mode", "classic", "game mode: classic or live")
		personality = flag.String("personality", "quizmaster", "host personality: "+personalityList())
		count       = flag.Int("n", 5, "number of questions")
		mute        = flag.Bool("mute", false, "classic mode: skip spoken questions")
	)
	flag.Parse()

	if *topic == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *count < 1 {
		log.Fatal("question count must be >= 1")
	}

	p, err := trivia.ParsePersonality(*personality)
	if err != nil {
		log.Fatalf("%v (choose one of: %s)", err, personalityList())
	}

	apiKey, err := resolveAPIKey()
	if err != nil {
		log.Fatalf("API key: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	switch game.Mode(*mode) {
	case game.ModeClassic:
		err = runClassic(ctx, apiKey, *topic, p, *count, *mute)
	case game.ModeLive:
		err = runLive(ctx, apiKey, *topic, p, *count)
	default:
		log.Fatalf("unknown mode %q (classic or live)", *mode)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// resolveAPIKey reads GEMINI_API_KEY, falling back to a hidden
// interactive prompt.
func resolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		return key, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("GEMINI_API_KEY is not set")
	}
	fmt.Fprint(os.Stderr, "Enter your API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(key) == 0 {
		return "", fmt.Errorf("no key entered")
	}
	return strings.TrimSpace(string(key)), nil
}

func personalityList() string {
	names := make([]string, 0, len(trivia.Personalities()))
	for _, p := range trivia.Personalities() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
