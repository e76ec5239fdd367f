package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quizhost-go/quizhost/pkg/core/audio"
	"github.com/quizhost-go/quizhost/pkg/core/live"
	"github.com/quizhost-go/quizhost/pkg/core/providers/gemini"
	"github.com/quizhost-go/quizhost/pkg/core/trivia"
)

// runLive hands hosting to a realtime voice session: mic audio goes
// up, the host's speech comes back, interruptions flush the speaker.
func runLive(ctx context.Context, apiKey, topic string, personality trivia.Personality, count int) error {
	provider := gemini.New(apiKey)
	generator := trivia.NewGenerator(provider)

	fmt.Printf("Preparing %d questions about %q...\n", count, topic)
	questions, sources := generator.Generate(ctx, topic, count)

	captureFormat := audio.DefaultCaptureConfig()
	playbackFormat := audio.DefaultPlaybackConfig()

	session, err := live.Connect(ctx, apiKey, live.SessionConfig{
		Voice:             personality.VoiceName(),
		SystemInstruction: live.HostInstruction(topic, personality, questions),
		Input:             captureFormat,
		Output:            playbackFormat,
	})
	if err != nil {
		return fmt.Errorf("connect live session: %w", err)
	}
	defer session.Close()

	mic, micCleanup, err := initMic(captureFormat)
	if err != nil {
		return err
	}
	defer micCleanup()

	speaker, speakerCleanup, err := initSpeaker(playbackFormat)
	if err != nil {
		return err
	}
	defer speakerCleanup()

	// Pre-buffer the host's speech so small leading chunks don't glitch.
	out := audio.NewOutput(playbackFormat, audio.DefaultOutputConfig())
	defer out.Close()

	// Segments are handed to the speaker on their scheduled start so an
	// interruption only discards audio that is actually playing.
	sched := audio.NewScheduler(playbackFormat, func(pcm []byte) func() {
		speaker.Write(pcm)
		return speaker.Flush
	})
	defer sched.Interrupt()

	// Ship mic frames for the session's lifetime, flagging when the
	// player starts talking so the terminal isn't totally silent.
	go func() {
		var quietFrames int
		speaking := false
		for {
			frame := mic.ReadFrame()
			if frame == nil {
				return
			}
			if audio.RMSEnergy(frame) >= speechThreshold {
				quietFrames = 0
				if !speaking {
					speaking = true
					fmt.Println("(hearing you...)")
				}
			} else if speaking {
				quietFrames++
				if quietFrames >= speechHangoverFrames {
					speaking = false
				}
			}
			if err := session.SendAudio(frame); err != nil {
				return
			}
		}
	}()

	fmt.Println("Connected. The host is live - speak your answers, interrupt any time. Ctrl-C to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk := <-out.Chunks():
			sched.Schedule(chunk)
		case <-out.Flush():
			sched.Interrupt()
			speaker.Flush()
		case event, ok := <-session.Events():
			if !ok {
				return nil
			}
			switch e := event.(type) {
			case *live.AudioChunkEvent:
				out.Push(e.PCM)
			case *live.InterruptedEvent:
				out.DoFlush()
			case *live.TurnCompleteEvent:
				// Host finished speaking; nothing to do.
			case *live.ErrorEvent:
				fmt.Fprintf(os.Stderr, "[ERROR] %v\n", e.Err)
			case *live.ClosedEvent:
				if e.Reason != "" {
					fmt.Fprintln(os.Stderr, "Connection interrupted.")
				}
				printSources(sources)
				return nil
			}
		}
	}
}

// speechThreshold is the RMS level above which a mic frame counts as
// the player speaking; speechHangoverFrames keeps the speaking state
// alive across short pauses (20ms frames, so 25 frames is half a second).
const (
	speechThreshold      = 0.015
	speechHangoverFrames = 25
)

func printSources(sources []trivia.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, src := range sources {
		fmt.Printf("  %s\n", src.URI)
	}
}
