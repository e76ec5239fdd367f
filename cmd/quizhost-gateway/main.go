// Command quizhost-gateway serves browser clients the live trivia
// websocket protocol, bridging each connection to an upstream voice
// session.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizhost-go/quizhost/pkg/core/providers/gemini"
	"github.com/quizhost-go/quizhost/pkg/core/trivia"
	"github.com/quizhost-go/quizhost/pkg/gateway"
)

func main() {
	cfg, err := gateway.LoadConfig()
	if err != nil {
		fatalLogger := zerolog.New(os.Stderr)
		fatalLogger.Fatal().Err(err).Msg("configuration")
	}

	logger := newLogger(cfg)

	provider := gemini.New(cfg.GeminiAPIKey)
	var generatorOpts []trivia.GeneratorOption
	if cfg.TextModel != "" {
		generatorOpts = append(generatorOpts, trivia.WithModel(cfg.TextModel))
	}
	generatorOpts = append(generatorOpts, trivia.WithLogger(logger))
	generator := trivia.NewGenerator(provider, generatorOpts...)

	server := gateway.NewServer(
		cfg,
		logger,
		gateway.NewMetrics(cfg.MetricsNamespace),
		generator,
		gateway.DefaultConnector(cfg.GeminiAPIKey),
	)

	go func() {
		if err := server.ListenAndServe(); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func newLogger(cfg *gateway.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
