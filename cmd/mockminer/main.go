package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/axon"
	"github.com/tensorplex-labs/prompting/internal/config"
	"github.com/tensorplex-labs/prompting/internal/utils/logger"
	"github.com/tensorplex-labs/prompting/pkg/signature"
)

func main() {
	insecure := flag.Bool("insecure", false, "accept unsigned requests")
	delay := flag.Duration("delay", 0, "delay before answering each prompt")
	logger.Init()
	log.Info().Msg("Starting mock miner...")

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	var verifier signature.Verifier
	if !*insecure {
		verifier = signature.NewVerifier()
	}

	a := axon.New(&cfg.AxonEnvConfig, verifier)
	a.Delay = *delay

	go func() {
		if err := a.Start(); err != nil {
			log.Fatal().Err(err).Msg("axon server stopped")
		}
	}()
	log.Info().Str("addr", a.Addr()).Bool("signed", verifier != nil).Msg("Mock miner is running. Press Ctrl+C to shutdown...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shut down axon")
	}
	log.Info().Int("forwards", a.Forwards()).Msg("Mock miner shutdown complete")
}
