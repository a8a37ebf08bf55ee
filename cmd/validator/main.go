package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/internal/config"
	"github.com/tensorplex-labs/prompting/internal/utils/logger"
	"github.com/tensorplex-labs/prompting/internal/validator"
	"github.com/tensorplex-labs/prompting/pkg/signature"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting validator...")

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	var signer signature.Signer
	if !cfg.MockDendrite {
		keypair, err := signature.LoadKeypair(signature.WalletPaths{
			BittensorDir: cfg.BittensorDir,
			Coldkey:      cfg.WalletColdkey,
			Hotkey:       cfg.WalletHotkey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load validator hotkey")
		}
		if signer, err = signature.NewSigner(keypair); err != nil {
			log.Fatal().Err(err).Msg("failed to create signer")
		}
	}

	components, err := validator.NewComponents(cfg, signer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build validator components")
	}

	v, err := validator.NewValidator(cfg, components)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	// setup signal handling for graceful shutdown before starting validator
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping validator")
		v.Stop()
	}()

	v.Start()

	// wait until validator context is cancelled (v.Stop will call Cancel())
	<-v.Ctx.Done()
	log.Info().Msg("validator stopped")
}
