package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/bigbrainbot/internal/bot"
	"github.com/freeeve/bigbrainbot/internal/config"
	"github.com/freeeve/bigbrainbot/internal/logger"
	"github.com/freeeve/bigbrainbot/pkg/hlt"
)

func main() {
	// Stdout carries engine commands, so logs only ever go to a file.
	if os.Getenv("LOG_FILE") == "" {
		os.Setenv("LOG_FILE", fmt.Sprintf("bot-%d.log", os.Getpid()))
	}
	logger.Init(nil)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	conn := hlt.NewConn(os.Stdin, os.Stdout)
	g, err := conn.ReadInit(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Handshake failed")
	}

	settings, err := cfg.Resolve(g.Constants)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid tuning")
	}
	roles, err := cfg.RoleAssigner()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid role policy")
	}
	ctrl, err := bot.NewController(settings, roles)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid controller settings")
	}

	if err := conn.Ready(cfg.Name); err != nil {
		log.Fatal().Err(err).Msg("Failed to send bot name")
	}
	log.Info().
		Str("name", cfg.Name).
		Str("roles", roles.Name()).
		Int("player", int(g.MyID)).
		Int("spawnCutoff", ctrl.Settings().SpawnCutoffTurn).
		Str("tuning", cfg.TuningPath).
		Msg("Bot ready")

	for {
		g, err := conn.ReadFrame(ctx)
		if errors.Is(err, io.EOF) {
			log.Info().Msg("Engine closed the stream, game over")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read frame")
		}

		res, err := ctrl.PlayTurn(g)
		if err != nil {
			if errors.Is(err, bot.ErrInvalidState) {
				log.Fatal().Err(err).Int("turn", g.Turn).Msg("Controller reached an invalid state")
			}
			log.Fatal().Err(err).Int("turn", g.Turn).Msg("Turn failed")
		}
		if err := conn.EndTurn(res.Commands); err != nil {
			log.Fatal().Err(err).Int("turn", g.Turn).Msg("Failed to send commands")
		}
	}
}
