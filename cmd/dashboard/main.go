// Package main is the entry point for the arcade dashboard bot.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"arcade-dashboard/internal/bot"
	"arcade-dashboard/internal/config"
	"arcade-dashboard/internal/game/arcade"
	"arcade-dashboard/internal/game/dice"
	"arcade-dashboard/internal/game/memory"
	"arcade-dashboard/internal/game/snake"
	"arcade-dashboard/internal/host"
	"arcade-dashboard/internal/httpapi"
	"arcade-dashboard/internal/pkg/db"
	"arcade-dashboard/internal/pkg/lock"
	"arcade-dashboard/internal/repository"
	"arcade-dashboard/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	playerRepo := repository.NewPlayerRepository(dbPool.Pool)
	eventRepo := repository.NewScoreEventRepository(dbPool.Pool)

	scoreService := service.NewScoreService(playerRepo, eventRepo, lock.New())
	if err := scoreService.ResetSessions(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to reset sessions")
	}

	registry, err := arcade.NewRegistry(arcade.Config{
		Memory: &memory.Config{
			HideDelay: cfg.Games.Memory.HideDelay,
			WinDelay:  cfg.Games.Memory.WinDelay,
		},
		Snake: &snake.Config{
			GridSize: cfg.Games.Snake.GridSize,
			Interval: cfg.Games.Snake.Interval,
		},
		Dice: &dice.Config{
			Interval:          cfg.Games.Dice.Interval,
			IntermediateRolls: cfg.Games.Dice.IntermediateRolls,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register games")
	}
	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Kinds()).
		Msg("Games registered")

	manager := host.NewManager(registry, host.WallClock(), cfg.Games.Seed)
	defer manager.CloseAll()

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:       cfg,
		ScoreService: scoreService,
		Manager:      manager,
		GameRegistry: registry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	var httpServer *http.Server
	if cfg.HTTP.Addr != "" {
		api := httpapi.New(dbPool, registry, scoreService, manager)
		httpServer = &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      api.Handler(),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("Status API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Status API stopped")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go telegramBot.Start()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	manager.CloseAll()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Status API shutdown")
		}
	}
	log.Info().Msg("Dashboard stopped gracefully")
}
