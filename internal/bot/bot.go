// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"arcade-dashboard/internal/config"
	"arcade-dashboard/internal/game"
	"arcade-dashboard/internal/handler"
	"arcade-dashboard/internal/host"
	"arcade-dashboard/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	scores    *service.ScoreService
	limiter   *PlayerLimiter
	dashboard *handler.DashboardHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config       *config.Config
	ScoreService *service.ScoreService
	Manager      *host.Manager
	GameRegistry *game.Registry
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := deps.Config.Bot.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:     teleBot,
		cfg:     deps.Config,
		scores:  deps.ScoreService,
		limiter: NewPlayerLimiter(deps.Config.RateLimit.PerSecond, deps.Config.RateLimit.Burst),
	}
	b.dashboard = handler.NewDashboardHandler(
		deps.ScoreService,
		deps.Manager,
		deps.GameRegistry,
		teleBot,
		deps.Config.Bot.EditRate,
	)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.dashboard.HandleStart)
	b.bot.Handle("/help", b.dashboard.HandleStart)
	b.bot.Handle("/login", b.dashboard.HandleLogin)
	b.bot.Handle("/top", b.dashboard.HandleTop)

	// Everything else needs a session
	session := b.bot.Group()
	session.Use(RequireLoginMiddleware(b.scores))
	session.Use(RateLimitMiddleware(b.limiter))
	session.Handle("/logout", b.dashboard.HandleLogout)
	session.Handle("/games", b.dashboard.HandleGames)
	session.Handle("/score", b.dashboard.HandleScore)
	session.Handle("/history", b.dashboard.HandleHistory)
	session.Handle("/back", b.dashboard.HandleBack)
	session.Handle(tele.OnCallback, b.dashboard.HandleCallback)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	go b.limiter.Sweep(b.cfg.RateLimit.IdleAfter)
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
	b.limiter.Stop()
	b.dashboard.Close()
}
