// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Games     GamesConfig     `mapstructure:"games"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	// EditRate caps dashboard message edits per second per player.
	EditRate float64 `mapstructure:"edit_rate"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// HTTPConfig holds the status API listener configuration.
// An empty Addr disables the API.
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RateLimitConfig bounds how fast one player may send inputs.
type RateLimitConfig struct {
	PerSecond float64       `mapstructure:"per_second"`
	Burst     int           `mapstructure:"burst"`
	IdleAfter time.Duration `mapstructure:"idle_after"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	// Seed makes every player's RNG deterministic when non-zero.
	Seed   int64        `mapstructure:"seed"`
	Memory MemoryConfig `mapstructure:"memory"`
	Dice   DiceConfig   `mapstructure:"dice"`
	Snake  SnakeConfig  `mapstructure:"snake"`
}

// MemoryConfig holds memory match timing.
type MemoryConfig struct {
	HideDelay time.Duration `mapstructure:"hide_delay"`
	WinDelay  time.Duration `mapstructure:"win_delay"`
}

// DiceConfig holds dice animation settings.
type DiceConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	IntermediateRolls int           `mapstructure:"intermediate_rolls"`
}

// SnakeConfig holds snake board settings.
type SnakeConfig struct {
	GridSize int           `mapstructure:"grid_size"`
	Interval time.Duration `mapstructure:"interval"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, GAMES_SNAKE_INTERVAL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", "10s")
	v.SetDefault("bot.edit_rate", 3)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arcade")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "arcade")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "5s")
	v.SetDefault("http.write_timeout", "10s")

	v.SetDefault("rate_limit.per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.idle_after", "10m")

	v.SetDefault("games.seed", 0)
	v.SetDefault("games.memory.hide_delay", "1s")
	v.SetDefault("games.memory.win_delay", "500ms")
	v.SetDefault("games.dice.interval", "100ms")
	v.SetDefault("games.dice.intermediate_rolls", 10)
	v.SetDefault("games.snake.grid_size", 15)
	v.SetDefault("games.snake.interval", "200ms")
}

// Validate rejects settings the games cannot run with.
func (c *Config) Validate() error {
	// The snake starts at (8,8)
	if c.Games.Snake.GridSize < 9 {
		return fmt.Errorf("games.snake.grid_size must be at least 9, got %d", c.Games.Snake.GridSize)
	}
	for name, d := range map[string]time.Duration{
		"games.memory.hide_delay": c.Games.Memory.HideDelay,
		"games.memory.win_delay":  c.Games.Memory.WinDelay,
		"games.dice.interval":     c.Games.Dice.Interval,
		"games.snake.interval":    c.Games.Snake.Interval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Games.Dice.IntermediateRolls < 0 {
		return fmt.Errorf("games.dice.intermediate_rolls must not be negative, got %d", c.Games.Dice.IntermediateRolls)
	}
	if c.RateLimit.PerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

// IsChatAllowed checks if a chat ID is in the whitelist.
// An empty whitelist allows every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	return lo.Contains(c.Whitelist.Chats, chatID)
}
