package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Discord DiscordConfig
	Redis   RedisConfig
	Rules   RulesConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string
	AppID   string
	GuildID string // Optional: for guild-specific commands
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RulesConfig selects the table options the engine runs with. These replace
// the host's world-scoped settings store: resolved once at startup and
// passed into constructors, never read ad hoc.
type RulesConfig struct {
	// DifficultyTable is the active rule-set table key (srd, classic, gritty)
	DifficultyTable string

	// BaseDifficulty overrides the table's base difficulty rank when > 0
	BaseDifficulty int

	// ClassicOutcomes renders fixed outcome band names instead of degree counts
	ClassicOutcomes bool

	// IndividualStoryPoints switches from a shared pool to per-party balances
	IndividualStoryPoints bool

	// UseRuneSymbols renders mastery counts with the rune glyph
	UseRuneSymbols bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			AppID:   os.Getenv("DISCORD_APP_ID"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Rules: RulesConfig{
			DifficultyTable:       getEnvOrDefault("QW_DIFFICULTY_TABLE", "srd"),
			BaseDifficulty:        getEnvAsIntOrDefault("QW_BASE_DIFFICULTY", 0),
			ClassicOutcomes:       getEnvAsBool("QW_CLASSIC_OUTCOMES"),
			IndividualStoryPoints: getEnvAsBool("QW_INDIVIDUAL_STORY_POINTS"),
			UseRuneSymbols:        getEnvAsBool("QW_USE_RUNE_SYMBOLS"),
		},
	}

	// Validate required fields
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is required")
	}

	switch cfg.Rules.DifficultyTable {
	case "srd", "classic", "gritty":
	default:
		return nil, fmt.Errorf("unknown QW_DIFFICULTY_TABLE: %s", cfg.Rules.DifficultyTable)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
