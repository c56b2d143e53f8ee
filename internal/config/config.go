package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hojanyaz/hr-psychobot/internal/scoring"
	"github.com/hojanyaz/hr-psychobot/internal/utils"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	Addr       string
	SurveyDir  string
	ConfigDir  string
	SQLitePath string
	RedisURL   string // empty: keep in-flight sessions in sqlite

	AdminUser     string
	AdminPassword string
	AdminChatIDs  []int64

	Thresholds scoring.Thresholds
}

// Load reads configuration from PSYCHOBOT_* environment variables with
// defaults that work for local development.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:          utils.SafeEnv("PSYCHOBOT_ADDR", ":8080"),
		SurveyDir:     utils.SafeEnv("PSYCHOBOT_SURVEY_DIR", "surveys"),
		ConfigDir:     utils.SafeEnv("PSYCHOBOT_CONFIG_DIR", "config"),
		SQLitePath:    utils.SafeEnv("PSYCHOBOT_DB_PATH", "data.sqlite"),
		RedisURL:      utils.SafeEnv("PSYCHOBOT_REDIS_URL", ""),
		AdminUser:     utils.SafeEnv("PSYCHOBOT_ADMIN_USER", "admin"),
		AdminPassword: utils.SafeEnv("PSYCHOBOT_ADMIN_PASSWORD", ""),
		Thresholds:    scoring.DefaultThresholds,
	}

	if v := utils.SafeEnv("PSYCHOBOT_MIN_SECONDS_PER_ITEM", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse PSYCHOBOT_MIN_SECONDS_PER_ITEM: %w", err)
		}
		cfg.Thresholds.MinSecondsPerItem = f
	}
	if v := utils.SafeEnv("PSYCHOBOT_STRAIGHT_VARIANCE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse PSYCHOBOT_STRAIGHT_VARIANCE: %w", err)
		}
		cfg.Thresholds.StraightVariance = f
	}

	for _, part := range strings.Split(utils.SafeEnv("PSYCHOBOT_ADMIN_IDS", ""), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse PSYCHOBOT_ADMIN_IDS entry %q: %w", part, err)
		}
		cfg.AdminChatIDs = append(cfg.AdminChatIDs, id)
	}
	return cfg, nil
}
