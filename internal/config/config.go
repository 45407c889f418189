package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken      string
	AdminBotToken string
	AdminIDs      []int64

	GoogleSheetID         string
	GoogleCredentialsFile string

	StatusFile string

	RegistryDriver string
	RegistryDSN    string

	TextsDir     string
	WelcomePhoto string

	RedisURL      string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	LogLevel string
	LogFile  string

	MetricsAddr      string
	AdminMetricsAddr string
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function so tests can feed a map instead of the process env.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BotToken:              getenv("BOT_TOKEN"),
		AdminBotToken:         getenv("ADMIN_BOT_TOKEN"),
		GoogleSheetID:         getenv("GOOGLE_SHEET_ID"),
		GoogleCredentialsFile: getenv("GOOGLE_CREDENTIALS_FILE"),
		StatusFile:            getenv("STATUS_FILE"),
		RegistryDriver:        getenv("REGISTRY_DRIVER"),
		RegistryDSN:           getenv("REGISTRY_DSN"),
		TextsDir:              getenv("TEXTS_DIR"),
		WelcomePhoto:          getenv("WELCOME_PHOTO"),
		RedisURL:              getenv("REDIS_URL"),
		RedisPassword:         getenv("REDIS_PASSWORD"),
		LogLevel:              getenv("LOG_LEVEL"),
		LogFile:               getenv("LOG_FILE"),
		MetricsAddr:           getenv("METRICS_ADDR"),
		AdminMetricsAddr:      getenv("ADMIN_METRICS_ADDR"),
	}

	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}

	if cfg.AdminBotToken == "" {
		missing = append(missing, "ADMIN_BOT_TOKEN")
	}

	adminIDs := getenv("ADMIN_IDS")
	if adminIDs == "" {
		missing = append(missing, "ADMIN_IDS")
	}

	if cfg.GoogleSheetID == "" {
		missing = append(missing, "GOOGLE_SHEET_ID")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("config.Load: %s required", strings.Join(missing, ", "))
	}

	ids, err := ParseIDs(adminIDs)
	if err != nil {
		return nil, fmt.Errorf("config.Load: ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = ids

	if cfg.GoogleCredentialsFile == "" {
		cfg.GoogleCredentialsFile = "credentials.json"
	}

	if cfg.StatusFile == "" {
		cfg.StatusFile = "status.json"
	}

	if cfg.RegistryDriver == "" {
		cfg.RegistryDriver = "sqlite"
	}

	if cfg.RegistryDSN == "" {
		cfg.RegistryDSN = "users.db"
	}

	if cfg.WelcomePhoto == "" {
		cfg.WelcomePhoto = "pic/welcome.jpg"
	}

	if v := getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config.Load: invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	cfg.SessionTTL = 30 * time.Minute
	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config.Load: invalid SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.LogFile == "" {
		cfg.LogFile = "bot.log"
	}

	return cfg, nil
}

// ParseIDs разбирает список chat_id через запятую.
func ParseIDs(raw string) ([]int64, error) {
	var ids []int64

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q", part)
		}

		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no user IDs in %q", raw)
	}

	return ids, nil
}

// CheckCredentials fails when the service-account file for the spreadsheet is absent.
func (c *Config) CheckCredentials() error {
	if _, err := os.Stat(c.GoogleCredentialsFile); err != nil {
		return fmt.Errorf("config.CheckCredentials: %s: %w", c.GoogleCredentialsFile, err)
	}

	return nil
}
