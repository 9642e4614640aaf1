package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/gitnudge/portal/config"
)

// envFilesVar lists dotenv files to read before parsing, comma separated.
// Without it only ./.env is tried.
const envFilesVar = "PORTAL_ENV_FILES"

// InitLogger installs a JSON logger at info level. It is used until the
// configuration is loaded and ConfigureLogger replaces it.
func InitLogger() *slog.Logger {
	return ConfigureLogger(config.LogConfig{Level: "info", Format: "json"}, os.Stdout)
}

// ConfigureLogger builds a logger from cfg writing to w and makes it the
// slog default.
func ConfigureLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With("service", "gitnudge-portal")
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads dotenv files, parses the environment, then sanitizes and
// validates the result.
func LoadConfig() (config.AppConfig, error) {
	if err := loadEnvFiles(envFiles()); err != nil {
		return config.AppConfig{}, err
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envFiles() []string {
	raw := strings.TrimSpace(os.Getenv(envFilesVar))
	if raw == "" {
		return []string{".env"}
	}
	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// loadEnvFiles loads each file that exists. Variables already set in the
// environment are never overridden.
func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}
