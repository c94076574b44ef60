package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the client configuration shared across all commands. Values come
// from the environment, with a .env file in the working directory loaded
// first when present.
type Config struct {
	// BaseURL is the API root every request path is joined onto.
	BaseURL string `env:"TASKLIGHT_BASE_URL" env-default:"http://localhost:8080/api"`
	// CredentialsFile is where the bearer token is persisted between runs.
	// Defaults to ~/.tasklight/credentials.
	CredentialsFile string `env:"TASKLIGHT_CREDENTIALS_FILE"`
	// LogLevel is a zerolog level name; warn unless overridden.
	LogLevel string `env:"TASKLIGHT_LOG_LEVEL" env-default:"warn"`
}

// LoadConfig reads the configuration from .env and the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.CredentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.CredentialsFile = filepath.Join(home, ".tasklight", "credentials")
	}
	return &cfg, nil
}
