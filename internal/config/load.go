package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "chunkscribe")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// first run: write the commented default file, then load it
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("config: no config file found at %s, creating with defaults", configPath)
		if err := writeDefaultConfigFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config.applyDefaults()

	log.Printf("config: configuration loaded successfully")
	return &config, nil
}

func writeDefaultConfigFile(configPath string) error {
	configContent := `# Chunkscribe Configuration
# This file is automatically generated with defaults.
# Edit values as needed - the serve daemon applies changes without a restart.

# Transcription backend
[transcription]
  provider = "gemini"            # Transcription provider ("gemini" or "openai")
  model = "gemini-2.0-flash"     # Model ID (see: chunkscribe model list)
  language = ""                  # Language code (empty for auto-detect, "en", "it", "es", ...)

# Audio chunking
[chunking]
  max_chunk_bytes = 20971520     # Max encoded chunk size in bytes (20MB default)
  max_chunk_duration = "2m"      # Max chunk duration (e.g., "90s", "2m", "5m")

# Parallel dispatch
[dispatch]
  workers = 5                    # Concurrent transcription calls
  call_timeout = "2m"            # Per-call timeout
  retry_attempts = 3             # Attempts per chunk before giving up
  retry_base_delay = "1s"        # First backoff delay (doubles per attempt)

# Input limits
[limits]
  max_input_bytes = 524288000    # Reject uploads over this size (500MB default)
  min_success_ratio = 0.8        # Warn when fewer chunks than this succeed

# HTTP API (chunkscribe serve)
[server]
  addr = ":8080"                 # Listen address

# Provider API keys (or set GEMINI_API_KEY / OPENAI_API_KEY in the environment)
[providers]
  [providers.gemini]
    api_key = ""
  [providers.openai]
    api_key = ""
`

	return os.WriteFile(configPath, []byte(configContent), 0600)
}
