package config

import (
	"fmt"
	"os"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Compliance Engine Configuration

insights:
  provider: none # none, openai or anthropic
  # model: gpt-4o-mini
  timeout: 30s
  # openai_api_key: your-api-key (or set OPENAI_API_KEY env var)
  # anthropic_api_key: your-api-key (or set ANTHROPIC_API_KEY env var)

logging:
  level: info
  format: console

http:
  addr: 127.0.0.1:8080

metrics:
  # addr: 127.0.0.1:9090

monitor:
  schedule: "*/15 * * * *"

engine:
  check_limit: 100
  max_document_actions: 3
  max_case_actions: 3
`

// WriteDefault creates the .compliance directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
