package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/tea-go/internal/domain"
)

// DefaultConfigFile is the config file name looked up next to the binary
const DefaultConfigFile = "tea-config.json"

// ConfigManager loads and persists the flat JSON configuration
type ConfigManager struct {
	path   string
	config *domain.Config
}

// NewConfigManager loads configuration from path, or from the default
// location when path is empty. A missing or unreadable file yields
// defaults; individually invalid values are reset to their defaults
// rather than failing the load.
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("json")
	v.SetConfigFile(path)

	v.SetEnvPrefix("TEA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		if err := v.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		resetInvalidValues(config)
	} else if !os.IsNotExist(err) {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			// corrupt file: fall back to defaults, same as a missing one
			config = domain.DefaultConfig()
		}
	}

	return &ConfigManager{path: path, config: config}, nil
}

// resetInvalidValues re-applies the default for each individually invalid
// field, keeping the rest of the user's settings
func resetInvalidValues(config *domain.Config) {
	defaults := domain.DefaultConfig()

	if config.DefaultQuality != "" && !domain.ValidQuality(config.DefaultQuality) {
		config.DefaultQuality = defaults.DefaultQuality
	}
	if config.ConcurrentDownloads < domain.MinConcurrentDownloads ||
		config.ConcurrentDownloads > domain.MaxConcurrentDownloads {
		config.ConcurrentDownloads = defaults.ConcurrentDownloads
	}
	switch config.DuplicateAction {
	case domain.DuplicateAsk, domain.DuplicateDownload, domain.DuplicateSkip:
	default:
		config.DuplicateAction = defaults.DuplicateAction
	}
	if config.MP3Quality != "" && !domain.ValidMP3Quality(config.MP3Quality) {
		config.MP3Quality = defaults.MP3Quality
	}
	if config.DefaultOutput == "" {
		config.DefaultOutput = defaults.DefaultOutput
	}
}

// Path returns the config file path
func (m *ConfigManager) Path() string {
	return m.path
}

// Config returns the loaded configuration
func (m *ConfigManager) Config() *domain.Config {
	return m.config
}

// Save validates and writes the configuration back to disk
func (m *ConfigManager) Save() error {
	if err := m.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetDuplicateAction updates and persists the duplicate policy
func (m *ConfigManager) SetDuplicateAction(action domain.DuplicateAction) error {
	m.config.DuplicateAction = action
	return m.Save()
}
