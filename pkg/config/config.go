/*
Package config manages the TOML config for dynlm.
*/
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/dynlm/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Model  ModelConfig  `toml:"model"`
	Vocab  VocabConfig  `toml:"vocab"`
	Output OutputConfig `toml:"output"`
	Ledger LedgerConfig `toml:"ledger"`
}

// ModelConfig describes how the trie is found and rendered.
type ModelConfig struct {
	Marker     string `toml:"marker"`
	TrieOffset int    `toml:"trie_offset"`
	MaxDepth   int    `toml:"max_depth"`
	RootLabel  string `toml:"root_label"`
	Separator  string `toml:"separator"`
}

// VocabConfig names the columns of the word-list export.
type VocabConfig struct {
	IndexColumn      string `toml:"index_column"`
	WordColumn       string `toml:"word_column"`
	FrequencyColumn  string `toml:"frequency_column"`
	Delimiter        string `toml:"delimiter"`
	ModelIndexOffset int    `toml:"model_index_offset"`
}

// OutputConfig holds run folder options.
type OutputConfig struct {
	Dir             string `toml:"dir"`
	TimestampLayout string `toml:"timestamp_layout"`
	Msgpack         bool   `toml:"msgpack"`
}

// LedgerConfig holds run history options.
type LedgerConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// MarkerBytes decodes the hex marker.
func (m ModelConfig) MarkerBytes() ([]byte, error) {
	b, err := hex.DecodeString(m.Marker)
	if err != nil {
		return nil, fmt.Errorf("invalid marker %q: %w", m.Marker, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("marker is empty")
	}
	return b, nil
}

// DelimiterRune returns the first rune of the delimiter, or ',' if unset.
func (v VocabConfig) DelimiterRune() rune {
	for _, r := range v.Delimiter {
		return r
	}
	return ','
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/dynlm
// 2. ~/Library/Application Support/dynlm (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "dynlm")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "dynlm")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/dynlm/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Marker:     "06646d6170",
			TrieOffset: 9,
			MaxDepth:   512,
			RootLabel:  "root",
			Separator:  " -> ",
		},
		Vocab: VocabConfig{
			IndexColumn:      "#",
			WordColumn:       "Word",
			FrequencyColumn:  "Frequency",
			Delimiter:        ",",
			ModelIndexOffset: 1,
		},
		Output: OutputConfig{
			Dir:             "",
			TimestampLayout: "2006_01_02-15_04_05_PM",
			Msgpack:         true,
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whatever sections of a broken file still parse
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "model"); ok {
		extractModelConfig(section, &config.Model)
	}
	if section, ok := utils.ExtractSection(tempConfig, "vocab"); ok {
		extractVocabConfig(section, &config.Vocab)
	}
	if section, ok := utils.ExtractSection(tempConfig, "output"); ok {
		extractOutputConfig(section, &config.Output)
	}
	if section, ok := utils.ExtractSection(tempConfig, "ledger"); ok {
		extractLedgerConfig(section, &config.Ledger)
	}
	return config, nil
}

func extractModelConfig(data map[string]any, model *ModelConfig) {
	if val, ok := utils.ExtractString(data, "marker"); ok {
		model.Marker = val
	}
	if val, ok := utils.ExtractInt64(data, "trie_offset"); ok {
		model.TrieOffset = val
	}
	if val, ok := utils.ExtractInt64(data, "max_depth"); ok {
		model.MaxDepth = val
	}
	if val, ok := utils.ExtractString(data, "root_label"); ok {
		model.RootLabel = val
	}
	if val, ok := utils.ExtractString(data, "separator"); ok {
		model.Separator = val
	}
}

func extractVocabConfig(data map[string]any, vocab *VocabConfig) {
	if val, ok := utils.ExtractString(data, "index_column"); ok {
		vocab.IndexColumn = val
	}
	if val, ok := utils.ExtractString(data, "word_column"); ok {
		vocab.WordColumn = val
	}
	if val, ok := utils.ExtractString(data, "frequency_column"); ok {
		vocab.FrequencyColumn = val
	}
	if val, ok := utils.ExtractString(data, "delimiter"); ok {
		vocab.Delimiter = val
	}
	if val, ok := utils.ExtractInt64(data, "model_index_offset"); ok {
		vocab.ModelIndexOffset = val
	}
}

func extractOutputConfig(data map[string]any, output *OutputConfig) {
	if val, ok := utils.ExtractString(data, "dir"); ok {
		output.Dir = val
	}
	if val, ok := utils.ExtractString(data, "timestamp_layout"); ok {
		output.TimestampLayout = val
	}
	if val, ok := utils.ExtractBool(data, "msgpack"); ok {
		output.Msgpack = val
	}
}

func extractLedgerConfig(data map[string]any, ledger *LedgerConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		ledger.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "path"); ok {
		ledger.Path = val
	}
}

// LedgerPath returns the configured ledger path, or ledger.db beside the config.
func (c *Config) LedgerPath(configPath string) string {
	if c.Ledger.Path != "" {
		return c.Ledger.Path
	}
	if configPath != "" {
		return filepath.Join(filepath.Dir(configPath), "ledger.db")
	}
	if dir, err := GetConfigDir(); err == nil {
		return filepath.Join(dir, "ledger.db")
	}
	return "ledger.db"
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
