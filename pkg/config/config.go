/*
Package config manages TOML config for TabServe services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/tabserve/tabserve/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Corpus CorpusConfig `toml:"corpus"`
	Search SearchConfig `toml:"search"`
	Rank   RankConfig   `toml:"rank"`
	Server ServerConfig `toml:"server"`
}

// CorpusConfig describes the source file and its shape.
type CorpusConfig struct {
	Path string `toml:"path"`
	// HeaderSkipRows is the number of leading lines before the header row.
	HeaderSkipRows int `toml:"header_skip_rows"`
}

// SearchConfig has search related options.
type SearchConfig struct {
	// Column is the column searched when a request names none.
	Column      string `toml:"column"`
	MaxQueryLen int    `toml:"max_query_len"`
}

// RankConfig holds top-N aggregation options.
type RankConfig struct {
	// GroupColumn is the column grouped when a request names none.
	GroupColumn string `toml:"group_column"`
	DefaultTopN int    `toml:"default_top_n"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/tabserve
// 2. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "tabserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
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
// 2. Default path: [UserConfigDir]/tabserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
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

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values. The corpus defaults
// match the LitCovid TSV export this project was built around: 33 preamble
// lines before the header row, English titles searched, journals ranked.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path:           "litcovid.export.all.tsv",
			HeaderSkipRows: 33,
		},
		Search: SearchConfig{
			Column:      "title_e",
			MaxQueryLen: 256,
		},
		Rank: RankConfig{
			GroupColumn: "journal",
			DefaultTopN: 10,
		},
		Server: ServerConfig{
			DefaultLimit: 10,
			MaxLimit:     64,
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

// tryPartialParse attempts to salvage valid sections from a broken TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if corpusSection, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(corpusSection, &config.Corpus)
	}
	if searchSection, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(searchSection, &config.Search)
	}
	if rankSection, ok := utils.ExtractSection(tempConfig, "rank"); ok {
		extractRankConfig(rankSection, &config.Rank)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	return config, nil
}

// extractCorpusConfig extracts corpus configuration from a map
func extractCorpusConfig(data map[string]any, corpus *CorpusConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		corpus.Path = val
	}
	if val, ok := utils.ExtractInt64(data, "header_skip_rows"); ok {
		corpus.HeaderSkipRows = val
	}
}

// extractSearchConfig extracts search configuration from a map
func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractString(data, "column"); ok {
		search.Column = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		search.MaxQueryLen = val
	}
}

// extractRankConfig extracts rank configuration from a map
func extractRankConfig(data map[string]any, rank *RankConfig) {
	if val, ok := utils.ExtractString(data, "group_column"); ok {
		rank.GroupColumn = val
	}
	if val, ok := utils.ExtractInt64(data, "default_top_n"); ok {
		rank.DefaultTopN = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes serving limits and saves to file
func (c *Config) Update(configPath string, defaultLimit, maxLimit, defaultTopN *int) error {
	if defaultLimit != nil {
		c.Server.DefaultLimit = *defaultLimit
	}
	if maxLimit != nil {
		c.Server.MaxLimit = *maxLimit
	}
	if defaultTopN != nil {
		c.Rank.DefaultTopN = *defaultTopN
	}
	return SaveConfig(c, configPath)
}
