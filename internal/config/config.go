// Package config loads and validates the service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diliima/markdown-to-pdf-api/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Limits guarding against misconfiguration.
const (
	MaxBodyLimitMB   = 512
	MaxTimeoutSec    = 600
	MaxSheetNameLen  = 31
	MaxAppNameLength = 100
)

// Config holds all configuration for the conversion service.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Convert ConvertConfig `yaml:"convert"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name string `yaml:"name"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	BodyLimitMB     int      `yaml:"bodyLimitMB"`     // max request body, in MiB
	ReadTimeoutSec  int      `yaml:"readTimeoutSec"`  // 0 = no limit
	WriteTimeoutSec int      `yaml:"writeTimeoutSec"` // 0 = no limit
	CORSOrigins     []string `yaml:"corsOrigins"`     // empty = allow all
}

// LogConfig defines log output and rotation.
type LogConfig struct {
	File       string `yaml:"file"` // empty = stderr only
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
	Debug      bool   `yaml:"debug"`
}

// ConvertConfig tunes conversion behavior.
type ConvertConfig struct {
	DefaultSheetName     string `yaml:"defaultSheetName"`
	EmptyDocxPlaceholder bool   `yaml:"emptyDocxPlaceholder"` // emit a stub paragraph for empty DOCX input
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		App: AppConfig{Name: "docconvd"},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			BodyLimitMB:     16,
			ReadTimeoutSec:  60,
			WriteTimeoutSec: 60,
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Convert: ConvertConfig{
			DefaultSheetName:     "Data",
			EmptyDocxPlaceholder: true,
		},
	}
}

// Validate checks value ranges. Called automatically by Load, but
// available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if len(c.App.Name) > MaxAppNameLength {
		return fmt.Errorf("%w: app.name too long (%d chars)", ErrInvalidValue, len(c.App.Name))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidValue, c.Server.Port)
	}
	if c.Server.BodyLimitMB < 1 || c.Server.BodyLimitMB > MaxBodyLimitMB {
		return fmt.Errorf("%w: server.bodyLimitMB must be 1..%d, got %d",
			ErrInvalidValue, MaxBodyLimitMB, c.Server.BodyLimitMB)
	}
	if c.Server.ReadTimeoutSec < 0 || c.Server.ReadTimeoutSec > MaxTimeoutSec {
		return fmt.Errorf("%w: server.readTimeoutSec must be 0..%d, got %d",
			ErrInvalidValue, MaxTimeoutSec, c.Server.ReadTimeoutSec)
	}
	if c.Server.WriteTimeoutSec < 0 || c.Server.WriteTimeoutSec > MaxTimeoutSec {
		return fmt.Errorf("%w: server.writeTimeoutSec must be 0..%d, got %d",
			ErrInvalidValue, MaxTimeoutSec, c.Server.WriteTimeoutSec)
	}
	if len(c.Convert.DefaultSheetName) > MaxSheetNameLen {
		return fmt.Errorf("%w: convert.defaultSheetName exceeds %d chars",
			ErrInvalidValue, MaxSheetNameLen)
	}
	return nil
}

// Load loads configuration from a file path or config name, merged
// over the defaults. If nameOrPath contains a path separator it is
// treated as a file path; otherwise it is searched in standard
// locations. Returns an error if the file is not found.
func Load(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard
// locations, trying .yaml then .yml, in the current directory and then
// the user config directory.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "docconvd", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
