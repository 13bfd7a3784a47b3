// Command docconvd runs the document conversion HTTP service.
package main

import (
	"errors"
	"log"

	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"

	"github.com/diliima/markdown-to-pdf-api/internal/config"
	"github.com/diliima/markdown-to-pdf-api/internal/server"
	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

func main() {
	var (
		configName = pflag.StringP("config", "c", "", "config file path or name (default: built-in defaults)")
		port       = pflag.IntP("port", "p", 0, "override the listen port")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	cfg, err := loadConfig(*configName)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *verbose {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := logger.Init(logger.Options{
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Debug:      cfg.Log.Debug,
	}); err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		logger.Fatal("server exited", logger.F("error", err.Error()))
	}
}

// loadConfig returns the defaults when no config flag is given, and
// falls back to a conventional name so `docconvd` next to a
// docconvd.yaml picks it up.
func loadConfig(name string) (*config.Config, error) {
	if name != "" {
		return config.Load(name)
	}
	cfg, err := config.Load("docconvd")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
