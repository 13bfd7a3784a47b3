// Package server assembles the fiber application: middleware, routes
// and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	middlewareLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	docconv "github.com/diliima/markdown-to-pdf-api"
	"github.com/diliima/markdown-to-pdf-api/internal/api"
	"github.com/diliima/markdown-to-pdf-api/internal/config"
	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

// Server owns the fiber application and the conversion service.
type Server struct {
	cfg *config.Config
	app *fiber.App
	svc *docconv.Service
}

// New builds a Server from the given configuration.
func New(cfg *config.Config) *Server {
	var opts []docconv.Option
	if cfg.Convert.DefaultSheetName != "" {
		opts = append(opts, docconv.WithDefaultSheetName(cfg.Convert.DefaultSheetName))
	}
	if !cfg.Convert.EmptyDocxPlaceholder {
		opts = append(opts, docconv.WithoutEmptyDocxPlaceholder())
	}
	return &Server{cfg: cfg, svc: docconv.New(opts...)}
}

// Start runs the HTTP listener until a shutdown signal arrives.
func (s *Server) Start() error {
	s.build()

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	logger.Info("listening", logger.F("address", addr))

	go s.gracefulShutdown()

	if err := s.app.Listen(addr); err != nil {
		logger.Error("server stopped", logger.F("error", err))
		return err
	}
	return nil
}

// build assembles the fiber app. Split from Start so tests can drive
// the routes without a listener.
func (s *Server) build() {
	s.app = fiber.New(fiber.Config{
		AppName:               s.cfg.App.Name,
		BodyLimit:             s.cfg.Server.BodyLimitMB * 1024 * 1024,
		ReadTimeout:           time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:          time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		DisableStartupMessage: true,
	})
	s.setupMiddleware()
	s.setupRoutes()
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())

	corsConfig := cors.Config{}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = strings.Join(s.cfg.Server.CORSOrigins, ",")
	}
	s.app.Use(cors.New(corsConfig))

	s.app.Use(middlewareLogger.New(middlewareLogger.Config{
		Format: "${time} ${status} ${latency} ${method} ${path}\n",
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": s.cfg.App.Name})
	})

	api.NewHandler(s.svc).RegisterRoutes(s.app)
}

func (s *Server) gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown failed", logger.F("error", err))
	}
	logger.Info("server stopped")
}
