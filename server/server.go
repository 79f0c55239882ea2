// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server exposes the session manager over HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/poiesic/concierge/session"
	"github.com/poiesic/concierge/storage"
)

// Server is the HTTP API in front of a session.Manager.
type Server struct {
	app        *fiber.App
	manager    *session.Manager
	catalog    storage.CatalogRepository
	attempts   int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog enables the residence badge endpoint.
func WithCatalog(catalog storage.CatalogRepository) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithRetry retries queries that fail with upstream timeouts or outages.
// Default is a single attempt.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(s *Server) {
		s.attempts = max(attempts, 1)
		s.retryDelay = baseDelay
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a Server with every route registered.
func New(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:  manager,
		attempts: 1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.app = fiber.New(fiber.Config{
		AppName:               "concierge",
		BodyLimit:             64 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(s.logger),
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)

	s.registerRoutes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")

	sessions := api.Group("/sessions")
	sessions.Post("", s.createSession)
	sessions.Get("/:id", s.getSession)
	sessions.Post("/:id/query", s.query)
	sessions.Post("/:id/end", s.endSession)
	sessions.Post("/:id/suggestions", s.acceptSuggestion)
	sessions.Post("/:id/custom", s.addCustom)

	api.Get("/badges/:position", s.badge)
	api.Get("/residences/:id/badges", s.residenceBadges)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"elapsed", time.Since(start))
	return err
}
