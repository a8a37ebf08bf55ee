package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/pkg/signature"
)

// NewServer creates a transport server. A nil verifier disables signature
// checks, which is only meant for local mock setups.
func NewServer(serverConfig *ServerConfig, verifier signature.Verifier) *Server {
	if serverConfig == nil {
		serverConfig = &ServerConfig{}
	}
	if serverConfig.Host == "" {
		serverConfig.Host = DefaultServerHost
	}
	if serverConfig.Port == 0 {
		serverConfig.Port = DefaultServerPort
	}
	if serverConfig.BodyLimit == 0 {
		serverConfig.BodyLimit = DefaultBodyLimit
	}
	if serverConfig.WhitelistedRoutes == nil {
		serverConfig.WhitelistedRoutes = []string{HealthRoute}
	}

	log.Info().
		Str("host", serverConfig.Host).
		Int("port", serverConfig.Port).
		Int("body_limit", serverConfig.BodyLimit).
		Bool("signed", verifier != nil).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return !isWhitelisted(c.Path(), serverConfig.WhitelistedRoutes)
		},
	}))
	app.Use(ZstdMiddleware(serverConfig.WhitelistedRoutes))
	if verifier != nil {
		app.Use(SignatureMiddleware(verifier, serverConfig.WhitelistedRoutes))
	}

	app.Get(HealthRoute, func(c *fiber.Ctx) error {
		return c.JSON(createResponse("ok", nil))
	})

	return &Server{App: app, config: serverConfig}
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]any{}, err))
}

// ServeRoute registers handler on POST /<T's type name>.
func ServeRoute[T any](s *Server, handler RouterHandler[T]) {
	route := RouteFor[T]()

	s.App.Post(route, func(c *fiber.Ctx) error {
		var req T
		if err := c.BodyParser(&req); err != nil {
			log.Error().Err(err).Str("route", route).Msg("Failed to parse request body")
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(map[string]any{}, err))
		}

		resp, err := handler(c, req)
		if err != nil {
			log.Error().Err(err).Str("route", route).Msg("Handler returned error")
			var zero T
			return c.Status(fiber.StatusInternalServerError).JSON(createResponse(zero, err))
		}

		return c.JSON(createResponse(resp, nil))
	})
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start blocks serving on the configured address until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.Addr()).Msg("Transport server listening")
	return s.App.Listen(s.Addr())
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
