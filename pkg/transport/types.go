// Package transport is a signed, zstd-compressed request/response transport.
// Every request type T is served on POST /<T's type name> and answered with a
// StdResponse[T].
package transport

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	SignatureHeader string = "x-signature"
	HotkeyHeader    string = "x-hotkey"
	MessageHeader   string = "x-message"

	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8091
	DefaultBodyLimit  = 4 * 1024 * 1024

	DefaultClientTimeout = 12 * time.Second
	DefaultRetryWait     = 250 * time.Millisecond

	HealthRoute = "/health"
)

type Server struct {
	App    *fiber.App
	config *ServerConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	BodyLimit int
	// WhitelistedRoutes skip signature checks and zstd handling.
	WhitelistedRoutes []string
}

type ClientConfig struct {
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

// AuthParams are the signed headers attached to every request.
type AuthParams struct {
	Hotkey    string
	Message   string
	Signature string
}

// RequestContext exposes the verified caller of a request to route handlers.
type RequestContext struct {
	Auth AuthParams
}

type RouterHandler[T any] func(*fiber.Ctx, T) (T, error)
