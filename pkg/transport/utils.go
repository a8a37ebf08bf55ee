package transport

import (
	"context"
	"errors"
	"net"
	"reflect"
	"slices"

	"github.com/gofiber/fiber/v2"
)

func createResponse[T any](body T, err error) StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return StdResponse[T]{Body: body, Error: &errMsg}
	}
	return StdResponse[T]{Body: body}
}

// GetRequestContext extracts the auth headers of a request for handler logic.
func GetRequestContext(c *fiber.Ctx) *RequestContext {
	return &RequestContext{
		Auth: AuthParams{
			Hotkey:    c.Get(HotkeyHeader),
			Message:   c.Get(MessageHeader),
			Signature: c.Get(SignatureHeader),
		},
	}
}

// RouteFor returns the path a request of type T is served on.
func RouteFor[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return "/" + t.Name()
}

// IsTimeout reports whether err came from a request deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isWhitelisted(path string, routes []string) bool {
	return slices.Contains(routes, path)
}
