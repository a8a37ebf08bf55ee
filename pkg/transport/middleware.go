package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/pkg/signature"
)

// shared decoder/encoder; DecodeAll and EncodeAll are safe for concurrent use
var (
	zstdDecoder, _ = zstd.NewReader(nil)
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
)

// ZstdMiddleware decompresses zstd request bodies and compresses responses
// for clients that accept zstd.
func ZstdMiddleware(whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isWhitelisted(c.Path(), whitelistedRoutes) {
			return c.Next()
		}

		if strings.EqualFold(c.Get(fiber.HeaderContentEncoding), "zstd") {
			if body := c.Request().Body(); len(body) > 0 {
				decompressed, err := zstdDecoder.DecodeAll(body, nil)
				if err != nil {
					log.Err(err).Msg("Failed to decompress request")
					return c.Status(fiber.StatusBadRequest).JSON(createResponse(
						map[string]any{},
						fmt.Errorf("failed to decompress zstd data: %w", err),
					))
				}
				c.Request().SetBody(decompressed)
				c.Request().Header.Del(fiber.HeaderContentEncoding)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		if strings.Contains(strings.ToLower(c.Get(fiber.HeaderAcceptEncoding)), "zstd") {
			responseBody := c.Response().Body()
			if len(responseBody) > 0 {
				compressed := zstdEncoder.EncodeAll(responseBody, nil)
				c.Response().SetBody(compressed)
				c.Set(fiber.HeaderContentEncoding, "zstd")
				c.Set(fiber.HeaderContentLength, strconv.Itoa(len(compressed)))

				log.Trace().
					Int("original_size", len(responseBody)).
					Int("compressed_size", len(compressed)).
					Msg("Response body compressed")
			}
		}
		return nil
	}
}

// SignatureMiddleware rejects requests whose signed message does not verify
// against the sender hotkey or does not bind the received body.
func SignatureMiddleware(verifier signature.Verifier, whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isWhitelisted(c.Path(), whitelistedRoutes) {
			return c.Next()
		}

		auth := GetRequestContext(c).Auth
		if auth.Hotkey == "" || auth.Signature == "" || auth.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(
				map[string]any{},
				fmt.Errorf("%s, missing headers, expected: %s, %s, %s",
					http.StatusText(http.StatusBadRequest),
					SignatureHeader, HotkeyHeader, MessageHeader),
			))
		}

		ok, err := verifier.Verify(auth.Message, auth.Signature, auth.Hotkey)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(
				map[string]any{}, fmt.Errorf("signature verification error: %w", err)))
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(createResponse(
				map[string]any{},
				fmt.Errorf("%s due to invalid signature", http.StatusText(http.StatusForbidden)),
			))
		}

		if err := signature.CheckRequestMessage(auth.Message, auth.Hotkey, c.Body(), time.Now()); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(createResponse(
				map[string]any{}, fmt.Errorf("%s: %w", http.StatusText(http.StatusForbidden), err)))
		}

		log.Debug().Str("hotkey", auth.Hotkey).Str("path", c.Path()).Msg("Verified signature")
		return c.Next()
	}
}
