package transport

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/prompting/pkg/signature"
)

type EchoRequest struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type mockVerifier struct {
	shouldVerify bool
	shouldError  bool
}

func (m *mockVerifier) Verify(message, sig, hotkey string) (bool, error) {
	if m.shouldError {
		return false, errors.New("verification error")
	}
	return m.shouldVerify, nil
}

func newSigner(t testing.TB) *signature.KeypairSigner {
	t.Helper()
	keypair, err := sr25519.GenerateKeypair()
	require.NoError(t, err)
	signer, err := signature.NewSigner(keypair)
	require.NoError(t, err)
	return signer
}

func decodeStd[T any](t *testing.T, body io.Reader) StdResponse[T] {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var out StdResponse[T]
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return out
}

func postJSON(t *testing.T, app *fiber.App, path string, body []byte, headers map[string]string) *httptestResponse {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return &httptestResponse{Code: resp.StatusCode, Body: resp.Body, Header: resp.Header.Get}
}

type httptestResponse struct {
	Code   int
	Body   io.Reader
	Header func(string) string
}

func TestNewServerDefaults(t *testing.T) {
	server := NewServer(nil, nil)
	require.NotNil(t, server.App)
	assert.Equal(t, DefaultServerHost, server.config.Host)
	assert.Equal(t, DefaultServerPort, server.config.Port)
	assert.Equal(t, DefaultBodyLimit, server.config.BodyLimit)
	assert.Equal(t, []string{HealthRoute}, server.config.WhitelistedRoutes)
	assert.Equal(t, "0.0.0.0:8091", server.Addr())

	server = NewServer(&ServerConfig{Host: "127.0.0.1", Port: 9999, BodyLimit: 1024}, nil)
	assert.Equal(t, "127.0.0.1:9999", server.Addr())
	assert.Equal(t, 1024, server.config.BodyLimit)
}

func TestHealthRouteBypassesSignature(t *testing.T) {
	server := NewServer(nil, &mockVerifier{shouldVerify: false})

	resp, err := server.App.Test(httptest.NewRequest(fiber.MethodGet, HealthRoute, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeStd[string](t, resp.Body).Body)
}

func TestFiberErrHandler(t *testing.T) {
	server := NewServer(&ServerConfig{WhitelistedRoutes: []string{"/boom", "/generic"}}, nil)
	server.App.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "test error")
	})
	server.App.Get("/generic", func(c *fiber.Ctx) error {
		return errors.New("generic error")
	})

	resp, err := server.App.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decodeStd[map[string]any](t, resp.Body)
	require.NotNil(t, out.Error)
	assert.Equal(t, "test error", *out.Error)

	resp, err = server.App.Test(httptest.NewRequest(fiber.MethodGet, "/generic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	out = decodeStd[map[string]any](t, resp.Body)
	require.NotNil(t, out.Error)
	assert.Equal(t, "generic error", *out.Error)
}

func TestServeRoute(t *testing.T) {
	t.Run("doubles value", func(t *testing.T) {
		server := NewServer(nil, nil)
		ServeRoute(server, func(c *fiber.Ctx, req EchoRequest) (EchoRequest, error) {
			req.Value *= 2
			return req, nil
		})

		body, _ := sonic.Marshal(EchoRequest{Name: "test", Value: 5})
		resp := postJSON(t, server.App, "/EchoRequest", body, nil)
		assert.Equal(t, fiber.StatusOK, resp.Code)
		out := decodeStd[EchoRequest](t, resp.Body)
		assert.Nil(t, out.Error)
		assert.Equal(t, EchoRequest{Name: "test", Value: 10}, out.Body)
	})

	t.Run("invalid json", func(t *testing.T) {
		server := NewServer(nil, nil)
		ServeRoute(server, func(c *fiber.Ctx, req EchoRequest) (EchoRequest, error) { return req, nil })

		resp := postJSON(t, server.App, "/EchoRequest", []byte("invalid json"), nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.Code)
		assert.NotNil(t, decodeStd[map[string]any](t, resp.Body).Error)
	})

	t.Run("handler error", func(t *testing.T) {
		server := NewServer(nil, nil)
		ServeRoute(server, func(c *fiber.Ctx, req EchoRequest) (EchoRequest, error) {
			return EchoRequest{}, errors.New("handler error")
		})

		body, _ := sonic.Marshal(EchoRequest{Name: "test"})
		resp := postJSON(t, server.App, "/EchoRequest", body, nil)
		assert.Equal(t, fiber.StatusInternalServerError, resp.Code)
		out := decodeStd[EchoRequest](t, resp.Body)
		require.NotNil(t, out.Error)
		assert.Equal(t, "handler error", *out.Error)
	})
}

func TestZstdMiddleware(t *testing.T) {
	server := NewServer(nil, nil)
	ServeRoute(server, func(c *fiber.Ctx, req EchoRequest) (EchoRequest, error) { return req, nil })

	body, _ := sonic.Marshal(EchoRequest{Name: "compressed", Value: 3})
	resp := postJSON(t, server.App, "/EchoRequest", zstdEncoder.EncodeAll(body, nil), map[string]string{
		fiber.HeaderContentEncoding: "zstd",
		fiber.HeaderAcceptEncoding:  "zstd",
	})
	require.Equal(t, fiber.StatusOK, resp.Code)
	assert.Equal(t, "zstd", resp.Header(fiber.HeaderContentEncoding))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	plain, err := zstdDecoder.DecodeAll(raw, nil)
	require.NoError(t, err)
	var out StdResponse[EchoRequest]
	require.NoError(t, sonic.Unmarshal(plain, &out))
	assert.Equal(t, "compressed", out.Body.Name)

	resp = postJSON(t, server.App, "/EchoRequest", []byte("not zstd"), map[string]string{
		fiber.HeaderContentEncoding: "zstd",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.Code)
}

func TestSignatureMiddleware(t *testing.T) {
	body, _ := sonic.Marshal(EchoRequest{Name: "signed", Value: 1})
	signer := newSigner(t)
	client := NewClient(nil, signer)
	auth, err := client.CreateAuthParams(body)
	require.NoError(t, err)
	signedHeaders := map[string]string{
		HotkeyHeader:    auth.Hotkey,
		MessageHeader:   auth.Message,
		SignatureHeader: auth.Signature,
	}

	newServer := func(v signature.Verifier) *Server {
		s := NewServer(nil, v)
		ServeRoute(s, func(c *fiber.Ctx, req EchoRequest) (EchoRequest, error) {
			req.Name = GetRequestContext(c).Auth.Hotkey
			return req, nil
		})
		return s
	}

	t.Run("missing headers", func(t *testing.T) {
		resp := postJSON(t, newServer(signature.NewVerifier()).App, "/EchoRequest", body, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.Code)
	})

	t.Run("valid signature", func(t *testing.T) {
		resp := postJSON(t, newServer(signature.NewVerifier()).App, "/EchoRequest", body, signedHeaders)
		require.Equal(t, fiber.StatusOK, resp.Code)
		assert.Equal(t, signer.Hotkey(), decodeStd[EchoRequest](t, resp.Body).Body.Name)
	})

	t.Run("body does not match signed digest", func(t *testing.T) {
		other, _ := sonic.Marshal(EchoRequest{Name: "tampered", Value: 1})
		resp := postJSON(t, newServer(signature.NewVerifier()).App, "/EchoRequest", other, signedHeaders)
		assert.Equal(t, fiber.StatusForbidden, resp.Code)
	})

	t.Run("verifier rejects", func(t *testing.T) {
		resp := postJSON(t, newServer(&mockVerifier{shouldVerify: false}).App, "/EchoRequest", body, signedHeaders)
		assert.Equal(t, fiber.StatusForbidden, resp.Code)
	})

	t.Run("verifier errors", func(t *testing.T) {
		resp := postJSON(t, newServer(&mockVerifier{shouldError: true}).App, "/EchoRequest", body, signedHeaders)
		assert.Equal(t, fiber.StatusBadRequest, resp.Code)
	})

	t.Run("stale message", func(t *testing.T) {
		stale := signature.RequestMessage(signer.Hotkey(), time.Now().Add(-time.Hour).UnixNano(), body)
		sig, err := signer.Sign(stale)
		require.NoError(t, err)
		resp := postJSON(t, newServer(signature.NewVerifier()).App, "/EchoRequest", body, map[string]string{
			HotkeyHeader:    signer.Hotkey(),
			MessageHeader:   stale,
			SignatureHeader: sig,
		})
		assert.Equal(t, fiber.StatusForbidden, resp.Code)
	})
}

func TestRouteFor(t *testing.T) {
	assert.Equal(t, "/EchoRequest", RouteFor[EchoRequest]())
	assert.Equal(t, "/EchoRequest", RouteFor[*EchoRequest]())
}

func BenchmarkServeRoute(b *testing.B) {
	server := NewServer(nil, nil)
	ServeRoute(server, func(c *fiber.Ctx, req EchoRequest) (EchoRequest, error) { return req, nil })
	body, _ := sonic.Marshal(EchoRequest{Name: "benchmark", Value: 42})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/EchoRequest", bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		_, _ = server.App.Test(req)
	}
}
