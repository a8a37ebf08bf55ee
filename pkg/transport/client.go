package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/prompting/pkg/signature"
)

type Client struct {
	config      *ClientConfig
	restyClient *resty.Client
	signer      signature.Signer
}

// NewClient creates a transport client. Requests are signed when signer is
// non-nil.
func NewClient(config *ClientConfig, signer signature.Signer) *Client {
	if config == nil {
		config = &ClientConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.RetryWait == 0 {
		config.RetryWait = DefaultRetryWait
	}

	restyClient := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryWait).
		SetRetryMaxWaitTime(config.RetryWait * 2).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader(fiber.HeaderAcceptEncoding, "zstd")

	return &Client{config: config, restyClient: restyClient, signer: signer}
}

// CreateAuthParams signs a message binding body to this client's hotkey.
func (c *Client) CreateAuthParams(body []byte) (AuthParams, error) {
	if c.signer == nil {
		return AuthParams{}, fmt.Errorf("signer not initialized")
	}

	message := signature.RequestMessage(c.signer.Hotkey(), time.Now().UnixNano(), body)
	sig, err := c.signer.Sign(message)
	if err != nil {
		return AuthParams{}, fmt.Errorf("failed to sign message: %w", err)
	}
	return AuthParams{Hotkey: c.signer.Hotkey(), Message: message, Signature: sig}, nil
}

func (c *Client) buildHeaders(auth *AuthParams) map[string]string {
	headers := map[string]string{
		fiber.HeaderContentType:     fiber.MIMEApplicationJSON,
		fiber.HeaderContentEncoding: "zstd",
		fiber.HeaderAcceptEncoding:  "zstd",
	}
	if auth != nil {
		headers[SignatureHeader] = auth.Signature
		headers[MessageHeader] = auth.Message
		headers[HotkeyHeader] = auth.Hotkey
	}
	return headers
}

func (c *Client) post(ctx context.Context, endpoint string, request any) ([]byte, error) {
	jsonData, err := sonic.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var auth *AuthParams
	if c.signer != nil {
		a, err := c.CreateAuthParams(jsonData)
		if err != nil {
			return nil, err
		}
		auth = &a
	}

	headers := c.buildHeaders(auth)
	log.Trace().Str("endpoint", endpoint).Int("body_size", len(jsonData)).Msg("Sending request")

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(zstdEncoder.EncodeAll(jsonData, nil)).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	responseBody := resp.Body()
	if strings.EqualFold(resp.Header().Get(fiber.HeaderContentEncoding), "zstd") {
		responseBody, err = zstdDecoder.DecodeAll(responseBody, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress response: %w", err)
		}
	}

	if resp.IsError() {
		return responseBody, &StatusError{Code: resp.StatusCode(), Body: string(responseBody)}
	}
	return responseBody, nil
}

// Send posts request to baseURL and unwraps the StdResponse body. The whole
// exchange is bounded by timeout when it is positive.
func Send[Req, Resp any](ctx context.Context, c *Client, baseURL string, request Req, timeout time.Duration) (Resp, error) {
	var zero Resp
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	endpoint := strings.TrimSuffix(baseURL, "/") + RouteFor[Req]()
	body, err := c.post(ctx, endpoint, request)
	if err != nil {
		return zero, err
	}

	var std StdResponse[Resp]
	if err := sonic.Unmarshal(body, &std); err != nil {
		return zero, fmt.Errorf("failed to unmarshal StdResponse: %w", err)
	}
	if std.Error != nil {
		return zero, fmt.Errorf("server error: %s", *std.Error)
	}
	return std.Body, nil
}

// SendMany sends requests[i] to baseURLs[i] concurrently. Results and errors
// are index-aligned with the inputs.
func SendMany[Req, Resp any](ctx context.Context, c *Client, baseURLs []string, requests []Req, timeout time.Duration) ([]Resp, []error) {
	if len(baseURLs) != len(requests) {
		err := fmt.Errorf("baseURLs and requests must have the same length")
		log.Error().Err(err).Int("urls", len(baseURLs)).Int("requests", len(requests)).Msg("SendMany")
		return nil, []error{err}
	}

	responses := make([]Resp, len(baseURLs))
	errs := make([]error, len(baseURLs))
	var wg sync.WaitGroup
	wg.Add(len(baseURLs))
	for i, url := range baseURLs {
		go func() {
			defer wg.Done()
			responses[i], errs[i] = Send[Req, Resp](ctx, c, url, requests[i], timeout)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("request %d to %s: %w", i, url, errs[i])
			}
		}()
	}
	wg.Wait()
	return responses, errs
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Body)
}
