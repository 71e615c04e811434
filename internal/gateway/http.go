package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crowdfund/internal/domain"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a provider error response is kept for logs.
const maxErrorBody = 4 << 10

func newHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

// decodeOrFail decodes a 2xx provider response into out, or returns a
// gateway-unavailable error carrying the raw provider body for diagnostics.
func decodeOrFail(resp *http.Response, provider string, out any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s status %d: %s: %w", provider, resp.StatusCode, string(body), domain.ErrGatewayUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, domain.ErrGatewayUnavailable)
	}
	return nil
}

func transportErr(provider string, err error) error {
	return fmt.Errorf("%s: %v: %w", provider, err, domain.ErrGatewayUnavailable)
}

func checkAmount(amountInt int64) error {
	if amountInt <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}
