package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// EndpointValidator performs a pre-flight connectivity check against a
// WebDAV endpoint before a Handle and downloader are built from it: is the
// server reachable, does it speak WebDAV, and do the given credentials
// authenticate. No command of the CLI calls it, and the library itself
// never calls this on the hot path.
type EndpointValidator struct {
	httpClient *http.Client
}

// NewEndpointValidator creates a validator with a short-lived client of its
// own, independent of any Handle.
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        5,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// ValidationResult reports the outcome of each pre-flight stage.
type ValidationResult struct {
	ServerReachable bool
	WebDAVEnabled   bool
	Authenticated   bool
	Errors          []string
}

// Validate runs reachability, WebDAV-capability, and authentication checks
// against baseURL in order, stopping at the first failing stage.
func (v *EndpointValidator) Validate(ctx context.Context, baseURL, username, password string) (*ValidationResult, error) {
	result := &ValidationResult{Errors: []string{}}
	normalized := strings.TrimSuffix(baseURL, "/")

	if err := v.checkReachable(ctx, normalized); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("server unreachable: %v", err))
		return result, nil
	}
	result.ServerReachable = true

	if err := v.checkWebDAV(ctx, normalized); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("WebDAV not available: %v", err))
		return result, nil
	}
	result.WebDAVEnabled = true

	if err := v.checkAuth(ctx, normalized, username, password); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("authentication failed: %v", err))
		return result, nil
	}
	result.Authenticated = true

	return result, nil
}

func (v *EndpointValidator) checkReachable(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "webdavfetch/1.0")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("server is rate limiting requests")
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server returned status: %d", resp.StatusCode)
	}
	return nil
}

func (v *EndpointValidator) checkWebDAV(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create OPTIONS request: %w", err)
	}
	req.Header.Set("User-Agent", "webdavfetch/1.0")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if len(resp.Header.Values("DAV")) == 0 {
		return fmt.Errorf("endpoint missing DAV header")
	}
	return nil
}

func (v *EndpointValidator) checkAuth(ctx context.Context, baseURL, username, password string) error {
	handle, err := New(username, password, baseURL)
	if err != nil {
		return fmt.Errorf("failed to build auth handle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", handle.BaseURL().String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create PROPFIND request: %w", err)
	}
	req.Header.Set("Depth", "0")
	req.Header.Set("Content-Type", "application/xml")

	resp, err := handle.Client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("invalid credentials")
	}
	if resp.StatusCode != http.StatusMultiStatus && resp.StatusCode < 200 || resp.StatusCode >= 300 && resp.StatusCode != http.StatusMultiStatus {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections held by the validator's client.
func (v *EndpointValidator) Close() {
	if transport, ok := v.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
