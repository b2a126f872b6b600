package toolprotocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/httpclient"
)

// HTTPConfig points at an HTTP tool server. BaseURL is expected to expose
// "GET {BaseURL}/tools" for discovery and "POST {BaseURL}/tools/{name}"
// for a call, mirroring the shape most HTTP-based tool servers in the wild
// already use.
type HTTPConfig struct {
	BaseURL string
	Headers map[string]string
	Auth    httpclient.AuthConfig
	Query   []httpclient.KeyValue
}

type httpTransport struct {
	baseURL string
	client  *http.Client

	mu sync.Mutex // serializes nothing transport-specific today, but keeps the
	// shape symmetric with stdioTransport: a future multi-request-in-flight
	// id scheme (e.g. request coalescing) has a lock ready to use.
}

// DialHTTP builds a Transport against an HTTP tool server, reusing the same
// SSRF-hardened client builder every other HTTP-speaking node in this
// module goes through.
func DialHTTP(ctx context.Context, cfg HTTPConfig) (Transport, error) {
	headers := make([]httpclient.KeyValue, 0, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers = append(headers, httpclient.KeyValue{Key: k, Value: v})
	}

	client, err := httpclient.New(ctx, &httpclient.Config{
		Auth:        cfg.Auth,
		Headers:     headers,
		QueryParams: cfg.Query,
		Security: httpclient.SecurityConfig{
			FollowRedirects: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("toolprotocol: building http client: %w", err)
	}

	return &httpTransport{baseURL: strings.TrimRight(cfg.BaseURL, "/"), client: client}, nil
}

func (t *httpTransport) Discover(ctx context.Context) ([]Tool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/tools", nil)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryToolProtocol, "", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryToolProtocol, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.CategoryToolProtocol, "", fmt.Sprintf("discover: server returned status %d", resp.StatusCode))
	}

	var tools []Tool
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return nil, errs.Wrap(errs.CategoryToolProtocol, "", fmt.Errorf("decoding discover response: %w", err))
	}
	return tools, nil
}

func (t *httpTransport) Call(ctx context.Context, call Request) (Response, error) {
	body, err := json.Marshal(call.Args)
	if err != nil {
		return Response{}, errs.Wrap(errs.CategoryToolProtocol, "", fmt.Errorf("encoding arguments: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/tools/"+call.Tool, bytes.NewReader(body))
	if err != nil {
		return Response{}, errs.Wrap(errs.CategoryToolProtocol, "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Response{}, errs.Wrap(errs.CategoryToolProtocol, "", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Result   any      `json:"result"`
		Error    string   `json:"error,omitempty"`
		Warnings []string `json:"warnings,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Response{}, errs.Wrap(errs.CategoryToolProtocol, "", fmt.Errorf("decoding response: %w", err))
	}

	// A non-2xx status with no decoded error body is a transport-level
	// failure (the server itself is unreachable or misbehaving); a 2xx or
	// an explicit error field is the tool reporting its own outcome.
	if resp.StatusCode >= 300 && payload.Error == "" {
		return Response{}, errs.New(errs.CategoryToolProtocol, "", fmt.Sprintf("call %q: server returned status %d", call.Tool, resp.StatusCode))
	}
	if payload.Error != "" {
		return Response{IsError: true, Message: payload.Error, Warnings: payload.Warnings}, nil
	}
	return Response{Result: payload.Result, Warnings: payload.Warnings}, nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
