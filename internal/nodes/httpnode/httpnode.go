// Package httpnode implements the built-in "http" node: it issues a single
// outbound HTTP request and reports the response (or a non-2xx status) back
// to the workflow.
//
// Interface:
// - Writes: shared["status"]: int
// - Writes: shared["body"]: string
// - Writes: shared["body_is_binary"]: bool
// - Writes: shared["response_headers"]: dict
// - Params: url: string
// - Params: method: string                  # default GET
// - Params: headers: dict                   # default {}
// - Params: body: string                    # default
// - Actions: default (status is 2xx), error (status is not 2xx)
//
// Grounded on the teacher's executeHTTPNode (nodes_http.go): SSRF-validated
// client, size-limited body read, truncation check by probing one extra
// byte past the limit. The client construction itself is delegated to
// pkg/httpclient rather than reimplementing SSRF checks and a bespoke
// http.Transport here, since that package already carries the teacher's
// zero-trust network config through to a *http.Client.
package httpnode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/loomrun/loom/pkg/binary"
	"github.com/loomrun/loom/pkg/config"
	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/httpclient"
	"github.com/loomrun/loom/pkg/node"
	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/store"
)

const interfaceDoc = `Interface:
- Writes: shared["status"]: int
- Writes: shared["body"]: string
- Writes: shared["body_is_binary"]: bool
- Writes: shared["response_headers"]: dict
- Params: url: string
- Params: method: string # default GET
- Params: headers: dict # default {}
- Params: body: string # default
- Actions: default (status is 2xx), error (status is not 2xx)
`

// Register adds the "http" node type to reg, using cfg's zero-trust network
// settings for every request this node type issues.
func Register(reg *registry.Registry, cfg *config.Config) error {
	return reg.Register("http", interfaceDoc, func() registry.Node {
		return &httpNode{cfg: cfg}
	})
}

type httpNode struct {
	cfg *config.Config
}

type preparedRequest struct {
	url     string
	method  string
	headers map[string]any
	body    string
}

func (n *httpNode) Prep(shared *store.Namespace, params map[string]any) (any, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return nil, errs.New(errs.CategoryHTTP, shared.NodeID(), "http node missing url")
	}

	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	headers, _ := params["headers"].(map[string]any)
	body, _ := params["body"].(string)

	return preparedRequest{url: url, method: method, headers: headers, body: body}, nil
}

type rawResponse struct {
	status  int
	headers http.Header
	body    []byte
}

func (n *httpNode) Exec(prep any) (any, error) {
	req := prep.(preparedRequest)

	httpCfg := &httpclient.Config{
		UID: "http-node",
		Security: httpclient.SecurityConfig{
			MaxRedirects:       n.cfg.MaxHTTPRedirects,
			MaxResponseSize:    n.cfg.MaxResponseSize,
			FollowRedirects:    true,
			BlockPrivateIPs:    !n.cfg.AllowPrivateIPs,
			BlockLocalhost:     !n.cfg.AllowLocalhost,
			BlockLinkLocal:     !n.cfg.AllowLinkLocal,
			BlockCloudMetadata: !n.cfg.AllowCloudMetadata,
			AllowedDomains:     n.cfg.AllowedDomains,
		},
		Network: httpclient.NetworkConfig{
			Timeout: n.cfg.HTTPTimeout,
		},
	}
	for k, v := range req.headers {
		if s, ok := v.(string); ok {
			httpCfg.Headers = append(httpCfg.Headers, httpclient.KeyValue{Key: k, Value: s})
		}
	}

	client, err := httpclient.New(context.Background(), httpCfg)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryHTTP, "", fmt.Errorf("building http client: %w", err))
	}

	httpReq, err := http.NewRequest(req.method, req.url, strings.NewReader(req.body))
	if err != nil {
		return nil, errs.Wrap(errs.CategoryHTTP, "", fmt.Errorf("building request: %w", err))
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryHTTP, "", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	limit := n.cfg.MaxResponseSize
	if limit <= 0 {
		limit = 10 * 1024 * 1024
	}
	limited := io.LimitReader(resp.Body, limit)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, errs.Wrap(errs.CategoryHTTP, "", fmt.Errorf("reading response body: %w", err))
	}
	if int64(len(body)) == limit {
		oneByte := make([]byte, 1)
		if n, _ := resp.Body.Read(oneByte); n > 0 {
			return nil, errs.New(errs.CategoryHTTP, "", fmt.Sprintf("response too large (exceeds %d bytes limit)", limit))
		}
	}

	return rawResponse{status: resp.StatusCode, headers: resp.Header, body: body}, nil
}

func (n *httpNode) Post(shared *store.Namespace, prep, exec any) (string, error) {
	resp := exec.(rawResponse)

	shared.Set("status", resp.status)

	headers := make(map[string]any, len(resp.headers))
	for k, v := range resp.headers {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	shared.Set("response_headers", headers)

	if binary.IsBinaryValue(resp.body) {
		enc := binary.Encode(resp.body)
		shared.Set("body", enc.Value)
		shared.Set(binary.FlagKey("body"), true)
		if enc.Warning != "" {
			shared.Set(node.WarningsKey, []string{enc.Warning})
		}
	} else {
		shared.Set("body", string(resp.body))
		shared.Set(binary.FlagKey("body"), false)
	}

	if resp.status >= 200 && resp.status < 300 {
		return "default", nil
	}
	return "error", nil
}
