package toolprotocol

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/loomrun/loom/pkg/errs"
)

// ClientConfig bounds how a Client is allowed to drive its Transport.
type ClientConfig struct {
	// RatePerSecond caps how many calls per second this client issues
	// against its transport; zero means unbounded. Burst allows that many
	// calls through immediately before the steady-state rate applies;
	// zero defaults to 1.
	RatePerSecond float64
	Burst         int
}

// Client wraps one Transport with the backpressure policy spec.md §5 asks
// for: once the configured rate is exceeded, a further Call blocks on the
// limiter rather than piling requests onto the transport, and reports a
// CategoryToolProtocol "capacity" error if ctx runs out first so the
// node's own retry policy can back off and try again.
type Client struct {
	transport Transport
	limiter   *rate.Limiter
	name      string
}

// NewClient wraps transport for server name (used only in error messages),
// applying cfg's rate bound.
func NewClient(name string, transport Transport, cfg ClientConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &Client{transport: transport, limiter: limiter, name: name}
}

// Call invokes tool, waiting for a rate-limit slot if the client is
// bounded. It never retries itself: transport errors are returned as
// CategoryToolProtocol errors for the caller's own retry policy, and a
// semantic tool failure (Response.IsError) is returned alongside a nil
// error so the caller can route on it as an ordinary node action instead
// of an exception.
func (c *Client) Call(ctx context.Context, tool string, args map[string]any) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, errs.New(errs.CategoryToolProtocol, "", fmt.Sprintf("%s: capacity: %v", c.name, err))
		}
	}

	resp, err := c.transport.Call(ctx, Request{Tool: tool, Args: args})
	if err != nil {
		if _, ok := errs.As(err); ok {
			return Response{}, err
		}
		return Response{}, errs.Wrap(errs.CategoryToolProtocol, "", fmt.Errorf("%s: %w", c.name, err))
	}
	return resp, nil
}

// Discover lists the tools the server advertises.
func (c *Client) Discover(ctx context.Context) ([]Tool, error) {
	tools, err := c.transport.Discover(ctx)
	if err != nil {
		if _, ok := errs.As(err); ok {
			return nil, err
		}
		return nil, errs.Wrap(errs.CategoryToolProtocol, "", fmt.Errorf("%s: %w", c.name, err))
	}
	return tools, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
