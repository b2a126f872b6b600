package toolprotocol

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/loomrun/loom/pkg/logging"
)

var defaultLogger = logging.New(logging.DefaultConfig())

// ServerConfig describes one tool server to discover and register, read
// from a loom config file. Exactly one of Command or URL is set.
type ServerConfig struct {
	Name string `json:"name"`

	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Env     []string `json:"env,omitempty"`

	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	RatePerSecond float64 `json:"rate_per_second,omitempty"`
	Burst         int     `json:"burst,omitempty"`
}

// discoveryCacheEntry is what's persisted per config file: the file's
// fingerprint at discovery time, plus what was discovered. A later load
// re-fingerprints the file and only re-discovers (paying the cost of
// actually talking to every server) if it changed.
type discoveryCacheEntry struct {
	Fingerprint string           `json:"fingerprint"`
	Tools       map[string][]Tool `json:"tools"` // keyed by server name
}

// fingerprintFile combines a config file's mtime and content hash, so a
// change to either one invalidates the cached entry; a touch or a
// byte-identical rewrite with a new mtime counts as a change (conservative).
func fingerprintFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("toolprotocol: stat %q: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("toolprotocol: reading %q: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%d-%s", info.ModTime().UnixNano(), hex.EncodeToString(sum[:])), nil
}

// DiscoveryCache persists discovered tool lists across runs, keyed by a
// server config file's fingerprint, so a workflow that hasn't touched its
// tool-server config doesn't pay the cost of re-querying every server on
// every compile.
type DiscoveryCache struct {
	path string
}

// NewDiscoveryCache opens (without yet reading) a discovery cache file at
// path.
func NewDiscoveryCache(path string) *DiscoveryCache {
	return &DiscoveryCache{path: path}
}

// Load returns the cached tool lists for configPath if its fingerprint
// still matches what was last discovered; ok is false on any miss
// (no cache file yet, corrupt cache, or the config changed).
func (d *DiscoveryCache) Load(configPath string) (map[string][]Tool, bool) {
	fp, err := fingerprintFile(configPath)
	if err != nil {
		return nil, false
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, false
	}
	var entry discoveryCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Fingerprint != fp {
		return nil, false
	}
	return entry.Tools, true
}

// Store persists tools for configPath's current fingerprint, overwriting
// any previous entry.
func (d *DiscoveryCache) Store(configPath string, tools map[string][]Tool) error {
	fp, err := fingerprintFile(configPath)
	if err != nil {
		return err
	}
	data, err := json.Marshal(discoveryCacheEntry{Fingerprint: fp, Tools: tools})
	if err != nil {
		return fmt.Errorf("toolprotocol: encoding discovery cache: %w", err)
	}
	return os.WriteFile(d.path, data, 0o600)
}

// DiscoverAll dials every server in servers, discovers its tools, and
// returns them keyed by server name. It always talks to every server
// directly — cache consultation is the caller's job via DiscoveryCache
// (cmd/loom's registerToolServers calls it only on a cache miss).
func DiscoverAll(ctx context.Context, servers []ServerConfig, timeout time.Duration) (map[string][]Tool, error) {
	out := make(map[string][]Tool, len(servers))
	for _, srv := range servers {
		log := defaultLogger.WithField("server", srv.Name)

		transport, client, err := dial(ctx, srv)
		if err != nil {
			log.WithError(err).Error("toolprotocol: dialing server failed")
			return nil, fmt.Errorf("toolprotocol: dialing %q: %w", srv.Name, err)
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		tools, err := client.Discover(callCtx)
		if cancel != nil {
			cancel()
		}
		_ = transport.Close()
		if err != nil {
			log.WithError(err).Error("toolprotocol: discovering tools failed")
			return nil, fmt.Errorf("toolprotocol: discovering %q: %w", srv.Name, err)
		}
		log.WithField("tool_count", len(tools)).Debug("toolprotocol: discovered server tools")
		out[srv.Name] = tools
	}
	return out, nil
}

func dial(ctx context.Context, srv ServerConfig) (Transport, *Client, error) {
	var transport Transport
	var err error
	if srv.Command != "" {
		transport, err = DialStdio(StdioConfig{Command: srv.Command, Args: srv.Args, Env: srv.Env})
	} else {
		transport, err = DialHTTP(ctx, HTTPConfig{BaseURL: srv.URL, Headers: srv.Headers})
	}
	if err != nil {
		return nil, nil, err
	}
	client := NewClient(srv.Name, transport, ClientConfig{RatePerSecond: srv.RatePerSecond, Burst: srv.Burst})
	return transport, client, nil
}
