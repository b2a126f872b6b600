package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/loomrun/loom/pkg/registry"
	"github.com/loomrun/loom/pkg/toolprotocol"
)

// registerToolServers reads configPath as a JSON array of
// toolprotocol.ServerConfig entries, discovers each server's tools, and
// registers every one as its own synthetic node type ("tool-<server>-
// <tool>"). Discovery results are cached at cachePath keyed by configPath's
// fingerprint, so a workflow run that hasn't touched its tool-server config
// doesn't re-dial every server first.
func registerToolServers(ctx context.Context, reg *registry.Registry, configPath, cachePath string, timeout time.Duration) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading tool server config %q: %w", configPath, err)
	}
	var servers []toolprotocol.ServerConfig
	if err := json.Unmarshal(data, &servers); err != nil {
		return fmt.Errorf("parsing tool server config %q: %w", configPath, err)
	}

	cache := toolprotocol.NewDiscoveryCache(cachePath)
	tools, ok := cache.Load(configPath)
	if !ok {
		tools, err = toolprotocol.DiscoverAll(ctx, servers, timeout)
		if err != nil {
			return err
		}
		if err := cache.Store(configPath, tools); err != nil {
			return fmt.Errorf("storing tool discovery cache: %w", err)
		}
	}

	for _, srv := range servers {
		client, err := dialToolServer(ctx, srv)
		if err != nil {
			return fmt.Errorf("dialing tool server %q: %w", srv.Name, err)
		}
		if err := toolprotocol.RegisterServer(reg, srv.Name, tools[srv.Name], client); err != nil {
			return err
		}
	}
	return nil
}

// dialToolServer opens a persistent transport+client for srv, the same way
// DiscoverAll's internal dial does, except this one outlives discovery:
// DiscoverAll closes its own transport the moment it has a tool list, so a
// node that later calls one of srv's tools needs its own long-lived Client.
func dialToolServer(ctx context.Context, srv toolprotocol.ServerConfig) (*toolprotocol.Client, error) {
	var transport toolprotocol.Transport
	var err error
	if srv.Command != "" {
		transport, err = toolprotocol.DialStdio(toolprotocol.StdioConfig{Command: srv.Command, Args: srv.Args, Env: srv.Env})
	} else {
		transport, err = toolprotocol.DialHTTP(ctx, toolprotocol.HTTPConfig{BaseURL: srv.URL, Headers: srv.Headers})
	}
	if err != nil {
		return nil, err
	}
	return toolprotocol.NewClient(srv.Name, transport, toolprotocol.ClientConfig{RatePerSecond: srv.RatePerSecond, Burst: srv.Burst}), nil
}
