package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{
			name: "metrics only",
			config: Config{
				ServiceName: "test", ServiceVersion: "1.0.0", Environment: "test",
				EnableTracing: false, EnableMetrics: true,
			},
		},
		{
			name: "tracing only",
			config: Config{
				ServiceName: "test", ServiceVersion: "1.0.0", Environment: "test",
				EnableTracing: true, EnableMetrics: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(ctx, tt.config)
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if tt.config.EnableTracing && provider.Tracer() == nil {
				t.Error("Tracer() returned nil when tracing is enabled")
			}
			if tt.config.EnableMetrics && provider.Meter() == nil {
				t.Error("Meter() returned nil when metrics are enabled")
			}
			if err := provider.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestRecordWorkflowExecution(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordWorkflowExecution(ctx, "wf-123", 100*time.Millisecond, true, 5)
	provider.RecordWorkflowExecution(ctx, "wf-456", 50*time.Millisecond, false, 3)
}

func TestRecordNodeExecution(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordNodeExecution(ctx, "node-1", "http", "default", 10*time.Millisecond, true)
	provider.RecordNodeExecution(ctx, "node-2", "shell", "error", 5*time.Millisecond, false)
	provider.RecordNodeExecution(ctx, "node-3", "tool-myserver-mytool", "default", 200*time.Millisecond, true)
}

func TestRecordHTTPCall(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordHTTPCall(ctx, "GET", "https://api.example.com/data", 200, 150*time.Millisecond)
	provider.RecordHTTPCall(ctx, "POST", "https://api.example.com/submit", 500, 100*time.Millisecond)
}

func TestShutdownIsIdempotentEnough(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	_ = provider.Shutdown(ctx)
}

func TestProviderWithNilMetrics(t *testing.T) {
	ctx := context.Background()
	config := Config{
		ServiceName: "test", ServiceVersion: "1.0.0", Environment: "test",
		EnableTracing: true, EnableMetrics: false,
	}
	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Shutdown(ctx)

	provider.RecordWorkflowExecution(ctx, "test", time.Second, true, 1)
	provider.RecordNodeExecution(ctx, "node1", "number", "default", time.Millisecond, true)
	provider.RecordHTTPCall(ctx, "GET", "http://example.com", 200, time.Second)
}
