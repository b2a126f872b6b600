// Package telemetry provides OpenTelemetry-based metrics and tracing for the
// workflow compiler and execution engine.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "loom-workflow-engine"

	// Metric names use execution/node/action-routing dimensions rather than
	// being scoped to any particular node type, since the node catalog is
	// open (built-in plus tool-protocol synthetic nodes).
	metricWorkflowExecutions = "loom.workflow.executions.total"
	metricWorkflowDuration   = "loom.workflow.execution.duration"
	metricWorkflowSuccess    = "loom.workflow.executions.success.total"
	metricWorkflowFailure    = "loom.workflow.executions.failure.total"
	metricNodeExecutions     = "loom.node.executions.total"
	metricNodeDuration       = "loom.node.execution.duration"
	metricNodeSuccess        = "loom.node.executions.success.total"
	metricNodeFailure        = "loom.node.executions.failure.total"
	metricHTTPCalls          = "loom.http.calls.total"
	metricHTTPDuration       = "loom.http.call.duration"
)

// Exporter selects where the Provider sends spans. Metrics always go to
// the Prometheus exporter, whichever value is set.
type Exporter string

const (
	// ExporterPrometheus leaves spans with the globally registered tracer
	// provider.
	ExporterPrometheus Exporter = "prometheus"
	// ExporterOTLP pushes spans to an OTLP/HTTP collector.
	ExporterOTLP Exporter = "otlp"
)

// Provider manages OpenTelemetry setup and provides access to tracers and meters.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	workflowExecutions metric.Int64Counter
	workflowDuration   metric.Float64Histogram
	workflowSuccess    metric.Int64Counter
	workflowFailure    metric.Int64Counter
	nodeExecutions     metric.Int64Counter
	nodeDuration       metric.Float64Histogram
	nodeSuccess        metric.Int64Counter
	nodeFailure        metric.Int64Counter
	httpCalls          metric.Int64Counter
	httpDuration       metric.Float64Histogram

	mu sync.RWMutex
}

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool

	// MetricsExporter selects the span exporter: ExporterOTLP (with
	// OTLPEndpoint set) sends spans to that collector. Metrics use the
	// Prometheus exporter whatever its value. Defaults to Prometheus.
	MetricsExporter Exporter
	// OTLPEndpoint is the collector address used when MetricsExporter is
	// ExporterOTLP, e.g. "localhost:4318".
	OTLPEndpoint string
}

// DefaultConfig returns default telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:     serviceName,
		ServiceVersion:  "0.1.0",
		Environment:     "development",
		EnableTracing:   true,
		EnableMetrics:   true,
		MetricsExporter: ExporterPrometheus,
	}
}

// NewProvider creates a new telemetry provider.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	provider := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if config.EnableMetrics {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if config.EnableTracing {
		if err := provider.initTracing(ctx, res, config); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	return provider, nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter(serviceName)

	return p.createMetricInstruments()
}

// initTracing wires either the global (OTLP-pushed, if configured) tracer
// provider or falls back to whatever is globally registered.
func (p *Provider) initTracing(ctx context.Context, res *resource.Resource, config Config) error {
	if config.MetricsExporter == ExporterOTLP && config.OTLPEndpoint != "" {
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(config.OTLPEndpoint), otlptracehttp.WithInsecure())
		if err != nil {
			return fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		p.tracerProvider = tp
		otel.SetTracerProvider(tp)
	} else {
		p.tracerProvider = otel.GetTracerProvider()
	}
	p.tracer = p.tracerProvider.Tracer(serviceName)
	return nil
}

func (p *Provider) createMetricInstruments() error {
	var err error

	if p.workflowExecutions, err = p.meter.Int64Counter(metricWorkflowExecutions,
		metric.WithDescription("Total number of workflow executions")); err != nil {
		return err
	}
	if p.workflowDuration, err = p.meter.Float64Histogram(metricWorkflowDuration,
		metric.WithDescription("Workflow execution duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		return err
	}
	if p.workflowSuccess, err = p.meter.Int64Counter(metricWorkflowSuccess,
		metric.WithDescription("Total number of successful workflow executions")); err != nil {
		return err
	}
	if p.workflowFailure, err = p.meter.Int64Counter(metricWorkflowFailure,
		metric.WithDescription("Total number of failed workflow executions")); err != nil {
		return err
	}
	if p.nodeExecutions, err = p.meter.Int64Counter(metricNodeExecutions,
		metric.WithDescription("Total number of node executions")); err != nil {
		return err
	}
	if p.nodeDuration, err = p.meter.Float64Histogram(metricNodeDuration,
		metric.WithDescription("Node execution duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		return err
	}
	if p.nodeSuccess, err = p.meter.Int64Counter(metricNodeSuccess,
		metric.WithDescription("Total number of successful node executions")); err != nil {
		return err
	}
	if p.nodeFailure, err = p.meter.Int64Counter(metricNodeFailure,
		metric.WithDescription("Total number of failed node executions")); err != nil {
		return err
	}
	if p.httpCalls, err = p.meter.Int64Counter(metricHTTPCalls,
		metric.WithDescription("Total number of HTTP calls made by node executions")); err != nil {
		return err
	}
	if p.httpDuration, err = p.meter.Float64Histogram(metricHTTPDuration,
		metric.WithDescription("HTTP call duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		return err
	}
	return nil
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics.
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordWorkflowExecution records metrics for one workflow execution.
func (p *Provider) RecordWorkflowExecution(ctx context.Context, workflowName string, duration time.Duration, success bool, nodesExecuted int) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("workflow.name", workflowName),
		attribute.Int("nodes.executed", nodesExecuted),
	}
	p.workflowExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.workflowDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if success {
		p.workflowSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.workflowFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordNodeExecution records metrics for one node execution. action is the
// post-phase routing action (e.g. "default", "error") and may be empty if
// the node raised before reaching post.
func (p *Provider) RecordNodeExecution(ctx context.Context, nodeID, nodeType, action string, duration time.Duration, success bool) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("node.id", nodeID),
		attribute.String("node.type", nodeType),
		attribute.String("node.action", action),
	}
	p.nodeExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.nodeDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if success {
		p.nodeSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.nodeFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordHTTPCall records metrics for an outbound HTTP call made by a node.
func (p *Provider) RecordHTTPCall(ctx context.Context, method, url string, statusCode int, duration time.Duration) {
	if p.meter == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.url", url),
		attribute.Int("http.status_code", statusCode),
	}
	p.httpCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.httpDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// Shutdown gracefully shuts down the telemetry provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
	}
	if tp, ok := p.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
	}
	return nil
}
