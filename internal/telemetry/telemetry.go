// Package telemetry wires OpenTelemetry tracing and Prometheus-exported
// metrics into the execution pipeline, grounded on the teacher's
// pkg/telemetry.Provider (same otel SDK + prometheus exporter, generalized
// from a fixed method-per-metric API to span helpers the Executor Service
// and node wrapper call directly).
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "pflow-workflow-engine"

// Config controls which telemetry subsystems are active.
type Config struct {
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
}

// DefaultConfig enables both tracing and metrics, the teacher's default.
func DefaultConfig() Config {
	return Config{
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// Telemetry is a no-op-safe handle: every method tolerates a nil receiver so
// callers never need to branch on whether telemetry is configured.
type Telemetry struct {
	meterProvider *sdkmetric.MeterProvider
	tracer        trace.Tracer
	meter         metric.Meter

	executions     metric.Int64Counter
	executionsOK   metric.Int64Counter
	executionsFail metric.Int64Counter
	nodeExecutions metric.Int64Counter
	nodeDuration   metric.Float64Histogram

	mu sync.RWMutex
}

// New builds a Telemetry handle. A returned error means the Prometheus
// exporter could not be constructed; callers may fall back to nil (all
// methods degrade to no-ops).
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	t := &Telemetry{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	if cfg.EnableMetrics {
		if err := t.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if cfg.EnableTracing {
		t.tracer = otel.GetTracerProvider().Tracer(serviceName)
	}

	return t, nil
}

func (t *Telemetry) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(t.meterProvider)
	t.meter = t.meterProvider.Meter(serviceName)

	if t.executions, err = t.meter.Int64Counter("pflow.executions.total",
		metric.WithDescription("total workflow executions")); err != nil {
		return err
	}
	if t.executionsOK, err = t.meter.Int64Counter("pflow.executions.success.total",
		metric.WithDescription("workflow executions that finished SUCCESS")); err != nil {
		return err
	}
	if t.executionsFail, err = t.meter.Int64Counter("pflow.executions.failed.total",
		metric.WithDescription("workflow executions that finished FAILED")); err != nil {
		return err
	}
	if t.nodeExecutions, err = t.meter.Int64Counter("pflow.node.executions.total",
		metric.WithDescription("total node executions")); err != nil {
		return err
	}
	if t.nodeDuration, err = t.meter.Float64Histogram("pflow.node.execution.duration",
		metric.WithDescription("node execution duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return err
	}
	return nil
}

// StartExecution starts the root span for one workflow execution. Safe to
// call on a nil *Telemetry.
func (t *Telemetry) StartExecution(ctx context.Context, executionID string) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "workflow.execute",
		trace.WithAttributes(attribute.String("execution.id", executionID)))
}

// StartNode starts a child span for one node's run. Safe to call on a nil
// *Telemetry.
func (t *Telemetry) StartNode(ctx context.Context, nodeID, nodeType string) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := t.tracer.Start(ctx, "node.execute",
		trace.WithAttributes(
			attribute.String("node.id", nodeID),
			attribute.String("node.type", nodeType),
		))
	t.recordNode(ctx, nodeID, nodeType)
	return ctx, span
}

func (t *Telemetry) recordNode(ctx context.Context, nodeID, nodeType string) {
	if t == nil || t.meter == nil {
		return
	}
	t.nodeExecutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node.id", nodeID),
		attribute.String("node.type", nodeType),
	))
}

// RecordExecution records the terminal tri-state status of one workflow run.
// Safe to call on a nil *Telemetry.
func (t *Telemetry) RecordExecution(status string) {
	if t == nil || t.meter == nil {
		return
	}
	ctx := context.Background()
	t.executions.Add(ctx, 1)
	if status == "SUCCESS" {
		t.executionsOK.Add(ctx, 1)
	} else if status == "FAILED" {
		t.executionsFail.Add(ctx, 1)
	}
}

// Shutdown flushes and stops the metrics pipeline. Safe to call on a nil
// *Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.meterProvider != nil {
		return t.meterProvider.Shutdown(ctx)
	}
	return nil
}
