// Package telemetry wires OpenTelemetry tracing, metrics and logs, Pyroscope
// profiling and the Prometheus scrape registry.
package telemetry

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ServiceVersion is reported on every exported signal
const ServiceVersion = "1.0.0"

// shutdownTimeout bounds provider flushes on exit
const shutdownTimeout = 10 * time.Second

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
