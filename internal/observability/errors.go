package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error type classifications recorded on span error.type attributes.
const (
	// ErrTypeValidation marks a caller input that failed validation.
	ErrTypeValidation = "validation"
	// ErrTypeDependencyUnavailable marks a failure reaching an external
	// dependency (sandbox probe, filesystem).
	ErrTypeDependencyUnavailable = "dependency_unavailable"
	// ErrTypeInternal marks an unexpected internal failure.
	ErrTypeInternal = "internal"
	// ErrTypePanic marks a recovered panic.
	ErrTypePanic = "panic"
)

// Error source classifications recorded on span error.source attributes.
const (
	// ErrSourceDependency attributes the error to an external dependency.
	ErrSourceDependency = "dependency"
	// ErrSourceServer attributes the error to this server's own logic.
	ErrSourceServer = "server"
	// ErrSourceClient attributes the error to the caller's request.
	ErrSourceClient = "client"
)

const (
	attrErrType   = "error.type"
	attrErrSource = "error.source"
)

// RecordSpanError sets span's status to Error with err's message and
// attaches error.type (and error.source, when non-empty) attributes.
func RecordSpanError(span trace.Span, err error, errType, errSource string) {
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)

	attrs := []attribute.KeyValue{attribute.String(attrErrType, errType)}
	if errSource != "" {
		attrs = append(attrs, attribute.String(attrErrSource, errSource))
	}

	span.SetAttributes(attrs...)
}
