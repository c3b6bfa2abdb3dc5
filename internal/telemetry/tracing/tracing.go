package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GlobalTracer is a no-op unless an OpenTelemetry SDK is installed by
// the deployment (e.g. via OTEL_* env vars and an agent).
var GlobalTracer = otel.Tracer("workout-tracker")

func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
