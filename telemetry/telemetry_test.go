package telemetry

import (
	"context"
	"testing"
)

func TestNoopTracer(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "test")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("Expected the no-op tracer to produce invalid span contexts")
	}
}

func TestTracer(t *testing.T) {
	if Tracer("service") == nil {
		t.Fatal("Expected a tracer from the global provider")
	}
}
