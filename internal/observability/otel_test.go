package observability

import (
	"context"
	"testing"
)

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, broken ,=nokey, x-team = med ")
	h := otelHeaders()
	if len(h) != 2 || h["x-api-key"] != "abc" || h["x-team"] != "med" {
		t.Fatalf("otelHeaders: got=%v", h)
	}
}

func TestSampleRatio(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 1},
		{"0.25", 0.25},
		{"-3", 0},
		{"7", 1},
		{"nope", 1},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Setenv("OTEL_SAMPLER_RATIO", tc.raw)
			if got := sampleRatio(); got != tc.want {
				t.Fatalf("sampleRatio(%q): got=%v want=%v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestInitOTelDisabledReturnsNoopShutdown(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	if shutdown == nil {
		t.Fatal("shutdown must never be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
	if Tracer() == nil {
		t.Fatal("Tracer returned nil")
	}
}
