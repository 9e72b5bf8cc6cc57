package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitDisabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{ServiceName: "carteira-test"}, zerolog.New(&buf))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "telemetry disabled") {
		t.Errorf("expected disabled log line, got %q", buf.String())
	}
}

func TestShutdownsRunInReverseAndJoinErrors(t *testing.T) {
	var order []string
	failing := errors.New("exporter unreachable")

	stack := shutdowns{
		func(context.Context) error { order = append(order, "meter"); return nil },
		func(context.Context) error { order = append(order, "tracer"); return failing },
		func(context.Context) error { order = append(order, "metrics server"); return nil },
	}

	err := stack.run(context.Background())
	if !errors.Is(err, failing) {
		t.Errorf("run() error = %v, want it to wrap %v", err, failing)
	}
	if got := strings.Join(order, ","); got != "metrics server,tracer,meter" {
		t.Errorf("shutdown order = %s", got)
	}
}
