package debugctx

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPrintfRequiresEnabledAndWriter(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	Printf(WithWriter(context.Background(), &buffer), "hidden %d", 1)
	if buffer.Len() != 0 {
		t.Fatalf("expected no output while disabled, got %q", buffer.String())
	}

	ctx := WithWriter(WithEnabled(context.Background(), true), &buffer)
	Printf(ctx, "  request id=%s ", "abc")
	Printf(ctx, "   ")
	if got := buffer.String(); got != "debug: request id=abc\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestLoggerWritesStructuredLines(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	ctx := WithWriter(WithEnabled(context.Background(), true), &buffer)

	Logger(ctx).WithName("transport").V(1).Info("http response", "status", 200)

	got := buffer.String()
	if !strings.HasPrefix(got, "debug: transport: ") {
		t.Fatalf("expected debug prefix with logger name, got %q", got)
	}
	if !strings.Contains(got, `"msg"="http response"`) || !strings.Contains(got, `"status"=200`) {
		t.Fatalf("expected message and key/value pairs, got %q", got)
	}
}

func TestLoggerDiscardsWhenDisabled(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	Logger(WithWriter(context.Background(), &buffer)).Info("ignored")
	if buffer.Len() != 0 {
		t.Fatalf("expected discard logger, got %q", buffer.String())
	}
}
