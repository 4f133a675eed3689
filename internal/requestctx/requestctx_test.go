package requestctx

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithClientIP(WithRequestID(context.Background(), "req-1"), "203.0.113.5")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("request id = %q", got)
	}
	if got := GetClientIP(ctx); got != "203.0.113.5" {
		t.Fatalf("client ip = %q", got)
	}
	if GetRequestID(context.Background()) != "" || GetClientIP(context.Background()) != "" {
		t.Fatal("empty context should yield empty values")
	}
}
