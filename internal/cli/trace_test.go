package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/aurorus/pkg/observability"
)

func TestEnableTracing(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	c.EnableTracing()

	ctx := context.Background()
	observability.HTTP().OnResponse(ctx, "GET", "aur.archlinux.org", "/rpc", 200, 40*time.Millisecond)
	observability.Cache().OnCacheMiss(ctx, "aur")
	observability.Execution().OnStepStart(ctx, "0123456789abcdef", "yay", "aur")

	out := buf.String()
	for _, want := range []string{"trace", "http response", "status=200", "cache miss", "kind=aur", "step start", "run=01234567", "name=yay"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}

func TestTracingQuietAtInfo(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.EnableTracing()
	observability.Cache().OnCacheHit(context.Background(), "aur")

	if buf.Len() != 0 {
		t.Errorf("trace events logged at info level: %q", buf.String())
	}
}
