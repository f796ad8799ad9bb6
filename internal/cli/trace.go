package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/aurorus/pkg/observability"
)

// traceHooks logs HTTP, cache and step events at debug level.
type traceHooks struct {
	logger *log.Logger
}

// EnableTracing routes library events to the CLI logger. main calls it for
// --verbose runs.
func (c *CLI) EnableTracing() {
	h := traceHooks{logger: c.Logger.WithPrefix("trace")}
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
	observability.SetExecutionHooks(h)
}

func (h traceHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h traceHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h traceHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h traceHooks) OnCacheHit(_ context.Context, kind string) {
	h.logger.Debug("cache hit", "kind", kind)
}

func (h traceHooks) OnCacheMiss(_ context.Context, kind string) {
	h.logger.Debug("cache miss", "kind", kind)
}

func (h traceHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h traceHooks) OnRunStart(_ context.Context, runID, kind string, steps int) {
	h.logger.Debug("run start", "run", shortID(runID), "kind", kind, "steps", steps)
}

func (h traceHooks) OnRunComplete(_ context.Context, runID, kind string, d time.Duration, err error) {
	h.logger.Debug("run complete", "run", shortID(runID), "kind", kind, "took", d.Round(time.Millisecond), "err", err)
}

func (h traceHooks) OnStepStart(_ context.Context, runID, name, origin string) {
	h.logger.Debug("step start", "run", shortID(runID), "name", name, "origin", origin)
}

func (h traceHooks) OnStepComplete(_ context.Context, runID, name, status string, d time.Duration, err error) {
	h.logger.Debug("step complete", "run", shortID(runID), "name", name, "status", status, "took", d.Round(time.Millisecond), "err", err)
}
