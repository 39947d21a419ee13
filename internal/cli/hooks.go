package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/exprgraph/pkg/observability"
)

// logHooks reports pipeline events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// InstallHooks registers hooks that log pipeline, storage and cache events.
func (c *CLI) InstallHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetTraceHooks(h)
	observability.SetStorageHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, source string) {
	h.logger.Debug("build started", "source", source)
}

func (h logHooks) OnBuildComplete(_ context.Context, source, root string, d time.Duration, err error) {
	h.logger.Debug("build finished", "source", source, "root", root, "duration", d, "err", err)
}

func (h logHooks) OnTraceStart(_ context.Context, root string) {
	h.logger.Debug("trace started", "root", root)
}

func (h logHooks) OnTraceComplete(_ context.Context, root string, nodes int, d time.Duration, err error) {
	h.logger.Debug("trace finished", "root", root, "nodes", nodes, "duration", d, "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render finished", "formats", formats, "duration", d, "err", err)
}

func (h logHooks) OnRead(_ context.Context, url string, size int) {
	h.logger.Debug("read document", "url", url, "bytes", size)
}

func (h logHooks) OnWrite(_ context.Context, url string, size int) {
	h.logger.Debug("wrote artifact", "url", url, "bytes", size)
}

func (h logHooks) OnCacheHit(_ context.Context, format string) {
	h.logger.Debug("cache hit", "format", format)
}

func (h logHooks) OnCacheMiss(_ context.Context, format string) {
	h.logger.Debug("cache miss", "format", format)
}

func (h logHooks) OnCacheSet(_ context.Context, format string, size int) {
	h.logger.Debug("cached artifact", "format", format, "bytes", size)
}
