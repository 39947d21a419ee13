package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/exprgraph/pkg/pipeline"
)

// newLogger returns the CLI logger: timestamped ("15:04:05.00"), prefixed
// with the app name, writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Prefix:          appName,
		Level:           level,
	})
}

// stopwatch times a command from start to its summary line.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	now    func() time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	return &stopwatch{logger: l, start: time.Now(), now: time.Now}
}

func (s *stopwatch) elapsed() time.Duration {
	return s.now().Sub(s.start).Round(time.Millisecond)
}

// traced logs the outcome of a trace run: graph size, files written and
// how many renderings came from the cache.
func (s *stopwatch) traced(res *pipeline.Result, files int) {
	s.logger.Info("traced "+rootName(res.Root),
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"files", files,
		"cached", len(res.CacheInfo.Hits),
		"elapsed", s.elapsed())
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command.
// Commands run outside the root (tests, embedding) get a discarding logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.New(io.Discard)
}
