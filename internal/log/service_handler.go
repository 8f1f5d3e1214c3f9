package log

import (
	"context"
	"io"
	"log/slog"
)

// ServiceKey is the attribute key under which the originating service name
// is recorded on every log line.
const ServiceKey = "service"

// Known service names. Each long-running process logs under its own name so
// interleaved output from the crawler and the query server stays attributable.
const (
	// ServiceCrawler is the background crawl scheduler.
	ServiceCrawler = "crawler"

	// ServiceServer is the query-serving HTTP process.
	ServiceServer = "server"

	// ServiceProbe is the pagination probe tool.
	ServiceProbe = "probe"
)

// ServiceHandler wraps an slog.Handler and stamps every record with the
// name of the service that produced it.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components receive a plain *slog.Logger and stay unaware of the wrapper
type ServiceHandler struct {
	// handler is the underlying slog handler that receives stamped records.
	handler slog.Handler

	// service is the name added to each record.
	service string
}

// NewServiceHandler creates a ServiceHandler wrapping the given handler.
// If handler is nil, the returned ServiceHandler uses slog.Default().Handler().
func NewServiceHandler(handler slog.Handler, service string) *ServiceHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ServiceHandler{handler: handler, service: service}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *ServiceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle stamps the record with the service name and passes it on.
func (h *ServiceHandler) Handle(ctx context.Context, r slog.Record) error {
	stamped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	stamped.AddAttrs(slog.String(ServiceKey, h.service))
	r.Attrs(func(a slog.Attr) bool {
		stamped.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, stamped)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *ServiceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ServiceHandler{handler: h.handler.WithAttrs(attrs), service: h.service}
}

// WithGroup returns a new handler with the given group name.
func (h *ServiceHandler) WithGroup(name string) slog.Handler {
	return &ServiceHandler{handler: h.handler.WithGroup(name), service: h.service}
}

// NewLogger creates a *slog.Logger for the named service.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - service: One of the Service* constants
//   - verbose: If true, sets log level to Debug; otherwise Info
//
// The crawler and the query server are long-running daemons, so the default
// level is Info rather than Warn: per-pass progress lines are the primary
// way to watch the system work.
func NewLogger(w io.Writer, service string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewServiceHandler(textHandler, service))
}
