// Package orderlog defines the log entries an order emits while it runs.
// Entries are produced in order by the interpreter and its natives and
// consumed by whoever drives the order, usually the app's slog logger.
package orderlog

import (
	"context"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/specialistvlad/wdlgo/internal/ast"
)

// Level is the severity of an entry.
type Level string

const (
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// MaxMessageLen is the longest message kept verbatim; longer user messages
// are cut and suffixed with "...".
const MaxMessageLen = 100

// Entry is one log line of an order. User is set for entries written by the
// program itself through the log natives.
type Entry struct {
	Level Level
	Msg   string
	User  bool
	Span  *ast.Span
}

// Truncate shortens msg to MaxMessageLen runes.
func Truncate(msg string) string {
	if utf8.RuneCountInString(msg) <= MaxMessageLen {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:MaxMessageLen]) + "..."
}

// SlogLevel maps the entry level onto slog.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Sink receives entries. Implementations must be safe for concurrent use.
type Sink interface {
	Log(ctx context.Context, e Entry)
}

// SlogSink writes entries to the logger found in the context.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Log(ctx context.Context, e Entry) {
	attrs := []any{"user", e.User}
	if e.Span != nil {
		attrs = append(attrs, "line", e.Span.Start.Line, "column", e.Span.Start.Column)
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(ctx, e.Level.SlogLevel(), e.Msg, attrs...)
}

// Recorder keeps every entry in memory, in arrival order.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Log(_ context.Context, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}
