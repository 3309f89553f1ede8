// Package logging provides the console slog handler used by every command.
// Records print as a colored "[mdsite]" tag followed by the message and
// key=value attributes. Color is dropped when the writer is not a terminal.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SuccessKey marks a record as a success message; it is rendered green and
// not printed as an attribute.
const SuccessKey = "success"

const tag = "[mdsite]"

// Options configures the console handler.
type Options struct {
	Level slog.Leveler
	// Tag overrides the "[mdsite]" prefix.
	Tag string
}

type palette struct {
	debug, info, warn, err, success lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	base := r.NewStyle().Bold(true)
	return palette{
		debug:   base.Foreground(lipgloss.Color("8")),
		info:    base.Foreground(lipgloss.Color("4")),
		warn:    base.Foreground(lipgloss.Color("3")),
		err:     base.Foreground(lipgloss.Color("1")),
		success: base.Foreground(lipgloss.Color("2")),
	}
}

// Handler is a slog.Handler for human-facing console output.
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	tag    string
	styles palette
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a console handler writing to w.
func NewHandler(w io.Writer, opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	t := opts.Tag
	if t == "" {
		t = tag
	}
	return &Handler{
		mu:     &sync.Mutex{},
		w:      w,
		level:  level,
		tag:    t,
		styles: newPalette(lipgloss.NewRenderer(w)),
	}
}

// New returns a logger with a console handler on w. verbose enables debug
// records.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewHandler(w, &Options{Level: level}))
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Success logs msg at info level, rendered as a success.
func Success(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.InfoContext(ctx, msg, append([]any{slog.Bool(SuccessKey, true)}, args...)...)
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	success := false
	var pairs []string
	// h.attrs already carry their group prefix.
	for _, a := range h.attrs {
		if a.Key == SuccessKey {
			success = a.Value.Bool()
			continue
		}
		pairs = appendAttr(pairs, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == SuccessKey && len(h.groups) == 0 {
			success = a.Value.Bool()
			return true
		}
		pairs = appendAttr(pairs, h.groups, a)
		return true
	})

	b.WriteString(h.style(r.Level, success).Render(h.tag))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, p := range pairs {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) style(level slog.Level, success bool) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return h.styles.err
	case level >= slog.LevelWarn:
		return h.styles.warn
	case success:
		return h.styles.success
	case level >= slog.LevelInfo:
		return h.styles.info
	default:
		return h.styles.debug
	}
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		if len(h.groups) > 0 {
			a.Key = strings.Join(h.groups, ".") + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

func appendAttr(pairs []string, groups []string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return pairs
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := append(append([]string(nil), groups...), a.Key)
		for _, ga := range a.Value.Group() {
			pairs = appendAttr(pairs, sub, ga)
		}
		return pairs
	}
	return append(pairs, key+"="+formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\"=") {
			return fmt.Sprintf("%q", s)
		}
		return s
	default:
		return v.String()
	}
}
