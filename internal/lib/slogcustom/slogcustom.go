package slogcustom

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// CustomHandler печатает записи в одну цветную строку: время, уровень, сообщение, атрибуты.
type CustomHandler struct {
	mu    *sync.Mutex
	l     *log.Logger
	level slog.Leveler

	// attrs уже отформатированы, group добавляется префиксом к ключам.
	attrs string
	group string
}

func NewCustomHandler(out io.Writer, level slog.Leveler) *CustomHandler {
	return &CustomHandler{
		mu:    &sync.Mutex{},
		l:     log.New(out, "", 0),
		level: level,
	}
}

func (c *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var sb strings.Builder
	sb.WriteString(c.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, c.group, a)
		return true
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.l.Println(
		r.Time.Format("15:04:05.000"),
		level,
		r.Message,
		strings.TrimSuffix(sb.String(), " "),
	)
	return nil
}

func (c *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return c
	}

	var sb strings.Builder
	sb.WriteString(c.attrs)
	for _, a := range attrs {
		writeAttr(&sb, c.group, a)
	}

	clone := *c
	clone.attrs = sb.String()
	return &clone
}

func (c *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}

	clone := *c
	clone.group = c.group + name + "."
	return &clone
}

func (c *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix, ga)
		}
		return
	}

	sb.WriteString(color.GreenString(prefix + a.Key))
	sb.WriteString("=")
	sb.WriteString(fmt.Sprint(a.Value.Any()))
	sb.WriteString(" ")
}
