package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles holds the lipgloss styles used to render each kind of value.
// Styles are bound to a renderer for the handler's writer, so output that is
// not a terminal is rendered without escape sequences.
type prettyStyles struct {
	key, str, num, yes, no, null, dur, when lipgloss.Style

	trace, debug, info, warn, fail lipgloss.Style
}

func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return prettyStyles{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		null:  fg("8").Italic(true),
		dur:   fg("5"),
		when:  fg("4"),
		trace: fg("8").Bold(true),
		debug: fg("4").Bold(true),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		fail:  fg("1").Bold(true),
	}
}

func (s prettyStyles) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return s.fail
	case l >= slog.LevelWarn:
		return s.warn
	case l >= slog.LevelInfo:
		return s.info
	case l >= slog.LevelDebug:
		return s.debug
	default:
		return s.trace
	}
}

// field is a fully qualified key with its resolved value.
type field struct {
	key   string
	value slog.Value
}

// prettyHandler renders records for a terminal, either as a single line of
// key=value pairs or as an indented object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	styles prettyStyles
	mu     *sync.Mutex
	w      io.Writer
	prefix string  // dotted group path applied to record attributes
	fields []field // attributes added with WithAttrs
	object bool
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, object bool) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		styles: makePrettyStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
		object: object,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fields = h.flatten(h.fields[:len(h.fields):len(h.fields)], h.prefix, attrs...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// flatten appends attrs to dst, expanding groups into dotted keys and
// dropping empty attributes.
func (h *prettyHandler) flatten(dst []field, prefix string, attrs ...slog.Attr) []field {
	for _, a := range attrs {
		v := a.Value.Resolve()

		if v.Kind() == slog.KindGroup {
			group := v.Group()
			if len(group) == 0 {
				continue
			}

			sub := prefix
			if a.Key != "" {
				sub += a.Key + "."
			}

			dst = h.flatten(dst, sub, group...)

			continue
		}

		if a.Key == "" && v.Any() == nil {
			continue
		}

		dst = append(dst, field{key: prefix + a.Key, value: v})
	}

	return dst
}

// builtin applies ReplaceAttr to one of the record's standard attributes.
func (h *prettyHandler) builtin(a slog.Attr) (slog.Attr, bool) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	return a, a.Key != ""
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var head []field

	if !r.Time.IsZero() {
		if a, ok := h.builtin(slog.Time(slog.TimeKey, r.Time)); ok {
			head = append(head, field{a.Key, a.Value})
		}
	}

	levelAttr, _ := h.builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			head = append(head, field{slog.SourceKey, slog.StringValue(loc)})
		}
	}

	fields := append([]field(nil), h.fields...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.object {
		h.writeObject(buf, r, levelAttr, head, fields)
	} else {
		h.writeLine(buf, r, levelAttr, head, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(
	buf *bytes.Buffer,
	r slog.Record,
	level slog.Attr,
	head, fields []field,
) {
	sep := func() {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
	}

	for _, f := range head {
		sep()
		buf.WriteString(h.value(f.value, false))
	}

	sep()
	buf.WriteString(h.styles.level(r.Level).Render(fmt.Sprintf("%-5s", level.Value.String())))

	sep()
	buf.WriteString(r.Message)

	for _, f := range fields {
		sep()
		buf.WriteString(h.styles.key.Render(f.key + "="))
		buf.WriteString(h.value(f.value, false))
	}
}

func (h *prettyHandler) writeObject(
	buf *bytes.Buffer,
	r slog.Record,
	level slog.Attr,
	head, fields []field,
) {
	buf.WriteString("{")

	first := true
	entry := func(key, rendered string) {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n  ")
		buf.WriteString(h.styles.key.Render(strconv.Quote(key)))
		buf.WriteString(": ")
		buf.WriteString(rendered)
	}

	for _, f := range head {
		entry(f.key, h.value(f.value, true))
	}

	entry(level.Key, h.styles.level(r.Level).Render(strconv.Quote(level.Value.String())))
	entry(slog.MessageKey, h.styles.str.Render(strconv.Quote(r.Message)))

	for _, f := range fields {
		entry(f.key, h.value(f.value, true))
	}

	buf.WriteString("\n}")
}

// value renders v with the style for its kind. Strings are quoted when
// rendering an object.
func (h *prettyHandler) value(v slog.Value, quote bool) string {
	str := func(s string) string {
		if quote {
			s = strconv.Quote(s)
		}

		return h.styles.str.Render(s)
	}

	switch v.Kind() {
	case slog.KindString:
		return str(v.String())

	case slog.KindInt64:
		return h.styles.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.styles.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.styles.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.styles.yes.Render("true")
		}

		return h.styles.no.Render("false")

	case slog.KindDuration:
		return h.styles.dur.Render(v.Duration().String())

	case slog.KindTime:
		return h.styles.when.Render(v.Time().Format(time.RFC3339))

	default:
		a := v.Any()
		if a == nil {
			return h.styles.null.Render("null")
		}

		if err, ok := a.(error); ok {
			return h.styles.no.Render(strings.TrimSpace(err.Error()))
		}

		return str(fmt.Sprint(a))
	}
}
