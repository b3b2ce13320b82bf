package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogFileName is the file created under the configured log directory.
const LogFileName = "viewer.log"

// defaultMaxLines bounds the in-memory line store used by the on-screen overlay.
const defaultMaxLines = 64

// Logger is a logrus logger that also keeps the most recent formatted lines in memory,
// so the diagnostics overlay can show them without reading the log file back.
type Logger struct {
	*logrus.Logger
	ring *ringHook
}

// New returns a Logger at the given level ("debug", "info", ...). Unknown levels fall back to info.
// When dir is non-empty, output goes to both stdout and dir/viewer.log; dir is created if needed.
func New(level, dir string) (*Logger, error) {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetFormatter(&SimpleFormatter{TimestampFormat: "2006-01-02 15:04:05"})

	var out io.Writer = os.Stdout
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("logger: create dir %q: %w", dir, err)
		}
		f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("logger: open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	l.SetOutput(out)

	ring := &ringHook{max: defaultMaxLines, formatter: &SimpleFormatter{TimestampFormat: "15:04:05"}}
	l.AddHook(ring)
	return &Logger{Logger: l, ring: ring}, nil
}

// Lines returns a copy of the most recent log lines, oldest first.
func (l *Logger) Lines() []string {
	return l.ring.lines()
}

// ringHook records every entry as one formatted line, dropping the oldest past max.
type ringHook struct {
	mu        sync.Mutex
	max       int
	buf       []string
	formatter logrus.Formatter
}

func (h *ringHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *ringHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	line := strings.TrimRight(string(b), "\n")
	h.mu.Lock()
	h.buf = append(h.buf, line)
	if len(h.buf) > h.max {
		h.buf = h.buf[len(h.buf)-h.max:]
	}
	h.mu.Unlock()
	return nil
}

func (h *ringHook) lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.buf))
	copy(out, h.buf)
	return out
}

// SimpleFormatter prints "timestamp [LVL] message key=value ..." with fields sorted by key.
type SimpleFormatter struct {
	TimestampFormat string
}

// Format implements logrus.Formatter.
func (f *SimpleFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}
	ts := f.TimestampFormat
	if ts == "" {
		ts = "2006-01-02 15:04:05"
	}
	b.WriteString(e.Time.Format(ts))
	level := strings.ToUpper(e.Level.String())
	if len(level) > 3 {
		level = level[:3]
	}
	fmt.Fprintf(b, " [%s] %s", level, e.Message)

	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, " %s=%v", k, e.Data[k])
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
