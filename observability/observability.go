// Package observability defines the logging interface used by the library
// packages, along with a console implementation for the commands.
package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type field struct {
	key string
	val interface{}
}

func (f field) Key() string        { return f.key }
func (f field) Value() interface{} { return f.val }

func String(key, value string) Field      { return field{key, value} }
func Int(key string, value int) Field     { return field{key, value} }
func Int64(key string, value int64) Field { return field{key, value} }
func Error(key string, err error) Field   { return field{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// NewTextLogger returns a Logger that writes one line per message to w, in
// the form "[+] message key=value ...".  Debug messages are written only if
// verbose is true.  The Logger (and any derived from it by With) may be used
// from several goroutines at once.
func NewTextLogger(w io.Writer, verbose bool) Logger {
	return &textLogger{out: &lockedWriter{w: w}, verbose: verbose}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

type textLogger struct {
	out     *lockedWriter
	verbose bool
	fields  []Field
}

func (l *textLogger) Debug(msg string, fields ...Field) {
	if l.verbose {
		l.write("[.]", msg, fields)
	}
}
func (l *textLogger) Info(msg string, fields ...Field)  { l.write("[+]", msg, fields) }
func (l *textLogger) Warn(msg string, fields ...Field)  { l.write("[!]", msg, fields) }
func (l *textLogger) Error(msg string, fields ...Field) { l.write("[-]", msg, fields) }

func (l *textLogger) With(fields ...Field) Logger {
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	return &textLogger{out: l.out, verbose: l.verbose, fields: all}
}

func (l *textLogger) write(prefix, msg string, fields []Field) {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(' ')
	sb.WriteString(msg)
	for _, list := range [][]Field{l.fields, fields} {
		for _, f := range list {
			fmt.Fprintf(&sb, " %s=%v", f.Key(), f.Value())
		}
	}
	sb.WriteByte('\n')
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	io.WriteString(l.out.w, sb.String())
}
