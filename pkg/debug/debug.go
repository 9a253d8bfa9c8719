// Package debug holds the zerolog hooks and console setup shared by the witls
// commands and the log forwarding of the language server.
package debug

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// TimeFormat is millisecond precision without a zone.
const TimeFormat = "2006-01-02T15:04:05.000"

// TimeHook stamps each entry with the wall clock time.
type TimeHook struct {
	Format string
}

func (h TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := h.Format
	if format == "" {
		format = TimeFormat
	}
	e.Str(zerolog.TimestampFieldName, time.Now().Format(format))
}

// CallerHook adds the first caller outside zerolog and this package as
// "pkg:file.go:line".
type CallerHook struct {
	WithColor bool
}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	frame, ok := callerFrame()
	if !ok {
		return
	}
	pkg, _ := SplitFuncName(frame.Function)
	e.Str(zerolog.CallerFieldName, FormatCaller(pkg, frame.File, frame.Line, h.WithColor))
}

func callerFrame() (runtime.Frame, bool) {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !isLoggingFrame(frame.Function) {
			return frame, frame.Function != ""
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

func isLoggingFrame(fn string) bool {
	pkg, _ := SplitFuncName(fn)
	return pkg == "github.com/rs/zerolog" || strings.HasSuffix(pkg, "/pkg/debug")
}

// SplitFuncName splits a fully qualified function name such as
// "github.com/walteh/witls/pkg/lsp.(*Server).Hover" into its import path and
// the rest.
func SplitFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	dot := strings.IndexByte(name[lastSlash:], '.')
	if dot < 0 {
		return name, ""
	}
	dot += lastSlash
	return name[:dot], name[dot+1:]
}

func FormatCaller(pkg, file string, line int, colorize bool) string {
	base := path.Base(file)
	if !colorize {
		return fmt.Sprintf("%s:%s:%d", pkg, base, line)
	}
	sep := color.New(color.Faint).Sprint(":")
	return pkg + sep + color.New(color.Bold).Sprint(base) + sep + color.New(color.FgHiRed, color.Bold).Sprint(line)
}

// NewConsoleWriter renders entries for humans. Color follows fatih/color's
// terminal detection unless noColor.
func NewConsoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor || color.NoColor,
		TimeFormat: time.TimeOnly,
	}
}

// NewConsoleLogger builds the logger the commands write to stderr.
func NewConsoleLogger(w io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	console := NewConsoleWriter(w, noColor)
	return zerolog.New(console).Level(level).With().Timestamp().Logger().Hook(CallerHook{WithColor: !console.NoColor})
}
