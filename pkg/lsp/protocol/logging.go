package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/walteh/witls/pkg/debug"
)

var myLoggerId = xid.New().String()

type MultiRPCLogger struct {
	mu      sync.Mutex
	loggers []jrpc2.RPCLogger
}

var _ CallbackRPCLogger = (*MultiRPCLogger)(nil)

func (m *MultiRPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogRequest(ctx, req)
	}
}

func (m *MultiRPCLogger) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		logger.LogResponse(ctx, resp)
	}
}

func (m *MultiRPCLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		if cl, ok := logger.(CallbackRPCLogger); ok {
			cl.LogCallbackRequestRaw(ctx, method, params)
		}
	}
}

func (m *MultiRPCLogger) LogCallbackResponse(ctx context.Context, res *jrpc2.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logger := range m.loggers {
		if cl, ok := logger.(CallbackRPCLogger); ok {
			cl.LogCallbackResponse(ctx, res)
		}
	}
}

func (m *MultiRPCLogger) AddLogger(logger jrpc2.RPCLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loggers = append(m.loggers, logger)
}

func joinRPCLoggers(loggers ...jrpc2.RPCLogger) jrpc2.RPCLogger {
	multi := &MultiRPCLogger{}
	for _, l := range loggers {
		if l != nil {
			multi.AddLogger(l)
		}
	}
	return multi
}

// ApplyClientToZerolog returns a context whose logger writes every entry to
// client as a window/logMessage notification, and to also when it is not nil.
// The level of the current context logger is kept.
func ApplyClientToZerolog(ctx context.Context, client Client, also io.Writer) context.Context {
	var writer io.Writer = &logWriter{
		client: client,
		ctx:    ctx,
	}
	if also != nil {
		writer = zerolog.MultiLevelWriter(also, writer)
	}

	current := zerolog.Ctx(ctx)

	return zerolog.New(writer).With().
		Str("id", myLoggerId).
		Str("lsp_role", "server").
		Logger().
		Level(current.GetLevel()).
		Hook(debug.TimeHook{}).
		Hook(debug.CallerHook{}).
		WithContext(ctx)
}

func ApplyRequestToZerolog(ctx context.Context, req *jrpc2.Request) context.Context {
	return zerolog.Ctx(ctx).With().Str("rpc_method", req.Method()).Str("rpc_id", req.ID()).Logger().WithContext(ctx)
}

type logWriter struct {
	client  Client
	ctx     context.Context
	mu      sync.Mutex
	sending atomic.Bool
}

// Write implements io.Writer. Entries logged while a previous entry is being
// sent are dropped, since sending logs too.
func (w *logWriter) Write(p []byte) (n int, err error) {
	if w.client == nil || !w.sending.CompareAndSwap(false, true) {
		return len(p), nil
	}
	defer w.sending.Store(false)

	w.mu.Lock()
	defer w.mu.Unlock()

	var logEntry map[string]any
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return len(p), nil
	}

	params := &LogMessageParams{
		Type:    ParseMessageTypeFromZerolog(extractField(logEntry, zerolog.LevelFieldName, "info")),
		Message: formatEntry(logEntry),
	}

	if err := w.client.LogMessage(w.ctx, params); err != nil {
		return len(p), err
	}

	return len(p), nil
}

func formatEntry(entry map[string]any) string {
	msg := extractField(entry, zerolog.MessageFieldName, "")
	delete(entry, "id")
	delete(entry, "lsp_role")
	delete(entry, zerolog.TimestampFieldName)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry[k])
	}
	return sb.String()
}

func extractField(entry map[string]any, key, defaultValue string) string {
	if v, ok := entry[key].(string); ok {
		delete(entry, key)
		return v
	}
	return defaultValue
}

// ParseMessageTypeFromZerolog converts zerolog level to LSP MessageType
func ParseMessageTypeFromZerolog(level string) MessageType {
	switch level {
	case "error", "fatal", "panic":
		return Error
	case "warn":
		return Warning
	case "info":
		return Info
	case "debug":
		return Debug
	default:
		return Log
	}
}
