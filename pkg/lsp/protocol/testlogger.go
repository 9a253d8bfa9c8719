package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
)

const maxLoggedLength = 1000

// DebugAll reports whether tests should print every message.
func DebugAll() bool {
	return os.Getenv("DEBUG_LSP_ALL") == "1" || os.Getenv("DEBUG") == "1"
}

type rpcTestLogger struct {
	logger  zerolog.TestingLog
	enabled bool
	big     bool
}

var _ CallbackRPCLogger = (*rpcTestLogger)(nil)

// NewTestLogger logs traffic through t. Messages are only printed when DEBUG=1,
// and long payloads only with DEBUG_LSP_BIG=1.
func NewTestLogger(t zerolog.TestingLog) CallbackRPCLogger {
	lgr := &rpcTestLogger{
		logger:  t,
		enabled: DebugAll(),
		big:     os.Getenv("DEBUG_LSP_BIG") == "1",
	}
	if !lgr.enabled {
		lgr.logger.Logf("FYI: rpc logs will be suppressed. Set DEBUG=1 to see them")
	}
	return lgr
}

func (l *rpcTestLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	l.log("client", req.ID(), req.Method(), req.ParamString())
}

func (l *rpcTestLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	if err := res.Error(); err != nil {
		l.log("server", res.ID(), "error", err.Error())
		return
	}
	l.log("server", res.ID(), "result", res.ResultString())
}

func (l *rpcTestLogger) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		l.log("server (push)", "", method, fmt.Sprintf("%+v", params))
		return
	}
	l.log("server (push)", "", method, string(raw))
}

func (l *rpcTestLogger) LogCallbackResponse(ctx context.Context, res *jrpc2.Response) {
	l.log("client (callback)", res.ID(), "result", res.ResultString())
}

func (l *rpcTestLogger) log(who, id, what, payload string) {
	if !l.enabled {
		return
	}
	if id == "" {
		id = "notification"
	}
	if len(payload) > maxLoggedLength && !l.big {
		payload = fmt.Sprintf("suppressed %d chars: set DEBUG_LSP_BIG=1 to see", len(payload))
	}
	l.logger.Logf("lsp %s [%s] %s: %s", who, id, what, payload)
}
