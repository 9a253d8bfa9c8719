package protocol

import (
	"context"

	"github.com/creachadair/jrpc2/handler"
)

// Client is the set of server-to-client messages witls sends.
type Client interface {
	PublishDiagnostics(context.Context, *PublishDiagnosticsParams) error
	LogMessage(context.Context, *LogMessageParams) error
}

// BuildClientDispatchMap routes notifications sent by a server to client, for
// in-process editors driving a ServerInstance over a pipe.
func BuildClientDispatchMap(client Client) handler.Map {
	return handler.Map{
		"textDocument/publishDiagnostics": createEmptyResultHandler(client.PublishDiagnostics),
		"window/logMessage":               createEmptyResultHandler(client.LogMessage),
	}
}

func (s *CallbackClient) PublishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) error {
	return createNotify(ctx, s, "textDocument/publishDiagnostics", params)
}

func (s *CallbackClient) LogMessage(ctx context.Context, params *LogMessageParams) error {
	return createNotify(ctx, s, "window/logMessage", params)
}
