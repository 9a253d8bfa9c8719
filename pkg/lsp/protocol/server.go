package protocol

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
)

// Server is the set of client-to-server messages witls answers.
type Server interface {
	Initialize(context.Context, *InitializeParams) (*InitializeResult, error)
	Initialized(context.Context, *InitializedParams) error
	Shutdown(context.Context) error
	Exit(context.Context) error
	SetTrace(context.Context, *SetTraceParams) error

	DidOpen(context.Context, *DidOpenTextDocumentParams) error
	DidChange(context.Context, *DidChangeTextDocumentParams) error
	DidSave(context.Context, *DidSaveTextDocumentParams) error
	DidClose(context.Context, *DidCloseTextDocumentParams) error
	WillSave(context.Context, *WillSaveTextDocumentParams) error

	Hover(context.Context, *HoverParams) (*Hover, error)
	SemanticTokensFull(context.Context, *SemanticTokensParams) (*SemanticTokens, error)
}

func buildServerDispatchMap(server Server) handler.Map {
	return handler.Map{
		"$/cancelRequest":                  cancelRequest,
		"$/setTrace":                       createEmptyResultHandler(server.SetTrace),
		"exit":                             createEmptyHandler(server.Exit),
		"initialize":                       createHandler(server.Initialize),
		"initialized":                      createEmptyResultHandler(server.Initialized),
		"shutdown":                         createEmptyHandler(server.Shutdown),
		"textDocument/didChange":           createEmptyResultHandler(server.DidChange),
		"textDocument/didClose":            createEmptyResultHandler(server.DidClose),
		"textDocument/didOpen":             createEmptyResultHandler(server.DidOpen),
		"textDocument/didSave":             createEmptyResultHandler(server.DidSave),
		"textDocument/willSave":            createEmptyResultHandler(server.WillSave),
		"textDocument/hover":               createHandler(server.Hover),
		"textDocument/semanticTokens/full": createHandler(server.SemanticTokensFull),
	}
}

// Requests are answered in order, so there is never anything to cancel.
func cancelRequest(ctx context.Context, r *jrpc2.Request) (any, error) {
	var params CancelParams
	if err := r.UnmarshalParams(&params); err != nil {
		return nil, newParseError(err)
	}
	return nil, nil
}
