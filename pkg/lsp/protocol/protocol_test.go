package protocol_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/witls/gen/mockery"
	"github.com/walteh/witls/pkg/lsp/protocol"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.TestWriter{T: t}).With().Str("test", t.Name()).Logger().WithContext(context.Background())
}

type session struct {
	client   *jrpc2.Client
	instance *protocol.ServerInstance
	tracker  *protocol.RPCTracker
	notified chan *jrpc2.Request
	done     chan error
}

func startSession(t *testing.T, ctx context.Context, server protocol.Server) *session {
	t.Helper()

	serverReader, clientWriter := io.Pipe()
	clientReader, serverWriter := io.Pipe()

	tracker := protocol.NewRPCTracker()
	instance := protocol.NewServerInstance(protocol.ContextWithRPCTracker(ctx, tracker), server, &jrpc2.ServerOptions{
		RPCLog:      protocol.NewTestLogger(t),
		Concurrency: 1,
	})

	s := &session{
		instance: instance,
		tracker:  tracker,
		notified: make(chan *jrpc2.Request, 16),
		done:     make(chan error, 1),
	}

	go func() {
		s.done <- instance.StartAndWait(serverReader, serverWriter)
	}()

	s.client = jrpc2.NewClient(channel.LSP(clientReader, clientWriter), &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			s.notified <- req
		},
	})

	t.Cleanup(func() {
		s.client.Close()
		clientWriter.Close()
		serverWriter.Close()
	})

	return s
}

func TestSessionLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(testContext(t), 10*time.Second)
	defer cancel()

	mockServer := mockery.NewMockServer_protocol(t)

	var s *session

	mockServer.EXPECT().
		Initialize(mock.Anything, mock.MatchedBy(func(params *protocol.InitializeParams) bool {
			return params.RootURI == "file:///workspace" && params.ClientInfo != nil && params.ClientInfo.Name == "test"
		})).
		Return(&protocol.InitializeResult{
			Capabilities: protocol.ServerCapabilities{
				TextDocumentSync: &protocol.TextDocumentSyncOptions{OpenClose: true, Change: protocol.Full},
				HoverProvider:    true,
			},
			ServerInfo: &protocol.ServerInfo{Name: "mock"},
		}, nil).
		Once()

	mockServer.EXPECT().
		Initialized(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ *protocol.InitializedParams) error {
			return s.instance.ForwardingClient().PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
				URI:         "file:///workspace/world.wit",
				Diagnostics: []protocol.Diagnostic{},
			})
		}).
		Once()

	mockServer.EXPECT().
		Hover(mock.Anything, mock.MatchedBy(func(params *protocol.HoverParams) bool {
			return params.Position.Line == 3 && params.Position.Character == 7
		})).
		Return(&protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: "An unsigned 8-bit integer."},
		}, nil).
		Once()

	mockServer.EXPECT().Shutdown(mock.Anything).Return(nil).Once()
	mockServer.EXPECT().Exit(mock.Anything).Return(nil).Once()

	s = startSession(t, ctx, mockServer)

	var initResult protocol.InitializeResult
	err := s.client.CallResult(ctx, "initialize", &protocol.InitializeParams{
		ProcessID:  1,
		RootURI:    "file:///workspace",
		ClientInfo: &protocol.ClientInfo{Name: "test"},
	}, &initResult)
	require.NoError(t, err)
	require.NotNil(t, initResult.Capabilities.TextDocumentSync)
	assert.Equal(t, protocol.Full, initResult.Capabilities.TextDocumentSync.Change)
	assert.True(t, initResult.Capabilities.HoverProvider)

	require.NoError(t, s.client.Notify(ctx, "initialized", &protocol.InitializedParams{}))

	select {
	case req := <-s.notified:
		require.Equal(t, "textDocument/publishDiagnostics", req.Method())
		var params protocol.PublishDiagnosticsParams
		require.NoError(t, req.UnmarshalParams(&params))
		assert.Equal(t, protocol.DocumentURI("file:///workspace/world.wit"), params.URI)
		assert.NotNil(t, params.Diagnostics)
		assert.Empty(t, params.Diagnostics)
	case <-time.After(2 * time.Second):
		t.Fatal("server never pushed diagnostics")
	}

	var hover protocol.Hover
	err = s.client.CallResult(ctx, "textDocument/hover", protocol.NewHoverParams("file:///workspace/world.wit", protocol.Position{Line: 3, Character: 7}), &hover)
	require.NoError(t, err)
	assert.Equal(t, "An unsigned 8-bit integer.", hover.Contents.Value)

	_, err = s.client.Call(ctx, "shutdown", nil)
	require.NoError(t, err)
	require.NoError(t, s.client.Notify(ctx, "exit", nil))

	select {
	case err := <-s.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after exit")
	}

	pushed := protocol.PushedNotifications[protocol.PublishDiagnosticsParams](s.tracker, "textDocument/publishDiagnostics")
	require.Len(t, pushed, 1)
	assert.Equal(t, protocol.DocumentURI("file:///workspace/world.wit"), pushed[0].URI)

	methods := []string{}
	for _, msg := range s.tracker.GetMessages() {
		if msg.Direction == protocol.Incoming {
			methods = append(methods, msg.Method)
		}
	}
	assert.Equal(t, []string{"initialize", "initialized", "textDocument/hover", "shutdown", "exit"}, methods)
}

func TestSessionErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(testContext(t), 10*time.Second)
	defer cancel()

	mockServer := mockery.NewMockServer_protocol(t)
	s := startSession(t, ctx, mockServer)

	t.Run("malformed_params", func(t *testing.T) {
		_, err := s.client.Call(ctx, "textDocument/hover", map[string]any{"textDocument": 5})
		require.Error(t, err)
		var jerr *jrpc2.Error
		require.True(t, errors.As(err, &jerr))
		assert.Equal(t, jrpc2.Code(-32700), jerr.Code)
	})

	t.Run("unknown_method", func(t *testing.T) {
		_, err := s.client.Call(ctx, "textDocument/completion", map[string]any{})
		require.Error(t, err)
		var jerr *jrpc2.Error
		require.True(t, errors.As(err, &jerr))
		assert.Equal(t, jrpc2.MethodNotFound, jerr.Code)
	})

	t.Run("cancel_request_is_accepted", func(t *testing.T) {
		require.NoError(t, s.client.Notify(ctx, "$/cancelRequest", &protocol.CancelParams{ID: 7}))
		since := time.Time{}
		msgs, ok := s.tracker.WaitForMessages(since, 1, 2*time.Second, func(msg protocol.RPCMessage) bool {
			return msg.Method == "$/cancelRequest"
		})
		require.True(t, ok)
		require.Len(t, msgs, 1)
	})
}

func TestApplyClientToZerolog(t *testing.T) {
	ctx := testContext(t)

	mockClient := mockery.NewMockClient_protocol(t)
	mockClient.EXPECT().
		LogMessage(mock.Anything, mock.MatchedBy(func(params *protocol.LogMessageParams) bool {
			return params.Type == protocol.Warning &&
				strings.HasPrefix(params.Message, "validator slow") &&
				strings.Contains(params.Message, "uri=file:///a.wit")
		})).
		Return(nil).
		Once()
	mockClient.EXPECT().
		LogMessage(mock.Anything, mock.MatchedBy(func(params *protocol.LogMessageParams) bool {
			return params.Type == protocol.Error && strings.HasPrefix(params.Message, "validator failed")
		})).
		Return(nil).
		Once()

	var mirror strings.Builder
	ctx = protocol.ApplyClientToZerolog(ctx, mockClient, &mirror)

	zerolog.Ctx(ctx).Warn().Str("uri", "file:///a.wit").Msg("validator slow")
	zerolog.Ctx(ctx).Error().Msg("validator failed")

	assert.Contains(t, mirror.String(), `"message":"validator slow"`)
	assert.Contains(t, mirror.String(), `"message":"validator failed"`)
}

func TestParseMessageTypeFromZerolog(t *testing.T) {
	tests := map[string]protocol.MessageType{
		"error": protocol.Error,
		"fatal": protocol.Error,
		"warn":  protocol.Warning,
		"info":  protocol.Info,
		"debug": protocol.Debug,
		"trace": protocol.Log,
	}
	for level, want := range tests {
		assert.Equal(t, want, protocol.ParseMessageTypeFromZerolog(level), level)
	}
}

func TestDocumentURI(t *testing.T) {
	assert.Equal(t, "/tmp/a b.wit", protocol.DocumentURI("file:///tmp/a%20b.wit").Path())
	assert.Equal(t, "/tmp/x.wit", protocol.DocumentURI("/tmp/x.wit").Path())
	assert.Equal(t, "", protocol.DocumentURI("untitled:Untitled-1").Path())
	assert.Equal(t, "", protocol.DocumentURI("").Path())

	assert.Equal(t, protocol.DocumentURI("file:///tmp/a%20b.wit"), protocol.URIFromPath("/tmp/a b.wit"))
	assert.Equal(t, "/tmp/a b.wit", protocol.URIFromPath("/tmp/a b.wit").Path())
}

func TestPublishDiagnosticsEncodesEmptySet(t *testing.T) {
	data, err := json.Marshal(&protocol.PublishDiagnosticsParams{
		URI:         "file:///a.wit",
		Diagnostics: protocol.NonNilSlice[protocol.Diagnostic](nil),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uri":"file:///a.wit","diagnostics":[]}`, string(data))
}
