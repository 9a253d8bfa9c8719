package protocol

import (
	"context"
	"io"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// CallbackRPCLogger is an optional extension of jrpc2.RPCLogger that also sees
// messages the server pushes to the client.
type CallbackRPCLogger interface {
	jrpc2.RPCLogger
	LogCallbackRequestRaw(ctx context.Context, method string, params any)
	LogCallbackResponse(ctx context.Context, res *jrpc2.Response)
}

// CallbackClient implements Client by pushing messages back over the server's
// own connection.
type CallbackClient struct {
	serverOpts *jrpc2.ServerOptions
	client     *jrpc2.Server
}

var _ Client = (*CallbackClient)(nil)

func NewCallbackClient(server *jrpc2.Server, serverOpts *jrpc2.ServerOptions) *CallbackClient {
	return &CallbackClient{client: server, serverOpts: serverOpts}
}

func (c *CallbackClient) Notify(ctx context.Context, method string, params any) error {
	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackRequestRaw(ctx, method, params)
	}

	if err := c.client.Notify(ctx, method, params); err != nil {
		return errors.Errorf("notifying client of %s: %w", method, err)
	}

	return nil
}

func (c *CallbackClient) Callback(ctx context.Context, method string, params any) (*jrpc2.Response, error) {
	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackRequestRaw(ctx, method, params)
	}

	res, err := c.client.Callback(ctx, method, params)
	if err != nil {
		return nil, errors.Errorf("calling client %s: %w", method, err)
	}

	if rl, ok := c.serverOpts.RPCLog.(CallbackRPCLogger); ok {
		rl.LogCallbackResponse(ctx, res)
	}

	return res, nil
}

// NewServerServer builds a jrpc2 server for server. The returned client pushes
// notifications over the same connection once the server is started.
func NewServerServer(ctx context.Context, server Server, opts *jrpc2.ServerOptions) (*jrpc2.Server, *CallbackClient) {
	methods := buildServerDispatchMap(server)
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}

	opts.AllowPush = true

	var result *jrpc2.Server

	exit := methods["exit"]
	methods["exit"] = func(ctx context.Context, r *jrpc2.Request) (any, error) {
		res, err := exit(ctx, r)
		// Stop waits for in-flight handlers, this one included
		go result.Stop()
		return res, err
	}

	if opts.NewContext == nil {
		opts.NewContext = func() context.Context {
			return ctx
		}
	}

	result = jrpc2.NewServer(methods, opts)

	return result, NewCallbackClient(result, opts)
}

// ServerInstance owns one running jrpc2 server for a Server.
type ServerInstance struct {
	ctx      context.Context
	server   *jrpc2.Server
	callback *CallbackClient
	tracker  *RPCTracker

	mu      sync.Mutex
	started bool
}

func NewServerInstance(ctx context.Context, server Server, opts *jrpc2.ServerOptions) *ServerInstance {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}

	inst := &ServerInstance{ctx: ctx}
	opts.NewContext = inst.requestContext

	if tracker := GetRPCTrackerFromContext(ctx); tracker != nil {
		inst.SetRPCTracker(tracker)
		opts.RPCLog = joinRPCLoggers(opts.RPCLog, tracker)
	}

	inst.server, inst.callback = NewServerServer(ctx, server, opts)

	return inst
}

// ForwardingClient sends notifications to whichever editor is connected to
// this instance.
func (s *ServerInstance) ForwardingClient() Client {
	return s.callback
}

// LogToClient mirrors every log entry written while handling a request to the
// editor as window/logMessage. Entries are still written to also.
func (s *ServerInstance) LogToClient(also io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ApplyClientToZerolog(s.ctx, s.callback, also)
}

func (s *ServerInstance) requestContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *ServerInstance) SetRPCTracker(tracker *RPCTracker) {
	s.tracker = tracker
}

func (s *ServerInstance) RPCTracker() *RPCTracker {
	return s.tracker
}

// Start serves on ch in the background. It may be called once.
func (s *ServerInstance) Start(ch channel.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("server instance already started")
	}
	s.started = true

	zerolog.Ctx(s.ctx).Debug().Msg("starting jrpc2 server")

	s.server.Start(ch)
	return nil
}

// Wait blocks until the server stops. A stop caused by exit or by the peer
// closing the stream is not an error.
func (s *ServerInstance) Wait() error {
	err := s.server.Wait()
	if err == nil || errors.Is(err, jrpc2.ErrConnClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return errors.Errorf("language server stopped: %w", err)
}

// StartAndWait serves LSP-framed messages read from r and written to w until
// the client exits or disconnects.
func (s *ServerInstance) StartAndWait(r io.Reader, w io.WriteCloser) error {
	if err := s.Start(channel.LSP(r, w)); err != nil {
		return err
	}
	return s.Wait()
}

// Stop shuts the server down without waiting for exit.
func (s *ServerInstance) Stop() {
	s.server.Stop()
}
