// Package lsp is the witls document session. It keeps the text of every open
// WIT file, answers hover and semantic token requests from that text, and
// publishes validator diagnostics on every lifecycle event.
package lsp

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/creachadair/jrpc2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/witls/pkg/config"
	"github.com/walteh/witls/pkg/diagnostic"
	"github.com/walteh/witls/pkg/hover"
	"github.com/walteh/witls/pkg/lsp/protocol"
	"github.com/walteh/witls/pkg/position"
	"github.com/walteh/witls/pkg/semtok"
	"gitlab.com/tozd/go/errors"
)

const (
	serverName = "witls"
	languageID = "wit"
)

var ErrDocumentNotFound = errors.New("document not found")

// Server represents an LSP server instance
type Server struct {
	documents *DocumentManager
	extractor *diagnostic.Extractor
	config    *config.Config
	fs        afero.Fs

	// Server identification
	id      string
	version string

	resultID atomic.Uint64
	shutdown atomic.Bool
	trace    atomic.Value // protocol.TraceValue

	// per package directory lint bookkeeping
	lintMu      sync.Mutex
	generations map[string]uint64
	published   map[string]map[protocol.DocumentURI]bool
	lints       sync.WaitGroup

	watcher *dirWatcher

	// LSP client for notifications
	callbackClient protocol.Client
}

var _ protocol.Server = (*Server)(nil)

type Option func(*Server)

// WithConfig replaces the default settings. The validator command of cfg is
// used unless WithExtractor is also given.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

func WithExtractor(extractor *diagnostic.Extractor) Option {
	return func(s *Server) {
		s.extractor = extractor
	}
}

// WithFs sets the filesystem used to read documents the editor has not opened.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) {
		s.fs = fs
	}
}

func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

func NewServer(ctx context.Context, opts ...Option) *Server {
	s := &Server{
		id:          xid.New().String(),
		generations: make(map[string]uint64),
		published:   make(map[string]map[protocol.DocumentURI]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.config == nil {
		s.config = config.Default()
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.extractor == nil {
		s.extractor = diagnostic.NewExtractor(diagnostic.NewCommandRunner(s.config.Validator.Command, s.config.Validator.Args...))
	}
	s.documents = NewDocumentManager(s.fs)
	s.trace.Store(protocol.TraceOff)

	zerolog.Ctx(ctx).Debug().Str("server_id", s.id).Str("validator", s.config.Validator.Command).Msg("created lsp server")

	return s
}

func (s *Server) SetCallbackClient(client protocol.Client) {
	s.callbackClient = client
}

func (s *Server) Documents() *DocumentManager {
	return s.documents
}

// BuildServerInstance wires the server to a jrpc2 server whose connection
// also carries the diagnostics the server publishes.
func (s *Server) BuildServerInstance(ctx context.Context, opts *jrpc2.ServerOptions) *protocol.ServerInstance {
	if opts == nil {
		opts = &jrpc2.ServerOptions{}
	}
	// lifecycle notifications must be handled in the order they were sent
	opts.Concurrency = 1

	instance := protocol.NewServerInstance(ctx, s, opts)
	s.SetCallbackClient(instance.ForwardingClient())
	return instance
}

// WatchedDirs lists the package directories watched for changes on disk.
func (s *Server) WatchedDirs() []string {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.watched()
}

// WaitForLints blocks until every validator run started so far has finished
// and published.
func (s *Server) WaitForLints() {
	s.lints.Wait()
}

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)

	if params.ClientInfo != nil {
		logger.Info().Str("client", params.ClientInfo.Name).Str("client_version", params.ClientInfo.Version).Str("root", string(params.RootURI)).Msg("initializing")
	}
	if params.Trace != "" {
		s.trace.Store(params.Trace)
	}

	legend := semtok.NewLegend()

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			PositionEncoding: "utf-16",
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.Full,
				WillSave:  true,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			HoverProvider: true,
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     legend.TokenTypes,
					TokenModifiers: legend.TokenModifiers,
				},
				Full: &protocol.SemanticTokensFullOptions{},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: s.version,
		},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("server initialized")

	if s.config.Watch == nil || !s.config.Watch.Enabled {
		return nil
	}

	w, err := newDirWatcher(ctx, s)
	if err != nil {
		// diagnostics still follow editor events without the watcher
		logger.Warn().Err(err).Msg("file watching disabled")
		return nil
	}
	s.watcher = w

	for _, doc := range s.documents.Open() {
		if path := doc.Path(); path != "" {
			s.watcher.watch(ctx, filepath.Dir(path))
		}
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("shutting down")
	s.shutdown.Store(true)

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			return errors.Errorf("closing file watcher: %w", err)
		}
	}
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Bool("clean", s.shutdown.Load()).Msg("exiting")
	return nil
}

func (s *Server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	s.trace.Store(params.Value)
	zerolog.Ctx(ctx).Debug().Str("trace", string(params.Value)).Msg("trace changed")
	return nil
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Int32("version", params.TextDocument.Version).Msg("did open")

	doc := &Document{
		URI:        params.TextDocument.URI,
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    params.TextDocument.Text,
	}
	s.documents.Store(doc)

	if s.watcher != nil && doc.Path() != "" {
		s.watcher.watch(ctx, filepath.Dir(doc.Path()))
	}

	s.lint(ctx, doc.URI)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)
	uri := params.TextDocument.URI
	logger.Debug().Str("uri", string(uri)).Int32("version", params.TextDocument.Version).Msg("did change")

	if len(params.ContentChanges) == 0 {
		return nil
	}

	prev, ok := s.documents.GetNoFallback(uri)
	if !ok {
		return errors.Errorf("changing %s: %w", uri, ErrDocumentNotFound)
	}

	// full sync: the last change carries the whole text
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if change.Range != nil {
		logger.Warn().Str("uri", string(uri)).Msg("ranged change received, treating text as the whole document")
	}

	s.documents.Store(&Document{
		URI:        prev.URI,
		LanguageID: prev.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    change.Text,
	})

	s.lint(ctx, uri)
	return nil
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	zerolog.Ctx(ctx).Debug().Str("uri", string(uri)).Bool("has_text", params.Text != nil).Msg("did save")

	if params.Text != nil {
		if prev, ok := s.documents.GetNoFallback(uri); ok {
			s.documents.Store(&Document{
				URI:        prev.URI,
				LanguageID: prev.LanguageID,
				Version:    prev.Version,
				Content:    *params.Text,
			})
		}
	}

	s.lint(ctx, uri)
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	zerolog.Ctx(ctx).Debug().Str("uri", string(uri)).Msg("did close")

	s.documents.Delete(uri)

	if path := uri.Path(); s.watcher != nil && path != "" {
		dir := filepath.Dir(path)
		if len(s.documents.InDir(dir)) == 0 {
			s.watcher.unwatch(ctx, dir)
		}
	}

	s.lint(ctx, uri)
	return nil
}

func (s *Server) WillSave(ctx context.Context, params *protocol.WillSaveTextDocumentParams) error {
	zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Uint32("reason", uint32(params.Reason)).Msg("will save")

	s.lint(ctx, params.TextDocument.URI)
	return nil
}

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	logger := zerolog.Ctx(ctx)
	logger.Trace().Msgf("hover request received: %+v", params)

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("hover in unknown document, no result")
		return nil, nil
	}

	info := hover.Resolve(ctx, doc.Content, toPlace(params.Position))
	if info == nil {
		return nil, nil
	}

	rng := toProtocolRange(info.Range)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: strings.Join(info.Content, "\n\n"),
		},
		Range: &rng,
	}, nil
}

func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	logger := zerolog.Ctx(ctx)

	resultID := strconv.FormatUint(s.resultID.Add(1), 10)

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("semantic tokens for unknown document, returning none")
		return &protocol.SemanticTokens{ResultID: resultID, Data: []uint32{}}, nil
	}

	records, err := semtok.EncodeText(doc.Content)
	if err != nil {
		logger.Debug().Err(err).Str("uri", string(doc.URI)).Msg("unable to tokenize, returning no semantic tokens")
		return &protocol.SemanticTokens{ResultID: resultID, Data: []uint32{}}, nil
	}

	logger.Trace().Int("tokens", len(records)).Str("uri", string(doc.URI)).Msg("semantic tokens")

	return &protocol.SemanticTokens{
		ResultID: resultID,
		Data:     semtok.Flatten(records),
	}, nil
}

func toPlace(p protocol.Position) position.Place {
	return position.Place{Line: p.Line, Character: p.Character}
}

func toProtocolPosition(p position.Place) protocol.Position {
	return protocol.Position{Line: p.Line, Character: p.Character}
}

func toProtocolRange(r position.Range) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(r.Start),
		End:   toProtocolPosition(r.End),
	}
}
