// Package server exposes the string identifier operations of a block
// workspace over JSON-RPC.
//
// The main entry-point is the Serve() function, which serves a single editor
// over stdin/stdout. Editors open workspace documents with workspace/didOpen
// and then query them with the strings/* methods.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/stefanvanburen/strvars/internal/config"
	"github.com/stefanvanburen/strvars/internal/jsonrpc2"
	"github.com/stefanvanburen/strvars/internal/protocol"
	"github.com/stefanvanburen/strvars/internal/strvar"
	"github.com/stefanvanburen/strvars/internal/workspace"
	"go.uber.org/zap"
)

const serverName = "strvars"

// Option configures the server.
type Option func(*server)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(s *server) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *server) {
		s.logger = logger
	}
}

// Serve runs the server over stdin/stdout until the connection closes or ctx
// is done.
func Serve(ctx context.Context, opts ...Option) error {
	return ServeStream(ctx, stdinout{}, opts...)
}

// stdinout wraps stdin/stdout into a ReadWriteCloser.
type stdinout struct{}

func (stdinout) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdinout) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdinout) Close() error                { return os.Stdout.Close() }

// ServeStream runs the server over rwc until the connection closes or ctx is
// done.
func ServeStream(ctx context.Context, rwc io.ReadWriteCloser, opts ...Option) error {
	s := newServer(opts...)
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	conn := jsonrpc2.NewConn(ctx, rwc, jsonrpc2.HandlerFunc(s.handle), jsonrpc2.WithLogger(s.logger))
	s.logger.Info("serving", zap.String("default_name", s.cfg.DefaultName))
	select {
	case <-conn.DisconnectNotify():
		s.logger.Info("connection closed")
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down", zap.Error(ctx.Err()))
		_ = conn.Close()
		return ctx.Err()
	}
}

// server holds all of the server's mutable state.
type server struct {
	cfg    *config.Config
	logger *zap.Logger

	mu   sync.Mutex
	docs map[protocol.DocumentURI]*document
}

func newServer(opts ...Option) *server {
	s := &server{
		cfg:    config.Default(),
		logger: zap.NewNop(),
		docs:   make(map[protocol.DocumentURI]*document),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	s.logger.Debug("request", zap.String("method", req.Method), zap.Bool("notification", req.Notif))

	switch req.Method {
	case protocol.MethodInitialize:
		return s.initialize()
	case protocol.MethodInitialized, protocol.MethodShutdown:
		return nil, nil
	case protocol.MethodExit:
		return nil, conn.Close()
	case protocol.MethodDidOpen:
		uri, err := s.didOpen(req)
		if err != nil {
			return nil, err
		}
		s.publishDiagnostics(ctx, conn, uri)
		return nil, nil
	case protocol.MethodDidChange:
		uri, err := s.didChange(req)
		if err != nil {
			return nil, err
		}
		s.publishDiagnostics(ctx, conn, uri)
		return nil, nil
	case protocol.MethodDidClose:
		return nil, s.didClose(req)
	case protocol.MethodListIdentifiers:
		return s.listIdentifiers(req)
	case protocol.MethodRenameIdentifier:
		return s.renameIdentifier(req)
	case protocol.MethodGenerateUniqueName:
		return s.generateUniqueName(req)
	case protocol.MethodFlyoutCategory:
		return s.flyoutCategory(req)
	case protocol.MethodDiagnostics:
		return s.diagnostics(req)
	default:
		return nil, jsonrpc2.Errorf(jsonrpc2.CodeMethodNotFound, "method not supported: %s", req.Method)
	}
}

func (s *server) initialize() (any, error) {
	return protocol.InitializeResult{
		ServerInfo: protocol.ServerInfo{Name: serverName},
		Methods: []string{
			protocol.MethodListIdentifiers,
			protocol.MethodRenameIdentifier,
			protocol.MethodGenerateUniqueName,
			protocol.MethodFlyoutCategory,
			protocol.MethodDiagnostics,
		},
		NameType: strvar.NameType,
	}, nil
}

func (s *server) parse(text string) (*workspace.Workspace, error) {
	ws, err := workspace.Parse([]byte(text), s.cfg.WorkspaceOptions()...)
	if err != nil {
		return nil, jsonrpc2.Errorf(jsonrpc2.CodeInvalidParams, "%v", err)
	}
	return ws, nil
}

func (s *server) didOpen(req *jsonrpc2.Request) (protocol.DocumentURI, error) {
	var params protocol.DidOpenParams
	if err := req.DecodeParams(&params); err != nil {
		return "", err
	}
	ws, err := s.parse(params.Document.Text)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[params.Document.URI] = &document{
		uri:     params.Document.URI,
		version: params.Document.Version,
		ws:      ws,
	}
	s.logger.Debug("opened document", zap.String("uri", string(params.Document.URI)), zap.Int("blocks", ws.Len()))
	return params.Document.URI, nil
}

func (s *server) didChange(req *jsonrpc2.Request) (protocol.DocumentURI, error) {
	var params protocol.DidChangeParams
	if err := req.DecodeParams(&params); err != nil {
		return "", err
	}
	ws, err := s.parse(params.Document.Text)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[params.Document.URI]
	if doc == nil {
		return "", fmt.Errorf("received update for document that was not open: %q", params.Document.URI)
	}
	doc.version = params.Document.Version
	doc.ws = ws
	return params.Document.URI, nil
}

func (s *server) didClose(req *jsonrpc2.Request) error {
	var params protocol.DidCloseParams
	if err := req.DecodeParams(&params); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, params.Document.URI)
	return nil
}

// lookup returns the open document for uri. The caller must hold s.mu.
func (s *server) lookup(uri protocol.DocumentURI) (*document, error) {
	doc := s.docs[uri]
	if doc == nil {
		return nil, jsonrpc2.Errorf(jsonrpc2.CodeInvalidParams, "document not open: %q", uri)
	}
	return doc, nil
}
