package server

import (
	"context"

	"github.com/stefanvanburen/strvars/internal/jsonrpc2"
	"github.com/stefanvanburen/strvars/internal/protocol"
	"github.com/stefanvanburen/strvars/internal/workspace"
	"go.uber.org/zap"
)

// computeDiagnostics returns the syntax errors of every expression block in ws, in
// workspace order. The result is never nil.
func computeDiagnostics(ws *workspace.Workspace) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	for _, b := range ws.AllBlocks() {
		eb, ok := b.(*workspace.ExprBlock)
		if !ok {
			continue
		}
		for _, p := range eb.Problems() {
			diags = append(diags, protocol.Diagnostic{
				BlockID: eb.ID(),
				Column:  p.Column,
				Message: p.Message,
				Source:  serverName,
			})
		}
	}
	return diags
}

// publishDiagnostics pushes the diagnostics of the document at uri to the
// client.
func (s *server) publishDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, uri protocol.DocumentURI) {
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return
	}
	params := protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     doc.version,
		Diagnostics: computeDiagnostics(doc.ws),
	}
	s.mu.Unlock()

	if err := conn.Notify(ctx, protocol.MethodPublishDiagnostics, params); err != nil {
		s.logger.Warn("failed to publish diagnostics", zap.String("uri", string(uri)), zap.Error(err))
	}
}

func (s *server) diagnostics(req *jsonrpc2.Request) (any, error) {
	var params protocol.DiagnosticsParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(params.Document.URI)
	if err != nil {
		return nil, err
	}
	return protocol.DiagnosticsResult{Diagnostics: computeDiagnostics(doc.ws)}, nil
}
