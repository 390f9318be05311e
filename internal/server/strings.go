package server

import (
	"github.com/stefanvanburen/strvars/internal/flyout"
	"github.com/stefanvanburen/strvars/internal/jsonrpc2"
	"github.com/stefanvanburen/strvars/internal/protocol"
	"github.com/stefanvanburen/strvars/internal/strvar"
	"go.uber.org/zap"
)

func (s *server) listIdentifiers(req *jsonrpc2.Request) (any, error) {
	var params protocol.ListParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(params.Document.URI)
	if err != nil {
		return nil, err
	}

	var root any = doc.ws
	if params.BlockID != "" {
		b, ok := doc.ws.Block(params.BlockID)
		if !ok {
			return nil, jsonrpc2.Errorf(jsonrpc2.CodeInvalidParams, "no block with id %q", params.BlockID)
		}
		root = b
	}

	names, err := strvar.All(root)
	if err != nil {
		return nil, err
	}
	if params.Sorted {
		names = strvar.Sorted(names)
	}
	if names == nil {
		names = []string{}
	}
	return protocol.ListResult{Identifiers: names}, nil
}

func (s *server) renameIdentifier(req *jsonrpc2.Request) (any, error) {
	var params protocol.RenameParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.OldName == "" {
		return nil, jsonrpc2.Errorf(jsonrpc2.CodeInvalidParams, "old name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(params.Document.URI)
	if err != nil {
		return nil, err
	}
	if err := doc.ws.CheckRename(params.OldName, params.NewName); err != nil {
		return nil, jsonrpc2.Errorf(jsonrpc2.CodeInvalidParams, "cannot rename %q: %v", params.OldName, err)
	}

	strvar.Rename(params.OldName, params.NewName, doc.ws)
	doc.version++
	s.logger.Debug("renamed identifier",
		zap.String("uri", string(doc.uri)),
		zap.String("old", params.OldName),
		zap.String("new", params.NewName))

	item, err := doc.item()
	if err != nil {
		return nil, err
	}
	return protocol.RenameResult{Document: item}, nil
}

func (s *server) generateUniqueName(req *jsonrpc2.Request) (any, error) {
	var params protocol.UniqueNameParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(params.Document.URI)
	if err != nil {
		return nil, err
	}
	return protocol.UniqueNameResult{Name: strvar.GenerateUniqueName(doc.ws)}, nil
}

func (s *server) flyoutCategory(req *jsonrpc2.Request) (any, error) {
	var params protocol.FlyoutParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.lookup(params.Document.URI)
	if err != nil {
		return nil, err
	}

	elems := flyout.Category(doc.ws, s.cfg.Registry(), s.cfg.DefaultName)
	data, err := flyout.Marshal(elems)
	if err != nil {
		return nil, err
	}
	return protocol.FlyoutResult{XML: string(data)}, nil
}
