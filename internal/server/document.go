package server

import (
	"github.com/stefanvanburen/strvars/internal/protocol"
	"github.com/stefanvanburen/strvars/internal/workspace"
)

// document tracks a single open workspace.
type document struct {
	uri     protocol.DocumentURI
	version int32
	ws      *workspace.Workspace
}

// item renders the document in its wire form.
func (d *document) item() (protocol.DocumentItem, error) {
	text, err := d.ws.MarshalJSON()
	if err != nil {
		return protocol.DocumentItem{}, err
	}
	return protocol.DocumentItem{URI: d.uri, Version: d.version, Text: string(text)}, nil
}
