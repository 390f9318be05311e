// Package protocol defines the messages exchanged between an editor and the
// strvars server.
package protocol

// DocumentURI identifies an open workspace document.
type DocumentURI string

// Method names served by the server.
const (
	MethodInitialize         = "initialize"
	MethodInitialized        = "initialized"
	MethodShutdown           = "shutdown"
	MethodExit               = "exit"
	MethodDidOpen            = "workspace/didOpen"
	MethodDidChange          = "workspace/didChange"
	MethodDidClose           = "workspace/didClose"
	MethodListIdentifiers    = "strings/list"
	MethodRenameIdentifier   = "strings/rename"
	MethodGenerateUniqueName = "strings/generateUniqueName"
	MethodFlyoutCategory     = "strings/flyoutCategory"
	MethodDiagnostics        = "strings/diagnostics"
	MethodPublishDiagnostics = "strings/publishDiagnostics"
)

type InitializeParams struct {
	ClientName string `json:"clientName,omitempty"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type InitializeResult struct {
	ServerInfo ServerInfo `json:"serverInfo"`
	// Methods lists the request methods the server answers.
	Methods []string `json:"methods"`
	// NameType is the category the identifiers belong to.
	NameType string `json:"nameType"`
}

type InitializedParams struct{}

// DocumentItem is a workspace document in its JSON form.
type DocumentItem struct {
	URI     DocumentURI `json:"uri"`
	Version int32       `json:"version"`
	Text    string      `json:"text"`
}

type DocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

type DidOpenParams struct {
	Document DocumentItem `json:"document"`
}

// DidChangeParams replaces the whole document text.
type DidChangeParams struct {
	Document DocumentItem `json:"document"`
}

type DidCloseParams struct {
	Document DocumentIdentifier `json:"document"`
}

// ListParams asks for the identifiers of a document, or of the sub-tree under
// BlockID when set.
type ListParams struct {
	Document DocumentIdentifier `json:"document"`
	BlockID  string             `json:"blockId,omitempty"`
	// Sorted orders the result case-insensitively instead of by first use.
	Sorted bool `json:"sorted,omitempty"`
}

type ListResult struct {
	Identifiers []string `json:"identifiers"`
}

type RenameParams struct {
	Document DocumentIdentifier `json:"document"`
	OldName  string             `json:"oldName"`
	NewName  string             `json:"newName"`
}

// RenameResult carries the document after the rename.
type RenameResult struct {
	Document DocumentItem `json:"document"`
}

type UniqueNameParams struct {
	Document DocumentIdentifier `json:"document"`
}

type UniqueNameResult struct {
	Name string `json:"name"`
}

type FlyoutParams struct {
	Document DocumentIdentifier `json:"document"`
}

// FlyoutResult is the toolbox XML for the string category.
type FlyoutResult struct {
	XML string `json:"xml"`
}

type DiagnosticsParams struct {
	Document DocumentIdentifier `json:"document"`
}

// Diagnostic reports a syntax error in the expression held by a block.
type Diagnostic struct {
	BlockID string `json:"blockId"`
	Column  int    `json:"column"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// PublishDiagnosticsParams is sent by the server whenever a document is
// opened or changed. An empty list clears earlier diagnostics.
type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Version     int32        `json:"version"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type DiagnosticsResult struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}
