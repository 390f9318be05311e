// Package jsonrpc2 implements JSON-RPC 2.0 over a Content-Length framed byte
// stream, the framing editors use for language-server style tooling.
//
// A Conn is symmetric: it serves incoming requests through a Handler and can
// issue its own calls and notifications to the peer.
package jsonrpc2

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Reserved error codes. Handlers mostly return CodeInvalidParams; the
// connection itself produces CodeMethodNotFound and CodeInternalError.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const version = "2.0"

// Error travels in the error member of a response. A handler returning an
// *Error controls the code the peer sees; any other error is reported as
// CodeInternalError.
type Error struct {
	Code    int64            `json:"code"`
	Message string           `json:"message"`
	Data    *json.RawMessage `json:"data,omitempty"`
}

// Errorf returns an *Error with the given code and formatted message.
func Errorf(code int64, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc2: %s (code %d)", e.Message, e.Code)
}

// ErrClosed is returned by Call once the read loop has stopped.
var ErrClosed = errors.New("jsonrpc2: connection closed")

// ID identifies a call. Peers may use numbers or strings; Conn issues
// numbers and echoes whatever it receives.
type ID struct {
	Num      uint64
	Str      string
	IsString bool
}

func (id ID) String() string {
	if !id.IsString {
		return strconv.FormatUint(id.Num, 10)
	}
	return strconv.Quote(id.Str)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if !id.IsString {
		return strconv.AppendUint(nil, id.Num, 10), nil
	}
	return json.Marshal(id.Str)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{Str: s, IsString: true}
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a number or string, got %s", data)
	}
	*id = ID{Num: n}
	return nil
}

// Request is an incoming request or notification.
type Request struct {
	Method string
	Params json.RawMessage
	ID     ID
	// Notif is set for notifications, which carry no id and get no response.
	Notif bool
}

// DecodeParams unmarshals the request parameters into v. Failures are
// reported to the peer as CodeInvalidParams.
func (r *Request) DecodeParams(v any) error {
	if len(r.Params) == 0 {
		return Errorf(CodeInvalidParams, "%s: missing params", r.Method)
	}
	if err := json.Unmarshal(r.Params, v); err != nil {
		return Errorf(CodeInvalidParams, "%s: %v", r.Method, err)
	}
	return nil
}

// message is every field any JSON-RPC message can carry. Pointers tell
// absent fields apart from zero values.
type message struct {
	JSONRPC string           `json:"jsonrpc"`
	Method  string           `json:"method,omitempty"`
	Params  *json.RawMessage `json:"params,omitempty"`
	ID      *ID              `json:"id,omitempty"`
	Result  *json.RawMessage `json:"result,omitempty"`
	Error   *Error           `json:"error,omitempty"`
}

func (m *message) isRequest() bool {
	return m.Method != ""
}

func (m *message) request() *Request {
	req := &Request{Method: m.Method, Notif: m.ID == nil}
	if m.Params != nil {
		req.Params = *m.Params
	}
	if m.ID != nil {
		req.ID = *m.ID
	}
	return req
}

// responseTo builds the response to id carrying either result or err.
func responseTo(id ID, result any, err error) *message {
	resp := &message{JSONRPC: version, ID: &id}
	if err != nil {
		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			rpcErr = &Error{Code: CodeInternalError, Message: err.Error()}
		}
		resp.Error = rpcErr
		return resp
	}
	raw, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		resp.Error = &Error{Code: CodeInternalError, Message: marshalErr.Error()}
		return resp
	}
	rm := json.RawMessage(raw)
	resp.Result = &rm
	return resp
}
