package jsonrpc2

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Handler serves incoming requests. The returned result or error becomes the
// response; for notifications both are discarded.
type Handler interface {
	Handle(ctx context.Context, conn *Conn, req *Request) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, conn *Conn, req *Request) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, conn *Conn, req *Request) (any, error) {
	return f(ctx, conn, req)
}

// Conn is a bidirectional JSON-RPC 2.0 connection.
type Conn struct {
	r      *bufio.Reader
	wc     io.WriteCloser
	h      Handler
	logger *zap.Logger

	wmu sync.Mutex // guards writes to wc

	mu      sync.Mutex
	seq     uint64
	pending map[uint64]chan *message
	closed  bool // set once the read loop has stopped

	done      chan struct{}
	closeOnce sync.Once
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithLogger makes the connection log malformed traffic and failed writes.
func WithLogger(logger *zap.Logger) ConnOption {
	return func(c *Conn) {
		c.logger = logger
	}
}

// NewConn creates a connection over rwc and starts reading from it in the
// background. h serves the requests the peer sends.
func NewConn(ctx context.Context, rwc io.ReadWriteCloser, h Handler, opts ...ConnOption) *Conn {
	c := &Conn{
		r:       bufio.NewReaderSize(rwc, 4096),
		wc:      rwc,
		h:       h,
		logger:  zap.NewNop(),
		pending: make(map[uint64]chan *message),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop(ctx)
	return c
}

// Close closes the connection.
func (c *Conn) Close() error {
	c.markDone()
	return c.wc.Close()
}

// DisconnectNotify returns a channel that is closed once the connection is
// closed by either side.
func (c *Conn) DisconnectNotify() <-chan struct{} {
	return c.done
}

func (c *Conn) markDone() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Call sends a request and waits for its response, decoding the result into
// result when it is non-nil.
func (c *Conn) Call(ctx context.Context, method string, params, result any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	rm := json.RawMessage(raw)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	id := c.seq
	c.seq++
	ch := make(chan *message, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	reqID := ID{Num: id}
	if err := c.write(&message{JSONRPC: version, Method: method, Params: &rm, ID: &reqID}); err != nil {
		forget()
		return err
	}

	select {
	case <-ctx.Done():
		forget()
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && resp.Result != nil {
			return json.Unmarshal(*resp.Result, result)
		}
		return nil
	}
}

// Notify sends a notification; the peer sends no response.
func (c *Conn) Notify(_ context.Context, method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	rm := json.RawMessage(raw)
	return c.write(&message{JSONRPC: version, Method: method, Params: &rm})
}

func (c *Conn) write(m *message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return writeFrame(c.wc, data)
}

func (c *Conn) readLoop(ctx context.Context) {
	defer func() {
		c.markDone()
		// Wake every caller still waiting for a response.
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
	}()

	for {
		data, err := readFrame(c.r)
		if err != nil {
			if err != io.EOF {
				c.logger.Debug("connection read ended", zap.Error(err))
			}
			return
		}

		var m message
		if err := json.Unmarshal(data, &m); err != nil {
			c.logger.Warn("dropping malformed message", zap.Error(err))
			continue
		}

		if m.isRequest() {
			c.serve(ctx, m.request())
			continue
		}
		if m.ID == nil {
			c.logger.Warn("dropping response without id")
			continue
		}
		c.mu.Lock()
		ch := c.pending[m.ID.Num]
		delete(c.pending, m.ID.Num)
		c.mu.Unlock()
		if ch != nil {
			ch <- &m
		}
	}
}

func (c *Conn) serve(ctx context.Context, req *Request) {
	result, err := c.h.Handle(ctx, c, req)
	if req.Notif {
		if err != nil {
			c.logger.Warn("notification failed", zap.String("method", req.Method), zap.Error(err))
		}
		return
	}
	if err := c.write(responseTo(req.ID, result, err)); err != nil {
		c.logger.Debug("failed to send response", zap.String("method", req.Method), zap.Error(err))
	}
}
