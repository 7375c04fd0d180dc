package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrParse reports a line that was read but did not decode as a JSON-RPC
// message. The stream itself is still usable after it; scanner failures
// (an oversized line included) are returned as-is and are terminal.
var ErrParse = errors.New("malformed message")

// Transport speaks line-delimited JSON-RPC, usually over stdio.
type Transport struct {
	scanner *bufio.Scanner
	writer  io.Writer
	mu      sync.Mutex
}

// maxMessageBytes bounds a single inbound JSON-RPC line.
const maxMessageBytes = 4 * 1024 * 1024

// NewTransport wraps a reader/writer pair in a transport.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)
	return &Transport{scanner: sc, writer: w}
}

// ReadMessage reads the next request. Returns io.EOF when the peer closes.
func (t *Transport) ReadMessage() (*Request, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read message: %w", err)
		}
		return nil, io.EOF
	}
	var req Request
	if err := json.Unmarshal(t.scanner.Bytes(), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &req, nil
}

// WriteResponse serializes a response as one line.
func (t *Transport) WriteResponse(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = fmt.Fprintf(t.writer, "%s\n", data)
	return err
}

// WriteNotification serializes a server-initiated notification as one line.
func (t *Transport) WriteNotification(method string, params any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		raw = data
	}
	data, err := json.Marshal(Notification{JSONRPC: "2.0", Method: method, Params: raw})
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = fmt.Fprintf(t.writer, "%s\n", data)
	return err
}
