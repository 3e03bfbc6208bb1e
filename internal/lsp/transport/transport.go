// Package transport frames JSON-RPC messages with Content-Length headers
// over a byte stream, as the Language Server Protocol requires on stdio.
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"cstyle/internal/lsp/jsonrpc"
)

// MaxMessageSize bounds a single message body.
const MaxMessageSize = 64 << 20

var (
	ErrMissingLength = errors.New("transport: missing Content-Length header")
	ErrTooLarge      = errors.New("transport: message exceeds size limit")
)

// DecodeError reports a well-framed message whose body is not a JSON-RPC
// request. The stream stays usable after it.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "transport: malformed message: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// ReadMessage reads one framed body. It returns io.EOF when the stream ends
// cleanly between messages.
func ReadMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	sawHeader := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && !sawHeader && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("transport: read header: %w", err)
		}
		sawHeader = true
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("transport: bad Content-Length %q", value)
		}
		length = n
	}
	if length < 0 {
		return nil, ErrMissingLength
	}
	if length > MaxMessageSize {
		return nil, ErrTooLarge
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	return body, nil
}

// WriteMessage encodes v and writes it with its header in one call.
func WriteMessage(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("transport: encode: %w", err)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(body))
	b.Write(body)
	_, err = w.Write(b.Bytes())
	return err
}

// Conn is one client connection. Reads happen on a single goroutine; writes
// may come from any goroutine.
type Conn struct {
	r  *bufio.Reader
	mu sync.Mutex
	w  io.Writer
}

func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: bufio.NewReader(r), w: w}
}

// Read returns the next request or notification. A *DecodeError means the
// message was skipped and reading may continue.
func (c *Conn) Read() (*jsonrpc.Request, error) {
	body, err := ReadMessage(c.r)
	if err != nil {
		return nil, err
	}
	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if req.Method == "" {
		return &req, &DecodeError{Err: errors.New("missing method")}
	}
	return &req, nil
}

func (c *Conn) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteMessage(c.w, v)
}

// Reply sends a successful response. A nil result is sent as JSON null.
func (c *Conn) Reply(id json.RawMessage, result any) error {
	if result == nil {
		result = jsonrpc.Null
	}
	return c.write(jsonrpc.Response{JSONRPC: jsonrpc.Version, ID: id, Result: result})
}

func (c *Conn) ReplyError(id json.RawMessage, code int, message string) error {
	if len(id) == 0 {
		id = jsonrpc.Null
	}
	return c.write(jsonrpc.Response{
		JSONRPC: jsonrpc.Version,
		ID:      id,
		Error:   &jsonrpc.ResponseError{Code: code, Message: message},
	})
}

// Notify sends a server-to-client notification.
func (c *Conn) Notify(method string, params any) error {
	return c.write(jsonrpc.Notification{JSONRPC: jsonrpc.Version, Method: method, Params: params})
}
