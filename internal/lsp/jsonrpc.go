package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"sync"
)

// maxMessageSize caps a single payload; a resume never gets near it.
const maxMessageSize = 64 << 20

// readMessage reads one Content-Length framed payload. Other headers
// (Content-Type in practice) are ignored, as are stray blank lines
// between messages.
func readMessage(r *bufio.Reader) ([]byte, error) {
	tp := textproto.NewReader(r)
	for {
		header, err := tp.ReadMIMEHeader()
		if err != nil {
			if errors.Is(err, io.EOF) && len(header) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		raw := header.Get("Content-Length")
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Length: %w", err)
		}
		if n < 0 || n > maxMessageSize {
			return nil, fmt.Errorf("invalid Content-Length: %d", n)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
}

func writeMessage(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// conn is a framed JSON-RPC stream. Reads happen on the serve loop only;
// writes come from the loop and from debounce timers.
type conn struct {
	in *bufio.Reader

	mu  sync.Mutex
	out *bufio.Writer
}

func newConn(in io.Reader, out io.Writer) *conn {
	return &conn{in: bufio.NewReader(in), out: bufio.NewWriter(out)}
}

// read returns the next message. A payload that is not JSON is reported
// through errMalformed so the caller can skip it.
func (c *conn) read() (*rpcMessage, error) {
	payload, err := readMessage(c.in)
	if err != nil {
		return nil, err
	}
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	return &msg, nil
}

var errMalformed = errors.New("malformed message")

func (c *conn) write(msg *rpcMessage) error {
	msg.JSONRPC = "2.0"
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := writeMessage(c.out, payload); err != nil {
		return err
	}
	return c.out.Flush()
}

func (c *conn) reply(id json.RawMessage, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.write(&rpcMessage{ID: id, Result: raw})
}

func (c *conn) replyError(id json.RawMessage, code int, message string) error {
	return c.write(&rpcMessage{ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (c *conn) notify(method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return c.write(&rpcMessage{Method: method, Params: raw})
}
