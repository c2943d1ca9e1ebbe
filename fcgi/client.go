package fcgi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

/*
One-shot FastCGI responder client. A Client owns exactly one connection and
performs exactly one request on it: begin-request, the params stream, the
stdin stream, then a read loop collecting stdout/stderr until the server
closes the request. No keep-alive, no multiplexing, no retries.
*/

// Response holds the collected response streams. A stream that the server
// never wrote stays nil, distinct from an empty one.
type Response struct {
	Stdout    []byte
	Stderr    []byte
	AppStatus uint32
}

// Client is a connection to a FastCGI server.
type Client struct {
	conn net.Conn
	rd   *bufio.Reader
}

// Dial connects to a FastCGI server. An address containing a colon and no
// slash is treated as HOST:PORT, anything else as a unix socket path.
func Dial(address string) (*Client, error) {
	return DialContext(context.Background(), address)
}

// DialContext is Dial with connection establishment bound to ctx.
func DialContext(ctx context.Context, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, networkFor(address), address)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", address, err)
	}
	return NewClient(conn), nil
}

func networkFor(address string) string {
	if !strings.Contains(address, "/") && strings.Contains(address, ":") {
		return "tcp"
	}
	return "unix"
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, rd: bufio.NewReader(conn)}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send performs one responder request and blocks until the server completes
// it. stdin may be nil for a bodyless request.
func (c *Client) Send(params map[string]string, stdin io.Reader) (*Response, error) {
	// role responder, no keep-conn flag: the server closes after one request
	begin := [8]byte{0, roleResponder, 0}
	if err := c.writeRecord(typeBeginRequest, begin[:]); err != nil {
		return nil, err
	}
	if err := c.writeStream(typeParams, bytes.NewReader(encodeParams(params))); err != nil {
		return nil, err
	}
	if err := c.writeStream(typeStdin, stdin); err != nil {
		return nil, err
	}
	return c.readResponse()
}

// writeStream copies src into records of type recType and terminates the
// stream with an empty record.
func (c *Client) writeStream(recType uint8, src io.Reader) error {
	if src != nil {
		chunk := make([]byte, maxRecordContent)
		for {
			n, err := src.Read(chunk)
			if n > 0 {
				if werr := c.writeRecord(recType, chunk[:n]); werr != nil {
					return werr
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("read request body: %w", err)
			}
		}
	}
	return c.writeRecord(recType, nil)
}

func (c *Client) writeRecord(recType uint8, content []byte) error {
	h := newHeader(recType, 1, len(content))

	buf := bytes.NewBuffer(make([]byte, 0, 8+len(content)+int(h.PaddingLength)))
	if err := binary.Write(buf, binary.BigEndian, h); err != nil {
		return err
	}
	buf.Write(content)
	buf.Write(make([]byte, h.PaddingLength))

	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (c *Client) readRecord() (header, []byte, error) {
	var h header
	if err := binary.Read(c.rd, binary.BigEndian, &h); err != nil {
		return h, nil, err
	}
	if h.Version != version1 {
		return h, nil, errors.New("invalid record version")
	}

	content := make([]byte, int(h.ContentLength)+int(h.PaddingLength))
	if _, err := io.ReadFull(c.rd, content); err != nil {
		return h, nil, err
	}
	return h, content[:h.ContentLength], nil
}

func (c *Client) readResponse() (*Response, error) {
	var stdout, stderr bytes.Buffer
	sawStdout, sawStderr := false, false

	for {
		h, content, err := c.readRecord()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		switch h.Type {
		case typeStdout:
			if len(content) > 0 {
				sawStdout = true
				stdout.Write(content)
			}
		case typeStderr:
			if len(content) > 0 {
				sawStderr = true
				stderr.Write(content)
			}
		case typeEndRequest:
			if len(content) < 8 {
				return nil, errors.New("short end-request record")
			}
			if status := content[4]; status != statusRequestComplete {
				return nil, protocolStatusError(status)
			}
			resp := &Response{AppStatus: binary.BigEndian.Uint32(content[:4])}
			if sawStdout {
				resp.Stdout = stdout.Bytes()
			}
			if sawStderr {
				resp.Stderr = stderr.Bytes()
			}
			return resp, nil
		default:
			// management records are not expected mid-request, skip them
		}
	}
}

func protocolStatusError(status uint8) error {
	switch status {
	case statusCantMultiplex:
		return errors.New("server cannot multiplex this connection")
	case statusOverloaded:
		return errors.New("server overloaded")
	case statusUnknownRole:
		return errors.New("server rejected the responder role")
	default:
		return fmt.Errorf("unknown protocol status %d", status)
	}
}
