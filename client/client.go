// Package client implements the Apocrypha wire protocol from the
// caller's side: connect to a server address, send one query's tokens
// as a single length-prefixed frame, and read back the length-prefixed
// response.
package client

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Client holds a connection to one apocryphad instance. It is not safe
// for concurrent use by multiple goroutines.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to addr (host:port) with the given timeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Query sends tokens as one newline-delimited, length-prefixed frame
// and returns the response body with its trailing newline stripped.
func (c *Client) Query(tokens []string) (string, error) {
	payload := []byte(strings.Join(tokens, "\n") + "\n")

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := c.conn.Write(lenBuf[:]); err != nil {
		return "", fmt.Errorf("write request length: %w", err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return "", fmt.Errorf("write request body: %w", err)
	}

	if _, err := io.ReadFull(c.r, lenBuf[:]); err != nil {
		return "", fmt.Errorf("read response length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return strings.TrimSuffix(string(body), "\n"), nil
}
