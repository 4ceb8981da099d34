// Package server implements the out-of-core TCP front end: it accepts
// connections, reads length-prefixed, newline-delimited queries, hands
// them to a *store.Store, and writes length-prefixed responses. The
// server itself performs no locking
// beyond what store.Store does internally — concurrent connections only
// ever block on the store's lock for the duration of one query.
package server

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gandalf-/apocrypha/store"
)

// maxRequestBytes bounds the 4-byte length prefix so a corrupt or
// malicious client cannot force an unbounded allocation.
const maxRequestBytes = 64 << 20 // 64 MiB

// Server accepts framed query connections and evaluates them against a
// shared store.Store.
type Server struct {
	addr  string
	store *store.Store
	log   *zap.Logger

	listener net.Listener
}

// New returns a Server listening on addr (host:port) once Serve is
// called.
func New(addr string, s *store.Store, log *zap.Logger) *Server {
	return &Server{addr: addr, store: s, log: log}
}

// Serve opens the listening socket and accepts connections until ctx is
// cancelled, at which point it closes the listener and returns. Each
// connection is handled in its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.log.Info("listening", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}
		connID := uuid.NewString()
		go s.handleConn(ctx, conn, connID)
	}
}

// handleConn services one connection until it errors, disconnects, or
// ctx is cancelled. Each request/response pair is independent: a client
// may pipeline multiple queries over one connection.
func (s *Server) handleConn(ctx context.Context, conn net.Conn, connID string) {
	defer conn.Close()
	log := s.log.With(zap.String("conn", connID), zap.String("remote", conn.RemoteAddr().String()))

	r := bufio.NewReader(conn)
	for {
		if ctx.Err() != nil {
			return
		}
		payload, err := readFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Debug("protocol error, closing connection", zap.Error(err))
			return
		}

		tokens := splitTokens(payload)
		body, closeConn := s.store.Evaluate(tokens)

		if err := writeFrame(conn, body); err != nil {
			// The client disconnected while we were writing the
			// response; the mutation, if any, already stands.
			log.Debug("failed to write response, dropping", zap.Error(err))
			return
		}
		if closeConn {
			return
		}
	}
}

// readFrame reads a 4-byte big-endian length prefix followed by that
// many bytes, validated as UTF-8. ProtocolError conditions (oversize
// length, non-UTF-8 body, truncated
// frame) all result in the caller closing the connection without a
// response.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxRequestBytes {
		return nil, fmt.Errorf("request too large: %d bytes", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("request is not valid UTF-8")
	}
	return payload, nil
}

// writeFrame writes body as a 4-byte big-endian length prefix followed
// by its UTF-8 bytes. An empty body is a valid, zero-length response.
func writeFrame(w io.Writer, body string) error {
	data := []byte(body)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// splitTokens turns the newline-delimited payload into a token list.
// The protocol requires a trailing newline on every query; an empty
// trailing token from that delimiter is dropped.
func splitTokens(payload []byte) []string {
	s := string(payload)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
