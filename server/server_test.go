package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Gandalf-/apocrypha/document"
	"github.com/Gandalf-/apocrypha/store"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	s := store.New(document.New(), 0, zap.NewNop())
	srv := New("127.0.0.1:0", s, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ready := make(chan string, 1)
	go func() {
		lc := net.ListenConfig{}
		ln, err := lc.Listen(ctx, "tcp", srv.addr)
		if err != nil {
			t.Errorf("listen: %v", err)
			return
		}
		srv.listener = ln
		ready <- ln.Addr().String()

		go func() {
			<-ctx.Done()
			ln.Close()
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(ctx, conn, "test")
		}
	}()

	return <-ready
}

func TestServerRoundTrip(t *testing.T) {
	addr := startTestServer(t)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	if err := writeFrame(conn, "a\n=\n1\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := readFrame(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(resp) != "" {
		t.Fatalf("expected empty body for assignment, got %q", resp)
	}

	if err := writeFrame(conn, "a\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err = readFrame(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(resp) != "1\n" {
		t.Fatalf("got %q, want \"1\\n\"", resp)
	}
}

func TestSplitTokens(t *testing.T) {
	got := splitTokens([]byte("a\nb\n"))
	want := []string{"a", "b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplitTokensEmptyPayload(t *testing.T) {
	if got := splitTokens([]byte("")); got != nil {
		t.Fatalf("expected nil for an empty payload, got %v", got)
	}
}
