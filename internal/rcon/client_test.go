package rcon

import (
	"context"
	"errors"
	"testing"
	"time"

	"asa-manager/internal/logging"
)

type fakeConn struct {
	execErr  error
	commands []string
	closed   bool
}

func (f *fakeConn) Exec(command string) (string, error) {
	f.commands = append(f.commands, command)
	if f.execErr != nil {
		return "", f.execErr
	}
	return " Server received, But no response!! \n", nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

type fakeDialer struct {
	err   error
	conns []*fakeConn
	calls int
}

func (d *fakeDialer) dial(_ context.Context, _ string, _ string, _ time.Duration) (Conn, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	conn := &fakeConn{}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func newTestClient(d *fakeDialer) *Client {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return NewClient(Options{Dial: d.dial, ReconnectDelay: time.Second, ReconnectCeiling: 4 * time.Second}, logger)
}

func TestClient_ExecuteReusesConnection(t *testing.T) {
	dialer := &fakeDialer{}
	client := newTestClient(dialer)
	client.SetTarget("Island", Target{Address: "127.0.0.1:27020", Password: "secret"})

	for i := 0; i < 3; i++ {
		resp, err := client.Execute(context.Background(), "Island", "ServerChat hi")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if resp != "Server received, But no response!!" {
			t.Fatalf("Execute() = %q", resp)
		}
	}
	if dialer.calls != 1 {
		t.Fatalf("dial calls = %d, want 1", dialer.calls)
	}
	if got := len(dialer.conns[0].commands); got != 3 {
		t.Fatalf("commands = %d, want 3", got)
	}
}

func TestClient_UnknownServer(t *testing.T) {
	client := newTestClient(&fakeDialer{})
	if _, err := client.Execute(context.Background(), "Nowhere", "ListPlayers"); !errors.Is(err, ErrUnknownServer) {
		t.Fatalf("Execute() error = %v, want ErrUnknownServer", err)
	}
}

func TestClient_ThrottlesRedialAfterFailure(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("connection refused")}
	client := newTestClient(dialer)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }
	client.SetTarget("Island", Target{Address: "127.0.0.1:27020"})

	if _, err := client.Execute(context.Background(), "Island", "x"); err == nil || errors.Is(err, ErrReconnectThrottled) {
		t.Fatalf("first Execute() error = %v, want dial error", err)
	}
	if _, err := client.Execute(context.Background(), "Island", "x"); !errors.Is(err, ErrReconnectThrottled) {
		t.Fatalf("second Execute() error = %v, want ErrReconnectThrottled", err)
	}
	if dialer.calls != 1 {
		t.Fatalf("dial calls = %d, want 1", dialer.calls)
	}

	now = now.Add(1500 * time.Millisecond)
	dialer.err = nil
	if _, err := client.Execute(context.Background(), "Island", "x"); err != nil {
		t.Fatalf("Execute() after delay error = %v", err)
	}
	if dialer.calls != 2 {
		t.Fatalf("dial calls = %d, want 2", dialer.calls)
	}
}

func TestClient_ExecFailureDropsConnection(t *testing.T) {
	dialer := &fakeDialer{}
	client := newTestClient(dialer)
	client.SetTarget("Island", Target{Address: "127.0.0.1:27020"})

	if _, err := client.Execute(context.Background(), "Island", "x"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	dialer.conns[0].execErr = errors.New("broken pipe")
	if _, err := client.Execute(context.Background(), "Island", "x"); err == nil {
		t.Fatalf("Execute() error = nil, want exec failure")
	}
	if !dialer.conns[0].closed {
		t.Fatalf("failed connection was not closed")
	}
	if _, err := client.Execute(context.Background(), "Island", "x"); err != nil {
		t.Fatalf("Execute() after redial error = %v", err)
	}
	if dialer.calls != 2 {
		t.Fatalf("dial calls = %d, want 2", dialer.calls)
	}
}

func TestClient_SetTargetChangeDropsConnection(t *testing.T) {
	dialer := &fakeDialer{}
	client := newTestClient(dialer)
	client.SetTarget("Island", Target{Address: "a:1"})
	if _, err := client.Execute(context.Background(), "Island", "x"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	client.SetTarget("Island", Target{Address: "a:1"})
	if dialer.conns[0].closed {
		t.Fatalf("unchanged target closed the connection")
	}
	client.SetTarget("Island", Target{Address: "b:2"})
	if !dialer.conns[0].closed {
		t.Fatalf("changed target kept the old connection")
	}
	client.RemoveTarget("Island")
	if _, err := client.Execute(context.Background(), "Island", "x"); !errors.Is(err, ErrUnknownServer) {
		t.Fatalf("Execute() after RemoveTarget error = %v, want ErrUnknownServer", err)
	}
}
