// Package rcon sends console commands to game servers over Source RCON,
// keeping one connection per server.
package rcon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	lrcon "github.com/leighmacdonald/rcon/rcon"

	"asa-manager/internal/logging"
)

const (
	defaultDialTimeout      = 5 * time.Second
	defaultReconnectDelay   = 2 * time.Second
	defaultReconnectCeiling = 2 * time.Minute
)

var (
	ErrUnknownServer      = errors.New("no rcon target for server")
	ErrReconnectThrottled = errors.New("rcon reconnect throttled")
)

type Target struct {
	Address  string
	Password string
}

// Conn is the part of an RCON session the client uses.
type Conn interface {
	Exec(command string) (string, error)
	Close() error
}

type DialFunc func(ctx context.Context, address string, password string, timeout time.Duration) (Conn, error)

type Options struct {
	DialTimeout      time.Duration
	ReconnectDelay   time.Duration
	ReconnectCeiling time.Duration
	// Dial replaces the network dialer, mainly for tests.
	Dial DialFunc
}

type Client struct {
	opts   Options
	logger *logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	servers map[string]*serverConn
}

type serverConn struct {
	mu        sync.Mutex
	target    Target
	conn      Conn
	retry     *backoff.ExponentialBackOff
	notBefore time.Time
}

func NewClient(opts Options, logger *logging.Logger) *Client {
	if logger == nil {
		panic("rcon.NewClient: logger must not be nil")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if opts.ReconnectCeiling <= 0 {
		opts.ReconnectCeiling = defaultReconnectCeiling
	}
	if opts.Dial == nil {
		opts.Dial = dialRemoteConsole
	}
	return &Client{
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		servers: map[string]*serverConn{},
	}
}

func dialRemoteConsole(ctx context.Context, address string, password string, timeout time.Duration) (Conn, error) {
	conn, err := lrcon.Dial(ctx, address, password, timeout)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// SetTarget registers or replaces the RCON endpoint of a server. A changed
// target drops the existing connection.
func (c *Client) SetTarget(server string, target Target) {
	c.mu.Lock()
	existing, ok := c.servers[server]
	if !ok {
		c.servers[server] = &serverConn{target: target, retry: c.newRetry()}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	existing.mu.Lock()
	defer existing.mu.Unlock()
	if existing.target == target {
		return
	}
	existing.target = target
	existing.dropLocked()
	existing.retry.Reset()
	existing.notBefore = time.Time{}
}

func (c *Client) RemoveTarget(server string) {
	c.mu.Lock()
	existing, ok := c.servers[server]
	delete(c.servers, server)
	c.mu.Unlock()
	if !ok {
		return
	}
	existing.mu.Lock()
	existing.dropLocked()
	existing.mu.Unlock()
}

// Execute runs command on server, dialing if needed. After a failed dial the
// server is not redialed until its backoff delay has passed.
func (c *Client) Execute(ctx context.Context, server string, command string) (string, error) {
	c.mu.Lock()
	sc, ok := c.servers[server]
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%s: %w", server, ErrUnknownServer)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.conn == nil {
		if err := c.connectLocked(ctx, server, sc); err != nil {
			return "", err
		}
	}

	resp, err := sc.conn.Exec(command)
	if err != nil {
		sc.dropLocked()
		return "", fmt.Errorf("rcon exec on %s: %w", server, err)
	}
	return strings.TrimSpace(resp), nil
}

func (c *Client) connectLocked(ctx context.Context, server string, sc *serverConn) error {
	now := c.now()
	if now.Before(sc.notBefore) {
		return fmt.Errorf("%s: %w until %s", server, ErrReconnectThrottled, sc.notBefore.Format(time.TimeOnly))
	}
	if strings.TrimSpace(sc.target.Address) == "" {
		return fmt.Errorf("%s: rcon address is empty", server)
	}

	conn, err := c.opts.Dial(ctx, sc.target.Address, sc.target.Password, c.opts.DialTimeout)
	if err != nil {
		wait := sc.retry.NextBackOff()
		sc.notBefore = now.Add(wait)
		c.logger.Warn("rcon connect failed",
			logging.Field("server", server),
			logging.Field("address", sc.target.Address),
			logging.Field("next_attempt", wait.String()),
			logging.Field("error", err),
		)
		return fmt.Errorf("rcon connect to %s: %w", server, err)
	}

	sc.conn = conn
	sc.retry.Reset()
	sc.notBefore = time.Time{}
	c.logger.Info("rcon connected", logging.Field("server", server), logging.Field("address", sc.target.Address))
	return nil
}

func (c *Client) newRetry() *backoff.ExponentialBackOff {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = c.opts.ReconnectDelay
	retry.MaxInterval = c.opts.ReconnectCeiling
	retry.RandomizationFactor = 0
	retry.Reset()
	return retry
}

func (sc *serverConn) dropLocked() {
	if sc.conn == nil {
		return
	}
	_ = sc.conn.Close()
	sc.conn = nil
}

// Close drops every open connection. Targets are kept.
func (c *Client) Close() error {
	c.mu.Lock()
	servers := make([]*serverConn, 0, len(c.servers))
	for _, sc := range c.servers {
		servers = append(servers, sc)
	}
	c.mu.Unlock()

	for _, sc := range servers {
		sc.mu.Lock()
		sc.dropLocked()
		sc.mu.Unlock()
	}
	return nil
}
