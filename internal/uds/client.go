package uds

import (
	"fmt"
	"net"
	"time"
)

const (
	defaultRequestTimeout = 30 * time.Second
	dialRetryDelay        = 50 * time.Millisecond
)

// Client performs one framed request/response exchange per connection, so a
// single Client is safe for concurrent use.
type Client struct {
	socketPath  string
	timeout     time.Duration
	dialRetries int
}

// ClientOption adjusts a Client at construction.
type ClientOption func(*Client)

// WithTimeout bounds the whole exchange: dial, write and read.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDialRetries retries a failed dial up to n times before giving up,
// riding out the window where "inkwell serve" holds the lock but is not yet
// accepting connections.
func WithDialRetries(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.dialRetries = n
		}
	}
}

func NewClient(socketPath string, opts ...ClientOption) *Client {
	c := &Client{
		socketPath: socketPath,
		timeout:    defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) dial(deadline time.Time) (net.Conn, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		conn, err := net.DialTimeout("unix", c.socketPath, time.Until(deadline))
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt >= c.dialRetries || time.Now().Add(dialRetryDelay).After(deadline) {
			break
		}
		time.Sleep(dialRetryDelay)
	}
	return nil, fmt.Errorf(
		"failed to connect to daemon at %s: %w\n"+
			"Is the daemon running? Start it with: inkwell serve",
		c.socketPath, lastErr,
	)
}

// Send dials the daemon socket and performs one framed round trip.
func (c *Client) Send(req *Request) (*Response, error) {
	deadline := time.Now().Add(c.timeout)
	conn, err := c.dial(deadline)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(deadline)

	if err := WriteFrame(conn, req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := ReadFrame(conn, &resp); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &resp, nil
}

// SendCommand builds a protocol request for command and sends it.
func (c *Client) SendCommand(command string, params any) (*Response, error) {
	req, err := NewRequest(command, params)
	if err != nil {
		return nil, err
	}
	return c.Send(req)
}
