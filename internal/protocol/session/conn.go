package session

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/danmuck/compcheck/internal/protocol"
	"github.com/danmuck/compcheck/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

// Conn is a client connection to one display server socket.
type Conn struct {
	path   string
	cfg    Config
	conn   *net.UnixConn
	reader *wire.Reader
	peer   string

	closeOnce sync.Once
	closeErr  error
}

// Open dials path and resolves the peer process name. A failed peer lookup
// leaves the name as protocol.UnknownPeer.
func Open(path string, cfg Config) (*Conn, error) {
	uc, err := dial(path, cfg)
	if err != nil {
		return nil, err
	}
	c := &Conn{
		path:   path,
		cfg:    cfg,
		conn:   uc,
		reader: wire.NewReader(uc),
	}
	name, err := LookupPeerName(uc)
	if err != nil {
		log.Debug().Str("path", path).Err(err).Msg("peer lookup failed")
		name = protocol.UnknownPeer
	}
	c.peer = name
	log.Debug().Str("path", path).Str("peer", c.peer).Msg("connected")
	return c, nil
}

func dial(path string, cfg Config) (*net.UnixConn, error) {
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := cfg.Backoff.Delay(attempt-1, rng)
			log.Debug().Str("path", path).Int("attempt", attempt).Dur("delay", delay).Msg("retrying connect")
			time.Sleep(delay)
		}
		nc, err := net.DialTimeout("unix", path, cfg.ConnectTimeout)
		if err != nil {
			lastErr = err
			continue
		}
		uc, ok := nc.(*net.UnixConn)
		if !ok {
			_ = nc.Close()
			return nil, fmt.Errorf("%w: %s: unexpected connection type %T", protocol.ErrConnect, path, nc)
		}
		return uc, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", protocol.ErrConnect, path, lastErr)
}

func (c *Conn) Path() string {
	return c.path
}

// PeerName is the compositor process name, or protocol.UnknownPeer.
func (c *Conn) PeerName() string {
	return c.peer
}

// Send writes b in full or fails with protocol.ErrSend.
func (c *Conn) Send(b []byte) error {
	if c.cfg.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return fmt.Errorf("%w: set deadline: %w", protocol.ErrSend, err)
		}
	}
	n, err := c.conn.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", protocol.ErrSend, c.path, err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: %s: short write %d of %d bytes", protocol.ErrSend, c.path, n, len(b))
	}
	return nil
}

// ReceiveNextMessage blocks until a complete frame is available. It wraps
// protocol.ErrClosed once the peer has closed and no frame remains.
func (c *Conn) ReceiveNextMessage() (wire.Message, error) {
	if c.cfg.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return wire.Message{}, fmt.Errorf("session: set read deadline: %w", err)
		}
	}
	return c.reader.Next()
}

// Close shuts down both directions and releases the socket. Repeated calls
// return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.conn.CloseWrite()
		_ = c.conn.CloseRead()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
