package refresh

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// defaultQueueSize bounds how many requests can wait for the scanner.
const defaultQueueSize = 64

// maxDatagramSize is the largest request datagram the listener reads.
// A request is a tiny JSON object; anything bigger is garbage.
const maxDatagramSize = 512

// Listener receives refresh requests as UDP datagrams and queues them for
// the scanner. Delivery is at-most-once: a malformed datagram is dropped,
// and so is a valid one that arrives while the queue is full. A refresh
// is a hint, not a command, and the next scan pass covers anything lost.
type Listener struct {
	// conn is the bound UDP socket.
	conn *net.UDPConn

	// queue buffers decoded requests for the consumer.
	queue chan model.RefreshRequest

	// logger records dropped datagrams.
	logger *slog.Logger
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithListenerLogger sets the listener's logger.
func WithListenerLogger(logger *slog.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// WithQueueSize overrides the pending-request queue capacity.
func WithQueueSize(n int) ListenerOption {
	return func(l *Listener) {
		l.queue = make(chan model.RefreshRequest, n)
	}
}

// NewListener binds a UDP socket on addr and starts receiving requests.
// Close releases the socket and closes the request channel.
func NewListener(addr string, opts ...ListenerOption) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind refresh listener: %w", err)
	}

	l := &Listener{
		conn:   conn,
		queue:  make(chan model.RefreshRequest, defaultQueueSize),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.receive()
	return l, nil
}

// Requests returns the channel pending requests are delivered on.
// The channel closes when the listener is closed.
func (l *Listener) Requests() <-chan model.RefreshRequest {
	return l.queue
}

// Addr returns the bound socket address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Close releases the socket. Pending queued requests stay readable until
// the closed channel drains.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// receive reads datagrams until the socket closes.
func (l *Listener) receive() {
	defer close(l.queue)

	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			// Socket closed, or unrecoverable; either way the listener
			// is done.
			return
		}

		var req model.RefreshRequest
		if err := json.Unmarshal(buf[:n], &req); err != nil {
			l.logger.Debug("dropping undecodable refresh datagram", "error", err)
			continue
		}
		if err := req.Validate(); err != nil {
			l.logger.Debug("dropping invalid refresh request", "error", err)
			continue
		}

		select {
		case l.queue <- req:
		default:
			l.logger.Debug("refresh queue full, dropping request", "kind", req.Kind, "id", req.ID)
		}
	}
}
