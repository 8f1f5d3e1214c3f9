package refresh

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// Requester sends refresh requests to a scanner's listener.
// Sends are fire-and-forget: the caller learns whether the datagram left
// this host, never whether the scanner acted on it.
type Requester struct {
	conn *net.UDPConn
}

// NewRequester connects a Requester to the listener at addr.
func NewRequester(addr string) (*Requester, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial refresh listener: %w", err)
	}
	return &Requester{conn: conn}, nil
}

// Request asks for one entity to be re-fetched. kind is one of
// model.KindPost, model.KindReply, or model.KindUser.
func (r *Requester) Request(kind, id string) error {
	req := model.RefreshRequest{Kind: kind, ID: id}
	if err := req.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}
	if _, err := r.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send refresh request: %w", err)
	}
	return nil
}

// Close releases the socket.
func (r *Requester) Close() error {
	return r.conn.Close()
}
