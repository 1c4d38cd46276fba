package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket source behavior.
type WSConfig struct {
	// HandshakeTimeout is the timeout for the opening handshake.
	HandshakeTimeout time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing control frames.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// WSSource streams JSON event envelopes from a WebSocket endpoint, one
// envelope per text message. The upstream is trusted to deliver events
// in order, exactly once; the runner still validates ordering.
type WSSource struct {
	endpoint string
	config   WSConfig
}

// NewWSSource creates a WebSocket-backed event source.
func NewWSSource(endpoint string, config *WSConfig) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	return &WSSource{endpoint: endpoint, config: cfg}
}

// Subscribe connects and streams decoded events. The channel is closed
// when the connection drops or the context is cancelled.
func (s *WSSource) Subscribe(ctx context.Context) (<-chan Item, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	ch := make(chan Item)

	// readDone ends the helper goroutines when the read loop exits on
	// its own, before any context cancellation.
	readDone := make(chan struct{})

	// Close the connection when the context is cancelled so the read
	// loop unblocks.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	go func() {
		ticker := time.NewTicker(s.config.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-readDone:
				return
			case <-ticker.C:
				deadline := time.Now().Add(s.config.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		defer close(ch)
		defer conn.Close()
		defer close(readDone)

		for {
			if err := conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
				return
			}

			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					select {
					case ch <- Item{Err: fmt.Errorf("websocket read: %w", err)}:
					case <-ctx.Done():
					}
				}
				return
			}

			event, err := DecodeEnvelope(data)
			if err != nil {
				select {
				case ch <- Item{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case ch <- Item{Event: event}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
