package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/models"
)

// ConnectionManager owns the single WebSocket to the simulation engine for
// the current session. Inbound messages are queued in arrival order and
// handed to the consumer one at a time through Poll or Run.
type ConnectionManager struct {
	config ConnectionConfig
	dialer *websocket.Dialer

	// connectMu serializes Connect and Disconnect so overlapping calls for
	// the same session cannot both dial. It is held across the dial; mu is not.
	connectMu sync.Mutex

	mu   sync.Mutex
	conn *Connection

	// activeID is the connection whose messages are still wanted. It survives
	// an engine-side close so queued ticks and the disconnect notice still
	// reach the consumer, and is cleared when the client closes the socket.
	activeID string

	inbound chan Message
}

// Connection is one open socket to the engine
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Manager   *ConnectionManager

	ConnectedAt time.Time

	done           chan struct{}
	closeOnce      sync.Once
	closedByClient atomic.Bool
}

// ConnectionConfig holds configuration for the engine socket
type ConnectionConfig struct {
	URL              string // base URL, the session id is appended as the last path segment
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
	InboundBuffer    int
	SendBuffer       int
}

// DefaultConnectionConfig returns default socket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		URL:              "ws://localhost:8000/ws/simulation",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   1 << 20, // full snapshots with 22 players fit comfortably
		ReadBufferSize:   4096,
		WriteBufferSize:  1024,
		InboundBuffer:    1024,
		SendBuffer:       16,
	}
}

// NewConnectionManager creates a manager with no open socket
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
		},
		inbound: make(chan Message, config.InboundBuffer),
	}
}

// Connect opens the socket for sessionID. Calling it again for the session
// that is already open is a no-op; a different session replaces the old socket.
func (cm *ConnectionManager) Connect(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}

	cm.connectMu.Lock()
	defer cm.connectMu.Unlock()

	cm.mu.Lock()
	if cm.conn != nil && cm.conn.SessionID == sessionID && cm.conn.isOpen() {
		cm.mu.Unlock()
		log.Debug().Str("session_id", sessionID).Msg("already connected, ignoring connect")
		return nil
	}
	previous := cm.conn
	cm.conn = nil
	cm.activeID = ""
	cm.mu.Unlock()

	if previous != nil {
		previous.close()
		cm.discardPending()
	}

	target, err := cm.sessionURL(sessionID)
	if err != nil {
		return err
	}

	ws, _, err := cm.dialer.DialContext(ctx, target, nil)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("url", target).Msg("failed to open engine socket")
		select {
		case cm.inbound <- Message{
			SessionID:  sessionID,
			Type:       MessageTypeDisconnected,
			Error:      fmt.Sprintf("failed to connect: %v", err),
			ReceivedAt: time.Now(),
		}:
		default:
			log.Warn().Str("session_id", sessionID).Msg("inbound queue full, dropping connect failure notice")
		}
		return fmt.Errorf("dial engine: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Conn:        ws,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
		done:        make(chan struct{}),
	}

	cm.mu.Lock()
	cm.conn = connection
	cm.activeID = connection.ID
	cm.mu.Unlock()

	connection.deliver(Message{Type: MessageTypeConnected})

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("session_id", sessionID).
		Msg("engine socket connected")

	return nil
}

// Disconnect closes the socket and discards any messages not yet consumed.
// It is safe to call when nothing is connected.
func (cm *ConnectionManager) Disconnect() {
	cm.connectMu.Lock()
	defer cm.connectMu.Unlock()

	cm.mu.Lock()
	c := cm.conn
	cm.conn = nil
	cm.activeID = ""
	cm.mu.Unlock()

	if c == nil {
		cm.discardPending()
		return
	}

	c.close()
	dropped := cm.discardPending()

	log.Info().
		Str("connection_id", c.ID).
		Str("session_id", c.SessionID).
		Int("discarded", dropped).
		Msg("engine socket disconnected")
}

// IsConnected reports whether a socket is currently open
func (cm *ConnectionManager) IsConnected() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.conn != nil && cm.conn.isOpen()
}

// SessionID returns the session of the open socket, if any
func (cm *ConnectionManager) SessionID() string {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.conn == nil {
		return ""
	}
	return cm.conn.SessionID
}

// SendCommand sends a control command to the engine. Commands issued while
// the socket is not open are dropped, not queued; the return value reports
// whether the command was accepted for sending.
func (cm *ConnectionManager) SendCommand(cmd models.CommandType) bool {
	cm.mu.Lock()
	c := cm.conn
	cm.mu.Unlock()

	if c == nil || !c.isOpen() {
		log.Debug().Str("command", string(cmd)).Msg("socket not open, dropping command")
		return false
	}

	data, err := json.Marshal(OutboundCommand{Type: cmd})
	if err != nil {
		log.Error().Err(err).Str("command", string(cmd)).Msg("failed to marshal command")
		return false
	}

	select {
	case c.Send <- data:
		log.Debug().Str("command", string(cmd)).Str("session_id", c.SessionID).Msg("command queued")
		return true
	case <-c.done:
		return false
	default:
		log.Warn().Str("command", string(cmd)).Msg("send buffer full, dropping command")
		return false
	}
}

// Poll returns every message that has arrived since the last call, in order,
// without blocking. Messages from a replaced or closed socket are skipped.
func (cm *ConnectionManager) Poll() []Message {
	var out []Message
	for {
		select {
		case msg := <-cm.inbound:
			if cm.current(msg) {
				out = append(out, msg)
			}
		default:
			return out
		}
	}
}

// Run hands messages to handle one at a time until ctx is cancelled.
func (cm *ConnectionManager) Run(ctx context.Context, handle func(Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cm.inbound:
			if cm.current(msg) {
				handle(msg)
			}
		}
	}
}

// current reports whether msg should reach the consumer. Dial failures
// carry no connection id and are always delivered.
func (cm *ConnectionManager) current(msg Message) bool {
	if msg.ConnectionID == "" {
		return true
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return msg.ConnectionID == cm.activeID
}

func (cm *ConnectionManager) discardPending() int {
	dropped := 0
	for {
		select {
		case <-cm.inbound:
			dropped++
		default:
			return dropped
		}
	}
}

func (cm *ConnectionManager) sessionURL(sessionID string) (string, error) {
	base, err := url.Parse(cm.config.URL)
	if err != nil {
		return "", fmt.Errorf("parse engine url: %w", err)
	}
	return base.JoinPath(sessionID).String(), nil
}

func (c *Connection) isOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// close tears the socket down from the client side
func (c *Connection) close() {
	c.closedByClient.Store(true)
	c.shutdown()
}

func (c *Connection) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		deadline := time.Now().Add(time.Second)
		_ = c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.Conn.Close()
	})
}

// deliver queues msg for the consumer. It blocks rather than drop a message,
// and gives up only once the connection is closed.
func (c *Connection) deliver(msg Message) bool {
	msg.ConnectionID = c.ID
	msg.SessionID = c.SessionID
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now()
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Manager.inbound <- msg:
		return true
	case <-c.done:
		return false
	}
}

// writePump handles sending commands and pings on the socket
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write command to engine socket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump decodes engine messages and queues them for the consumer
func (c *Connection) readPump() {
	defer c.shutdown()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if c.closedByClient.Load() {
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Str("session_id", c.SessionID).
					Msg("unexpected engine socket close")
			} else {
				log.Info().Err(err).Str("connection_id", c.ID).Msg("engine socket closed")
			}
			c.Manager.release(c)
			c.deliver(Message{Type: MessageTypeDisconnected, Error: fmt.Sprintf("connection lost: %v", err)})
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))

		msg, err := ParseMessage(data)
		if err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", c.ID).
				Bytes("message", data).
				Msg("ignoring undecodable engine message")
			continue
		}

		if msg.Type == MessageTypeTick && msg.Patch != nil && msg.Patch.Tick != nil {
			log.Debug().Int("tick", *msg.Patch.Tick).Str("session_id", c.SessionID).Msg("tick received")
		}

		if !c.deliver(msg) {
			return
		}
	}
}

// release forgets c if it is still the current connection, so that the
// disconnect notice is delivered and later commands are dropped.
func (cm *ConnectionManager) release(c *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.conn == c {
		cm.conn = nil
	}
}
