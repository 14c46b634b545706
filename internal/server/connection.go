package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/MrOmnes/iRonWheel/internal/round"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Bound on a single spin resolution or reset triggered by this client
	commandTimeout = 30 * time.Second
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents one websocket client: a wheel display page or the
// operator's admin page. The protocol does not distinguish them.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	server    *Server
}

// NewConnection creates a new connection wrapper.
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		server: server,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown.
			c.logger.Debug("attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("connection send buffer full, closing connection")
		_ = c.Close() // ignore close errors
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeSpin:
		c.handleSpin()

	case MessageTypeSpinResult:
		var data SpinResultData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse spin result data")
			return
		}
		c.handleSpinResult(data)

	case MessageTypeReset:
		c.handleReset()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// handleSpin relays the operator's spin trigger to every connected client.
// The wheel animation runs client-side; the landed segment comes back later
// as a spinResult.
func (c *Connection) handleSpin() {
	msg, err := NewMessage(MessageTypeSpin, nil)
	if err != nil {
		c.logger.Error("failed to create spin message", "error", err)
		return
	}
	c.server.Broadcast(msg)
}

func (c *Connection) handleSpinResult(data SpinResultData) {
	if c.server.rounds == nil {
		c.sendError("service_unavailable", "Round controller not available")
		return
	}

	winning, ok := round.ParseSegment(data.Segment.Text)
	if !ok {
		c.sendError("invalid_segment", "Unknown segment: "+data.Segment.Text)
		return
	}

	c.logger.Info("spin result received", "segment", winning.String())

	ctx, cancel := context.WithTimeout(c.server.ctx, commandTimeout)
	defer cancel()

	outcome, err := c.server.rounds.Spin(ctx, winning)
	if err != nil {
		c.logger.Error("spin failed", "segment", winning.String(), "error", err)
		c.sendError("spin_failed", err.Error())
		return
	}

	if c.server.monitor != nil {
		c.server.monitor.RoundResolved(outcome)
	}
}

func (c *Connection) handleReset() {
	if c.server.rounds == nil {
		c.sendError("service_unavailable", "Round controller not available")
		return
	}

	ctx, cancel := context.WithTimeout(c.server.ctx, commandTimeout)
	defer cancel()
	c.server.rounds.Reset(ctx)
}

// sendError sends an error message to the client.
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // ignore send errors during error handling
}
