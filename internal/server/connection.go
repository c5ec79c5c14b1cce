package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/boardforbots/protocol"
)

// IncomingMove is a move answer received from a bot, tagged with the
// request it answers.
type IncomingMove struct {
	RequestID string
	Action    int
}

// Connection wraps one bot's WebSocket connection. Outgoing messages are
// queued on a buffered channel and flushed by the write pump; incoming
// moves are routed to whoever is waiting on Moves.
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	moves     chan IncomingMove
	name      string
	logger    *log.Logger
	server    *Server
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper for an upgraded socket.
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *protocol.Message, 256),
		moves:  make(chan IncomingMove, 1),
		logger: logger.WithPrefix("conn"),
		server: server,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection. The write pump drains queued messages
// before shutting the socket, so frames sent just before Close still
// reach the peer.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
	})
	return nil
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *protocol.Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Moves returns the channel of move answers received from the bot.
func (c *Connection) Moves() <-chan IncomingMove {
	return c.moves
}

// Done is closed when the connection shuts down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SetName associates this connection with a joined bot.
func (c *Connection) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Name returns the joined bot's name, or empty before joining.
func (c *Connection) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

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

		var msg protocol.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client. It owns the socket:
// it exits once the send channel is closed and drained, and closes the
// socket on the way out, which also unblocks the read pump.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
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
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type, "bot", c.Name())

	switch msg.Type {
	case protocol.MessageTypeJoin:
		var data protocol.JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join data")
			return
		}
		c.handleJoin(data)

	case protocol.MessageTypeMove:
		var data protocol.MoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse move data")
			return
		}
		c.handleMove(msg.RequestID, data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := protocol.NewMessage(protocol.MessageTypeError, protocol.ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleJoin(data protocol.JoinData) {
	c.logger.Info("Join request", "botName", data.BotName, "game", data.Game)

	if c.Name() != "" {
		c.sendError("already_joined", "This connection already joined as "+c.Name())
		return
	}

	if err := c.server.admit(c, data); err != nil {
		c.sendError("join_failed", err.Error())
	}
}

func (c *Connection) handleMove(requestID string, data protocol.MoveData) {
	if c.Name() == "" {
		c.sendError("not_joined", "Must join before moving")
		return
	}

	select {
	case c.moves <- IncomingMove{RequestID: requestID, Action: data.Action}:
	default:
		c.sendError("unexpected_move", "No pending move request")
	}
}
