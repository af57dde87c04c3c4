package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marketchat/logger"
)

const (
	sendQueueSize = 256
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 30 * time.Second
)

// outFrame is the outbound wire frame.
type outFrame struct {
	Event string `json:"event"`
	AckID string `json:"ackId,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Client is one websocket attachment. All writes go through the send queue
// and a single writer goroutine; handlers never touch the socket directly.
type Client struct {
	connID string
	ws     *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(connID string, ws *websocket.Conn) *Client {
	return &Client{
		connID: connID,
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ConnID() string { return c.connID }

// Emit queues a one-way event. Best-effort: a full queue drops the frame
// with a log line rather than blocking a handler.
func (c *Client) Emit(event string, data any) {
	c.queue(outFrame{Event: event, Data: data})
}

// EmitAck answers a request frame that carried an ackId.
func (c *Client) EmitAck(ackID string, data any) {
	c.queue(outFrame{Event: EvAck, AckID: ackID, Data: data})
}

func (c *Client) queue(f outFrame) {
	raw, err := json.Marshal(f)
	if err != nil {
		logger.Errorf("[ws] marshal frame event=%s conn=%s: %v", f.Event, c.connID, err)
		return
	}
	select {
	case c.send <- raw:
	case <-c.done:
	default:
		logger.Warnf("[ws] send queue full, dropping event=%s conn=%s", f.Event, c.connID)
	}
}

// Close stops the writer goroutine, which closes the socket on its way out.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with pings. Run it on its own goroutine; it owns all writes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case raw := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				logger.Warnf("[ws] write conn=%s: %v", c.connID, err)
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
