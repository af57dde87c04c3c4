package chat

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"marketchat/logger"
)

const maxFrameSize = 1 << 20 // 1MB

// HandleWS upgrades the request and runs the connection's read loop. Each
// frame is handled to completion on this goroutine; the paired writer
// goroutine owns all socket writes.
func (s *Server) HandleWS(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed: %v", err)
		return
	}

	connID := uuid.NewString()
	client := NewClient(connID, ws)
	go client.WritePump()
	logger.Infof("[ws] connected conn=%s remote=%s", connID, ws.RemoteAddr())

	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", connID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s", connID)
			} else {
				logger.Infof("[ws] read err conn=%s: %v", connID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var env Envelope
		if perr := json.Unmarshal(data, &env); perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[ws] bad frame conn=%s err=%v sample=%q", connID, perr, sample)
			continue
		}
		if env.Event == "" {
			continue
		}

		s.handleFrame(ctx, client, env)
	}

	// The request context dies with the connection; presence teardown must
	// still run, so give it its own short context.
	dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	s.svc.Disconnect(dctx, connID)
	cancel()
	client.Close()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.conf.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.conf.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
