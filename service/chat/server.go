package chat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketchat/logger"
)

type ServerConf struct {
	Port           int
	AllowedOrigins []string // empty allows all origins
}

// Server owns the HTTP surface: health route and the websocket upgrade
// endpoint. Everything behind the upgrade is Service territory.
type Server struct {
	conf ServerConf
	svc  *Service
}

func NewServer(conf ServerConf, svc *Service) *Server {
	return &Server{conf: conf, svc: svc}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": s.svc.reg.Len()})
	})
	r.GET("/ws", s.HandleWS)
	return r
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.conf.Port)
	logger.Infof("[server] listening on %s", addr)
	return s.Router().Run(addr)
}

// handleFrame routes one validated inbound frame to its handler. Requests
// that carried an ackId get their reply (or structured error) as an ack
// frame; handlers whose failures are swallowed simply never answer.
func (s *Server) handleFrame(ctx context.Context, client *Client, env Envelope) {
	switch env.Event {
	case EvAuthenticate:
		var req AuthenticateRequest
		if !s.decode(client, env, &req) {
			return
		}
		ack, _ := s.svc.Authenticate(ctx, client, req)
		if ack != nil && env.AckID != "" {
			client.EmitAck(env.AckID, ack)
		}

	case EvSendMessage:
		var req SendMessageRequest
		if !s.decode(client, env, &req) {
			return
		}
		ack, _ := s.svc.SendMessage(ctx, req)
		if ack != nil && env.AckID != "" {
			client.EmitAck(env.AckID, ack)
		}

	case EvMessageSeen:
		var req MessageSeenRequest
		if !s.decode(client, env, &req) {
			return
		}
		s.svc.MarkSeen(ctx, req)

	case EvMakeOffer:
		var req MakeOfferRequest
		if !s.decode(client, env, &req) {
			return
		}
		ack, errAck := s.svc.MakeOffer(ctx, client, req)
		s.ackOffer(client, env.AckID, ack, errAck)

	case EvRespondOffer:
		var req RespondOfferRequest
		if !s.decode(client, env, &req) {
			return
		}
		ack, errAck := s.svc.RespondOffer(ctx, client, req)
		s.ackOffer(client, env.AckID, ack, errAck)

	case EvTyping:
		var req TypingRequest
		if !s.decode(client, env, &req) {
			return
		}
		s.svc.Typing(ctx, req)

	default:
		logger.Warnf("[ws] unknown event=%q conn=%s", env.Event, client.ConnID())
	}
}

// decode maps and validates the frame payload. Malformed frames never reach
// a handler; with an ackId present the client hears why, otherwise the frame
// is logged and dropped.
func (s *Server) decode(client *Client, env Envelope, out interface{ Validate() error }) bool {
	if err := Decode(env.Data, out); err != nil {
		s.rejectFrame(client, env, err)
		return false
	}
	if err := out.Validate(); err != nil {
		s.rejectFrame(client, env, err)
		return false
	}
	return true
}

func (s *Server) rejectFrame(client *Client, env Envelope, err error) {
	logger.Warnf("[ws] invalid %s frame conn=%s: %v", env.Event, client.ConnID(), err)
	if env.AckID != "" {
		client.EmitAck(env.AckID, ErrorAck{Status: "error", Error: err.Error()})
	}
}

func (s *Server) ackOffer(client *Client, ackID string, ack *MessageAck, errAck *ErrorAck) {
	if ackID == "" {
		return
	}
	if errAck != nil {
		client.EmitAck(ackID, errAck)
		return
	}
	if ack != nil {
		client.EmitAck(ackID, ack)
	}
}
