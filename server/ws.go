package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	storex "github.com/burgerhouse/orderchat/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type inboundFrame struct {
	Content string `json:"content"`
}

type outboundFrame struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

func messageFrame(sender storex.Sender, content string, ts time.Time) outboundFrame {
	return outboundFrame{Type: "message", Sender: string(sender), Content: content, Timestamp: ts}
}

// handleWS upgrades the connection and runs the read loop. One goroutine per
// connection; the session registry serializes handling when the same session
// id is connected twice.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = mintSessionID()
	}
	customerID, _ := strconv.ParseInt(c.Query("customer_id"), 10, 64)

	ctx := c.Request.Context()

	release := s.registry.acquire(sessionID)
	res, err := s.engine.Bootstrap(ctx, sessionID, customerID)
	release()
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("bootstrap failed")
		return
	}

	if err := conn.WriteJSON(outboundFrame{Type: "session", SessionID: sessionID}); err != nil {
		return
	}
	for _, m := range res.History {
		if err := conn.WriteJSON(messageFrame(m.Sender, m.Content, m.CreatedAt)); err != nil {
			return
		}
	}
	if res.Welcome != nil {
		if err := conn.WriteJSON(messageFrame(res.Welcome.Sender, res.Welcome.Content, res.Welcome.CreatedAt)); err != nil {
			return
		}
	}

	log.Info().Str("session_id", sessionID).Int64("conversation_id", res.Conversation.ID).Msg("session connected")

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket read failed")
			}
			return
		}
		if frame.Content == "" {
			continue
		}

		reply, err := s.handleSessionMessage(ctx, sessionID, frame.Content)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("message handling failed")
			reply = "Ops! Deu um probleminha aqui. Pode tentar de novo?"
		}
		if err := conn.WriteJSON(messageFrame(storex.SenderBot, reply, time.Now())); err != nil {
			return
		}
	}
}

func (s *Server) handleSessionMessage(ctx context.Context, sessionID, content string) (string, error) {
	release := s.registry.acquire(sessionID)
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.messageTimeout)
	defer cancel()
	return s.engine.HandleMessage(ctx, sessionID, content)
}
