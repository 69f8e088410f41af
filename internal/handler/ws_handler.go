package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/middleware"
	"github.com/crackit/crackit-backend/internal/model"
	"github.com/crackit/crackit-backend/internal/service"
	"github.com/crackit/crackit-backend/internal/ws"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live exam session over WebSocket: the server
// pushes the countdown state every second and accepts session commands on
// the same connection.
type WSHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService: examService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/session/stream?token=...
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	userID := claims.UserID()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if _, err := h.examService.State(userID); err != nil {
		ws.WriteError(conn, "no active session")
		return
	}

	wsLog := h.log.With().Str("user_id", userID).Logger()
	wsLog.Info().Msg("Session stream connected")

	// gorilla/websocket allows one concurrent writer; the ticker goroutine
	// and the command loop share the connection through this lock.
	var writeMu sync.Mutex
	send := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}

	done := make(chan struct{})
	defer close(done)

	// Countdown push loop. When the session disappears mid-stream the
	// timer expired and auto-submit ran, so the stored result is relayed.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				view, err := h.examService.State(userID)
				if err != nil {
					if result, rerr := h.examService.Result(c.Request.Context(), userID); rerr == nil {
						send(ws.ResultEvent{Event: ws.EventResult, Result: result})
					}
					conn.Close()
					return
				}
				if err := send(ws.StateEvent{Event: ws.EventState, State: view.State}); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg ws.CommandRequest
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Session stream closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			send(ws.PongResponse{Event: ws.EventPong})
			continue
		case ws.ActionSubmit:
			result, err := h.examService.Submit(c.Request.Context(), userID)
			if err != nil {
				ws.WriteError(conn, "no active session")
				return
			}
			send(ws.ResultEvent{Event: ws.EventResult, Result: result})
			return
		case ws.ActionAnswer:
			h.examService.Answer(userID, model.AnswerRequest{Index: msg.Index, Option: msg.Option})
		case ws.ActionReview:
			h.examService.ToggleReview(userID, msg.Index)
		case ws.ActionGoTo:
			h.examService.GoTo(userID, msg.Index)
		case ws.ActionNext:
			h.examService.Next(userID)
		case ws.ActionPrev:
			h.examService.Prev(userID)
		case ws.ActionPalette:
			h.examService.TogglePalette(userID)
		default:
			ws.WriteError(conn, "unknown action")
			continue
		}

		if view, err := h.examService.State(userID); err == nil {
			send(ws.StateEvent{Event: ws.EventState, State: view.State})
		}
	}
}
