// Package ws provides the WebSocket endpoint live viewers attach to. Each
// connection holds one event bus subscription; the write pump drains it onto
// the socket and the read pump only watches for the peer going away. Closing
// the socket never affects the underlying campaign.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/engine"
	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/eventbus"
)

// Config tunes connection behavior.
type Config struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
}

// Server handles viewer WebSocket connections.
type Server struct {
	cfg      Config
	bus      *eventbus.Bus
	engine   *engine.Engine
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg Config, bus *eventbus.Bus, eng *engine.Engine) *Server {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 65536
	}
	return &Server{
		cfg:    cfg,
		bus:    bus,
		engine: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the stream route with the echo server.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/:campaign_id", s.HandleStream)
}

// HandleStream upgrades the connection and streams the campaign's events.
// GET /ws/:campaign_id
func (s *Server) HandleStream(c echo.Context) error {
	campaignID := c.Param("campaign_id")

	if _, err := s.engine.Snapshot(campaignID); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ERROR: failed to upgrade WebSocket: %v", err)
		return err
	}

	sub := s.bus.Subscribe(campaignID)
	log.Printf("INFO: viewer %s attached to campaign %s", sub.ID, campaignID)

	go s.writePump(conn, sub)
	go s.readPump(conn, sub)
	return nil
}

// writePump drains the subscription onto the socket with keepalive pings.
// When the subscription channel closes the stream is over: either the
// campaign reached its terminal event or the viewer fell behind.
func (s *Server) writePump(conn *websocket.Conn, sub *eventbus.Subscription) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				if sub.Lost() {
					// Viewer could not keep up; tell it why before closing.
					msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream lost: subscriber too slow")
					conn.WriteMessage(websocket.CloseMessage, msg)
				} else {
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				}
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("ERROR: failed to marshal event %s: %v", ev.EventID, err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("WARN: failed to write to viewer %s: %v", sub.ID, err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes client frames until the peer disconnects, then detaches
// the subscription.
func (s *Server) readPump(conn *websocket.Conn, sub *eventbus.Subscription) {
	defer func() {
		s.bus.Unsubscribe(sub)
		conn.Close()
		log.Printf("INFO: viewer %s detached from campaign %s", sub.ID, sub.CampaignID)
	}()

	conn.SetReadLimit(s.cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: WebSocket error: %v", err)
			}
			return
		}
	}
}
