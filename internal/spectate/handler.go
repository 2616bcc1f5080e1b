package spectate

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/bigbrainbot/internal/repository"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only feed
	},
}

// Server exposes the live feed and, when stores are configured, match
// history and the leaderboard.
type Server struct {
	hub     *Hub
	matches repository.MatchRepository
	cache   repository.MatchCache
}

// NewServer creates a Server. matches and cache may be nil.
func NewServer(hub *Hub, matches repository.MatchRepository, cache repository.MatchCache) *Server {
	return &Server{hub: hub, matches: matches, cache: cache}
}

// Routes returns the HTTP handler for the spectator endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.ServeWS)
	mux.HandleFunc("GET /matches", s.listMatches)
	mux.HandleFunc("GET /matches/{id}/frame", s.liveFrame)
	mux.HandleFunc("GET /leaderboard", s.leaderboard)
	return mux
}

// ServeWS handles GET /ws. An optional ?match= subscribes immediately.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Conn{
		conn: conn,
		addr: r.RemoteAddr,
		send: make(chan []byte, sendBufSize),
	}
	s.hub.Register(client)
	matchID := r.URL.Query().Get("match")
	if matchID != "" {
		s.hub.Subscribe(client, matchID)
	}

	welcome, _ := json.Marshal(Event{Type: EventConnected, MatchID: matchID, Data: map[string]any{}})
	client.send <- welcome

	go s.writePump(client)
	go s.readPump(client)

	log.Info().Str("addr", client.addr).Int("total", s.hub.ConnectionCount()).Msg("Spectator connected")
}

func (s *Server) readPump(c *Conn) {
	defer func() {
		s.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("addr", c.addr).Msg("Spectator disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("addr", c.addr).Msg("WebSocket unexpected close")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.MatchID == "" {
			continue
		}
		switch msg.Action {
		case "subscribe":
			s.hub.Subscribe(c, msg.MatchID)
		case "unsubscribe":
			s.hub.Unsubscribe(c, msg.MatchID)
		}
	}
}

func (s *Server) writePump(c *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		writeError(w, http.StatusNotFound, "match history not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, 200)
	}
	matches, err := s.matches.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("List matches failed")
		writeError(w, http.StatusInternalServerError, "list matches failed")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) liveFrame(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusNotFound, "live cache not configured")
		return
	}
	frame, err := s.cache.GetLiveFrame(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Error().Err(err).Msg("Get live frame failed")
		writeError(w, http.StatusInternalServerError, "get frame failed")
		return
	}
	if frame == nil {
		writeError(w, http.StatusNotFound, "no live frame")
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusNotFound, "live cache not configured")
		return
	}
	top, err := s.cache.Leaderboard(r.Context(), 10)
	if err != nil {
		log.Error().Err(err).Msg("Leaderboard failed")
		writeError(w, http.StatusInternalServerError, "leaderboard failed")
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
