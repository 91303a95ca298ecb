// Package socket serves the game over WebSocket. Each connection runs its own
// game; the browser sends commands and pointer positions and receives frames.
package socket

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/crystals/internal/loop"
	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/loop/server"
	"github.com/tomz197/crystals/internal/object"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Logger *log.Logger
	// Rand returns the spawn source for a new game. Nil uses a seeded default.
	Rand func() object.Rand
}

// Handler upgrades requests and runs one game per connection.
type Handler struct {
	hub      server.Registry
	logger   *log.Logger
	newRand  func() object.Rand
	upgrader websocket.Upgrader
}

// NewHandler creates a handler that registers sessions with hub.
func NewHandler(hub server.Registry, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		hub:     hub,
		logger:  logger,
		newRand: cfg.Rand,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "web"
	}

	s := h.newSession(conn, name)
	h.logger.Info("Web session started", "id", s.handle.ID, "name", name, "remote", r.RemoteAddr)
	s.run()
	h.logger.Info("Web session ended", "id", s.handle.ID, "score", s.game.Session().Score)
}

// session is one browser connection. Only run writes to the connection.
type session struct {
	conn   *websocket.Conn
	hub    server.Registry
	handle *server.Handle
	logger *log.Logger

	game  *loop.Game
	scene *loop.HeadlessScene

	inbox chan clientMessage
	done  chan struct{}

	events    []eventJSON // Accumulated since the last frame
	lastScore int
}

func (h *Handler) newSession(conn *websocket.Conn, name string) *session {
	handle := h.hub.Register(name)
	logger := h.logger.With("session", handle.ID)

	opts := []loop.Option{loop.WithLogger(logger)}
	if h.newRand != nil {
		opts = append(opts, loop.WithRand(h.newRand()))
	}
	scene := loop.NewHeadlessScene()

	return &session{
		conn:   conn,
		hub:    h.hub,
		handle: handle,
		logger: logger,
		game:   loop.NewGame(scene, opts...),
		scene:  scene,
		inbox:  make(chan clientMessage, 64),
		done:   make(chan struct{}),
	}
}

func (s *session) run() {
	defer func() {
		close(s.done)
		s.hub.Unregister(s.handle.ID)
		s.conn.Close()
	}()

	go s.readPump()

	ticker := time.NewTicker(config.ClientTargetFrameTime)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	s.collect(s.game.Tick(0))
	if err := s.writeFrame(); err != nil {
		return
	}
	lastTime := time.Now()
	lastFrame := lastTime

	for {
		select {
		case msg, ok := <-s.inbox:
			if !ok {
				return
			}
			s.apply(msg)

		case ev, ok := <-s.handle.EventsCh:
			if !ok || ev.Type == server.EventServerShutdown {
				s.writeShutdown()
				return
			}

		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case now := <-ticker.C:
			s.collect(s.game.Tick(now.Sub(lastTime)))
			lastTime = now
			s.report()

			if now.Sub(lastFrame) >= config.WebFrameTime-config.ClientTargetFrameTime/2 {
				if err := s.writeFrame(); err != nil {
					s.logger.Debug("Write failed", "err", err)
					return
				}
				lastFrame = now
			}
		}
	}
}

// readPump decodes browser messages into the inbox until the connection fails.
func (s *session) readPump() {
	defer close(s.inbox)

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("Read failed", "err", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("Discarding malformed message", "err", err)
			continue
		}

		select {
		case s.inbox <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *session) apply(msg clientMessage) {
	if msg.Type == "pointer" {
		s.game.SetPointer(msg.X, msg.Y)
		return
	}
	cmd, ok := loop.ParseCommand(msg.Type)
	if !ok {
		s.logger.Debug("Unknown message", "type", msg.Type)
		return
	}
	s.game.Handle(cmd)
}

func (s *session) collect(events []loop.Event) {
	for _, e := range events {
		s.events = append(s.events, encodeEvent(e))
	}
}

// report publishes score changes to the hub leaderboard.
func (s *session) report() {
	sess := s.game.Session()
	if sess.Score == s.lastScore {
		return
	}
	s.lastScore = sess.Score
	s.hub.Report(s.handle.ID, sess.Score, sess.Level)
}

func (s *session) writeFrame() error {
	msg := frameMessage{
		Type:     "frame",
		Snapshot: encodeSnapshot(s.game.Snapshot()),
		Events:   s.events,
		Craft: craftJSON{
			Position: toVec3(s.scene.Craft.Position),
			Rotation: toVec3(s.scene.Craft.Rotation),
			Visible:  s.scene.Craft.Visible,
		},
		Entities: make([]entityJSON, 0, 32),
	}
	if msg.Events == nil {
		msg.Events = []eventJSON{}
	}
	for c := range s.game.Collectibles() {
		msg.Entities = append(msg.Entities, encodeEntity(c))
	}
	for h := range s.game.Hazards() {
		msg.Entities = append(msg.Entities, encodeEntity(h))
	}
	if hub := s.hub.Snapshot(); hub != nil {
		msg.Players = hub.Players
		for _, t := range hub.TopScores {
			msg.Top = append(msg.Top, topScoreJSON{Name: t.Username, Score: t.Score, Level: t.Level})
		}
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		return err
	}
	s.events = s.events[:0]
	return nil
}

func (s *session) writeShutdown() {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(shutdownMessage{Type: "shutdown"}); err != nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
