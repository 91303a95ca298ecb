// Package server tracks the sessions connected to one process. Every session
// runs its own game; the hub only counts players, ranks live scores and
// broadcasts shutdown.
package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/crystals/internal/loop/config"
)

// Registry is the interface sessions use to talk to the hub.
type Registry interface {
	Register(username string) *Handle
	Unregister(clientID int)
	Report(clientID, score, level int)
	Snapshot() *Snapshot
}

// Hub owns the set of connected sessions.
type Hub struct {
	logger       *log.Logger
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*Handle
	nextClientID int
	registerCh   chan *Handle
	unregisterCh chan int
	reportCh     chan report
	mu           sync.RWMutex

	// Double-buffered leaderboard slices to avoid allocations
	scoreBufs [2][]TopScoreEntry
	scoreIdx  int
}

// Compile-time check that Hub implements Registry.
var _ Registry = (*Hub)(nil)

// Handle represents one session's registration with the hub.
type Handle struct {
	ID       int
	Username string
	EventsCh chan Event // Events sent to the session (shutdown, etc.)

	score int
	level int
}

type report struct {
	clientID int
	score    int
	level    int
}

// Event is a notification from the hub to a session.
type Event struct {
	Type EventType
}

// EventType identifies the type of hub event.
type EventType int

const (
	EventServerShutdown EventType = iota
)

// NewHub creates a hub. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Hub{
		logger:       logger,
		clients:      make(map[int]*Handle),
		nextClientID: 1,
		registerCh:   make(chan *Handle, 16),
		unregisterCh: make(chan int, 16),
		reportCh:     make(chan report, 256),
	}
	h.snapshot.Store(&Snapshot{})
	return h
}

// Run processes registrations and score reports. Blocks until the context
// is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(config.HubTickTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.step()
		}
	}
}

func (h *Hub) step() {
	h.processRegistrations()
	h.collectReports()
	h.createSnapshot()
}

// Shutdown notifies all connected sessions and waits for them to
// disconnect, up to the given timeout. The caller should cancel the hub
// context after Shutdown returns.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.mu.RLock()
	for _, handle := range h.clients {
		select {
		case handle.EventsCh <- Event{Type: EventServerShutdown}:
		default:
		}
	}
	h.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			h.logger.Warn("Shutdown timed out", "remaining", h.Players())
			return
		case <-ticker.C:
			if h.Players() == 0 {
				return
			}
		}
	}
}

// Register adds a session with the given username and returns its handle.
func (h *Hub) Register(username string) *Handle {
	h.mu.Lock()
	id := h.nextClientID
	h.nextClientID++
	h.mu.Unlock()

	handle := &Handle{
		ID:       id,
		Username: username,
		EventsCh: make(chan Event, 16),
	}
	h.registerCh <- handle
	return handle
}

// Unregister removes a session. Its events channel is closed once processed.
func (h *Hub) Unregister(clientID int) {
	h.unregisterCh <- clientID
}

// Report publishes a session's current score. Dropped if the hub is busy.
func (h *Hub) Report(clientID, score, level int) {
	select {
	case h.reportCh <- report{clientID: clientID, score: score, level: level}:
	default:
	}
}

// Snapshot returns the latest hub snapshot.
func (h *Hub) Snapshot() *Snapshot {
	return h.snapshot.Load()
}

// Players returns the number of registered sessions.
func (h *Hub) Players() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) processRegistrations() {
	for {
		select {
		case handle := <-h.registerCh:
			h.mu.Lock()
			h.clients[handle.ID] = handle
			h.mu.Unlock()
			h.logger.Debug("Session registered", "id", handle.ID, "user", handle.Username)
		case clientID := <-h.unregisterCh:
			h.mu.Lock()
			if handle, ok := h.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(h.clients, clientID)
			}
			h.mu.Unlock()
			h.logger.Debug("Session unregistered", "id", clientID)
		default:
			return
		}
	}
}

func (h *Hub) collectReports() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		select {
		case r := <-h.reportCh:
			if handle, ok := h.clients[r.clientID]; ok {
				handle.score = r.score
				handle.level = r.level
			}
		default:
			return
		}
	}
}

func (h *Hub) createSnapshot() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	idx := h.scoreIdx
	h.scoreIdx = 1 - h.scoreIdx
	h.scoreBufs[idx] = topScores(h.clients, config.TopScoresCount, h.scoreBufs[idx])

	h.snapshot.Store(&Snapshot{
		Players:   len(h.clients),
		TopScores: h.scoreBufs[idx],
	})
}
