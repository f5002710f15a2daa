// Package live streams fixpoint progress to a connected watcher over a
// WebSocket, grounded on the teacher's internal/network WebSocket server
// (Upgrader + per-connection write loop), per SPEC_FULL.md §4.14. It never
// feeds back into the analysis — engine.Config.OnUpdate only calls out to
// it after a StateSet.Update has already committed.
package live

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one fixpoint step, emitted after every StateSet.Update.
type Event struct {
	Method  string `json:"method"`
	PC      int    `json:"pc"`
	Changed bool   `json:"changed"`
	Widened bool   `json:"widened"`
	At      string `json:"at"`
}

// Server broadcasts Events to every connected watcher. Disabled analyses
// (no --watch flag) never construct one, per SPEC_FULL.md §6.
type Server struct {
	upgrader websocket.Upgrader
	http     *http.Server

	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewServer builds a Server listening on addr. Call Serve to start
// accepting connections and Close to stop.
func NewServer(addr string) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleWatch)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler exposes the underlying mux so tests can drive it with
// httptest.Server instead of binding a real port.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Serve starts the HTTP server in the background and returns immediately.
func (s *Server) Serve() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("live: server stopped: %v", err)
		}
	}()
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := fmt.Sprintf("watcher_%d", len(s.clients)+1)
	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()
}

// OnUpdate is wired into engine.Config.OnUpdate: it broadcasts one Event
// per worklist update to every connected watcher, dropping any client
// whose write fails rather than blocking the analysis on it.
func (s *Server) OnUpdate(method string) func(pc int, changed, widened bool) {
	return func(pc int, changed, widened bool) {
		evt := Event{Method: method, PC: pc, Changed: changed, Widened: widened, At: time.Now().UTC().Format(time.RFC3339Nano)}
		payload, err := json.Marshal(evt)
		if err != nil {
			return
		}
		s.broadcast(payload)
	}
}

func (s *Server) broadcast(payload []byte) {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	ids := make([]string, 0, len(s.clients))
	for id, c := range s.clients {
		clients = append(clients, c)
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for i, c := range clients {
		c.mu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			s.mu.Lock()
			delete(s.clients, ids[i])
			s.mu.Unlock()
		}
	}
}

// Close stops the HTTP server and disconnects every watcher.
func (s *Server) Close() error {
	s.mu.Lock()
	for id, c := range s.clients {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
	return s.http.Close()
}
