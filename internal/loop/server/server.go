// Package server tracks the players connected to a shared host. Every
// player runs an independent game session; the server only knows who is
// connected and tells them when the host is going away.
package server

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"

	"github.com/tomz197/ballcatch/internal/logging"
	"github.com/tomz197/ballcatch/internal/loop/config"
)

// Lobby is the interface clients use to communicate with the server.
// Decouples the Client from the concrete Server implementation.
type Lobby interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	GetSnapshot() *Snapshot
}

// Server keeps the client registry and publishes lobby snapshots.
type Server struct {
	clock        clock.WithTicker
	logger       *log.Logger
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex
	shuttingDown atomic.Bool
}

// Compile-time check that Server implements Lobby.
var _ Lobby = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	JoinedAt time.Time        // Registration time
	EventsCh chan ClientEvent // Events sent to client (shutdown, etc.)
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// Snapshot is the read-only lobby view shared with clients.
type Snapshot struct {
	Players   int
	Usernames []string // Sorted
}

// Options configures a Server.
type Options struct {
	Clock  clock.WithTicker // Defaults to the real clock
	Logger *log.Logger      // Defaults to a discarding logger
}

// NewServer creates a new server.
func NewServer(opts Options) *Server {
	s := &Server{
		clock:        opts.Clock,
		logger:       opts.Logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	// Create initial empty snapshot
	s.snapshot.Store(&Snapshot{})
	return s
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(config.LobbyTickTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.processRegistrations()
			s.createSnapshot()
		}
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.shuttingDown.Store(true)

	// Notify all connected clients about the shutdown
	s.mu.RLock()
	for _, handle := range s.clients {
		notifyShutdown(handle)
	}
	s.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := s.clock.After(timeout)
	ticker := s.clock.NewTicker(config.ShutdownPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			s.logger.Warn("shutdown timed out", "remaining", s.clientCount())
			return
		case <-ticker.C():
			s.processRegistrations()
			if s.clientCount() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
// Clients joining during shutdown are told immediately.
func (s *Server) RegisterClient(username string) *ClientHandle {
	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}

	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		JoinedAt: s.clock.Now(),
		EventsCh: make(chan ClientEvent, 16),
	}
	if s.shuttingDown.Load() {
		notifyShutdown(handle)
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// GetSnapshot returns the current lobby snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Info("player joined", "id", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			handle, ok := s.clients[clientID]
			delete(s.clients, clientID)
			s.mu.Unlock()
			if ok {
				s.logger.Info("player left", "id", clientID, "user", handle.Username,
					"session", s.clock.Since(handle.JoinedAt).Round(time.Second))
			}
		default:
			return
		}
	}
}

// createSnapshot publishes the current player list.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	names := make([]string, 0, len(s.clients))
	for _, handle := range s.clients {
		names = append(names, handle.Username)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	s.snapshot.Store(&Snapshot{Players: len(names), Usernames: names})
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func notifyShutdown(handle *ClientHandle) {
	select {
	case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
	default:
	}
}
