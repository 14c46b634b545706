// Package server is the real-time push transport: a websocket hub that
// broadcasts round state to every connected display and admin client, and
// feeds operator commands (spin, spinResult, reset) into the round
// controller. Losing a client only affects that client's view; the round
// ledger stays the source of truth.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/MrOmnes/iRonWheel/internal/round"
)

// Rounds is the slice of the round controller the push transport drives.
type Rounds interface {
	Spin(ctx context.Context, winning round.Segment) (*round.Outcome, error)
	Reset(ctx context.Context)
}

// Server is the websocket hub for display and admin clients.
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	rounds      Rounds
	monitor     *RoundMonitor
	staticDir   string
	httpServer  *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStaticDir serves the given directory at "/" for the wheel frontend.
func WithStaticDir(dir string) ServerOption {
	return func(s *Server) { s.staticDir = dir }
}

// WithMonitor attaches a console monitor that prints resolved rounds.
func WithMonitor(m *RoundMonitor) ServerOption {
	return func(s *Server) { s.monitor = m }
}

// NewServer creates a websocket hub. The round controller is attached later
// with SetRounds because the two reference each other.
func NewServer(logger *log.Logger, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The admin and display pages are served from this same
				// process; accept any origin.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRounds attaches the round controller.
func (s *Server) SetRounds(rounds Rounds) {
	s.rounds = rounds
}

// Handler returns the HTTP handler serving /ws, /health and the static
// frontend. Exposed so tests can mount it on an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

// Start runs the hub and serves HTTP on addr until Shutdown.
func (s *Server) Start(addr string) error {
	go s.run()

	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	s.logger.Info("starting websocket server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server and closes every client connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // ignore close errors during shutdown
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close() // ignore close errors during unregistration
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles websocket upgrade requests.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // ignore write errors for health check
}

// Broadcast sends a message to every connected client.
func (s *Server) Broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("failed to send message to client", "error", err)
		} else {
			count++
		}
	}

	s.logger.Debug("broadcast", "type", msg.Type, "recipients", count)
}

// BroadcastBets implements round.Broadcaster: the full current bet map is
// pushed on every ledger mutation.
func (s *Server) BroadcastBets(bets map[string]round.BetView) {
	msg, err := NewMessage(MessageTypeUpdateBets, bets)
	if err != nil {
		s.logger.Error("failed to create updateBets message", "error", err)
		return
	}
	s.Broadcast(msg)
}
