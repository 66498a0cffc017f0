package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/balancerbattle/wsfixture/internal/logging"
	"github.com/balancerbattle/wsfixture/internal/session"
	"github.com/balancerbattle/wsfixture/internal/stats"
	"github.com/balancerbattle/wsfixture/internal/transport"
)

const (
	// DefaultPort is the port the fixture listens on unless told otherwise
	DefaultPort = 8080

	// DefaultShutdownTimeout bounds how long Shutdown waits for sessions
	DefaultShutdownTimeout = 10 * time.Second

	// every milestoneInterval-th connection is logged with the running total
	milestoneInterval = 100
)

// Config holds the server configuration
type Config struct {
	Host            string
	Port            int // 0 picks a free port
	ShutdownTimeout time.Duration
}

// Addr returns the host:port string to bind
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server accepts WebSocket upgrades and echoes their messages
type Server struct {
	config     Config
	selection  *transport.Selection
	stats      *stats.Aggregator
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener

	wg       sync.WaitGroup
	mu       sync.Mutex
	sessions map[*session.Session]struct{}
	closing  bool
}

// New creates a server for the given transport selection. Counters are
// recorded on agg.
func New(config Config, sel *transport.Selection, agg *stats.Aggregator) *Server {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		config:    config,
		selection: sel,
		stats:     agg,
		upgrader: websocket.Upgrader{
			// the fixture sits behind arbitrary proxies and test clients
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[*session.Session]struct{}),
	}

	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 30 * time.Second,
		ErrorLog:          zap.NewStdLog(logging.GetLogger()),
	}

	return s
}

// Flavor returns the transport flavor the server was built for
func (s *Server) Flavor() transport.Flavor {
	return s.selection.Flavor
}

// Listen binds the configured address using the selected transport
func (s *Server) Listen() error {
	addr := s.config.Addr()

	ln, err := s.selection.Listen(s.httpServer, addr)
	if err != nil {
		return &ListenError{Addr: addr, Flavor: s.Flavor().String(), Err: err}
	}
	s.listener = ln

	logging.Info("Server listening for connections",
		zap.String("addr", ln.Addr().String()),
		zap.String("flavor", s.Flavor().String()),
		zap.Bool("secure", s.Flavor().Secure()),
	)
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed. A clean shutdown
// returns nil.
func (s *Server) Serve() error {
	if s.listener == nil {
		return fmt.Errorf("server is not listening")
	}

	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Run serves until ctx is cancelled and then shuts the server down
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// ServeHTTP routes upgrade requests to a session and everything else to
// the fallback responder.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered with an HTTP error
		logging.Warn("WebSocket handshake rejected",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		return
	}

	s.handleSession(conn, r)
}

// handleSession counts the new connection and runs its echo loop on the
// calling goroutine.
func (s *Server) handleSession(conn *websocket.Conn, r *http.Request) {
	total := s.stats.RecordConnectionEstablished()
	if total%milestoneInterval == 0 {
		logging.Info("Received connections", zap.Uint64("total", total))
	}

	fields := []zap.Field{
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("path", r.URL.Path),
	}
	if r.TLS != nil {
		fields = append(fields,
			zap.String("tls_version", tls.VersionName(r.TLS.Version)),
			zap.String("negotiated_protocol", r.TLS.NegotiatedProtocol),
		)
	}
	logging.Debug("WebSocket upgraded", fields...)

	sess := session.New(conn, s.stats, session.WithOnClose(s.unregister))
	if !s.register(sess) {
		sess.Close()
		return
	}
	defer s.wg.Done()

	sess.Run()
}

// register adds sess to the connection set. It refuses once shutdown began.
func (s *Server) register(sess *session.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) unregister(sess *session.Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// ActiveConnections returns the number of open sessions
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown stops accepting connections, closes open sessions and waits for
// their goroutines until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logging.Error("Error closing listener", zap.Error(err))
	}

	s.mu.Lock()
	s.closing = true
	open := make([]*session.Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	// Close outside the lock; the on-close hook takes it again
	for _, sess := range open {
		logging.Debug("Closing active connection", zap.String("remote_addr", sess.RemoteAddr()))
		sess.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	return nil
}
