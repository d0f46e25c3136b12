// Package server exposes match decision prompts over WebSocket. A
// human client connects with its player name, receives prompt frames
// and answers them; each connected client backs a decision.Prompter
// the match goroutine blocks on.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/config"
)

// Message is the wire frame exchanged with prompt clients.
type Message struct {
	Type     string `json:"type"` // prompt, answer, event
	PromptID string `json:"prompt_id,omitempty"`
	Player   string `json:"player,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Server accepts prompt clients and hands out one Session per player.
type Server struct {
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	waiters  map[string][]chan *Session

	httpServer *http.Server
}

// New creates a prompt server.
func New(cfg config.WebSocketConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:   logger,
		sessions: make(map[string]*Session),
		waiters:  make(map[string][]chan *Session),
	}
}

// Start serves /ws and /health until Shutdown. Blocks.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: s.cfg.Address, Handler: mux}
	s.logger.Info("starting prompt server", zap.String("address", s.cfg.Address))

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, session := range s.sessions {
		session.close()
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// AwaitSession blocks until the named player connects or ctx expires.
func (s *Server) AwaitSession(ctx context.Context, player string) (*Session, error) {
	s.mu.Lock()
	if session, ok := s.sessions[player]; ok {
		s.mu.Unlock()
		return session, nil
	}
	ch := make(chan *Session, 1)
	s.waiters[player] = append(s.waiters[player], ch)
	s.mu.Unlock()

	select {
	case session := <-ch:
		return session, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("server: waiting for player %q: %w", player, ctx.Err())
	}
}

// Broadcast sends a frame to every connected client. Send failures
// close the offending session.
func (s *Server) Broadcast(msg Message) {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		if err := session.send(msg); err != nil {
			s.logger.Warn("dropping client after failed broadcast",
				zap.String("player", session.player),
				zap.Error(err),
			)
			session.close()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		http.Error(w, "missing player query parameter", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	session := newSession(player, conn, s.cfg.WriteTimeout, s.logger)

	s.mu.Lock()
	if previous, ok := s.sessions[player]; ok {
		previous.close()
	}
	s.sessions[player] = session
	waiters := s.waiters[player]
	delete(s.waiters, player)
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- session
	}

	s.logger.Info("prompt client connected", zap.String("player", player))
	go func() {
		session.readLoop()
		s.mu.Lock()
		if s.sessions[player] == session {
			delete(s.sessions, player)
		}
		s.mu.Unlock()
		s.logger.Info("prompt client disconnected", zap.String("player", player))
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// Session is one connected prompt client. It implements
// decision.Prompter: Prompt writes a frame and blocks until the
// matching answer frame arrives.
type Session struct {
	player       string
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan string
	closed  chan struct{}
	once    sync.Once
}

func newSession(player string, conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger) *Session {
	return &Session{
		player:       player,
		conn:         conn,
		writeTimeout: writeTimeout,
		logger:       logger,
		pending:      make(map[string]chan string),
		closed:       make(chan struct{}),
	}
}

// Player returns the player name this session belongs to.
func (s *Session) Player() string { return s.player }

// Prompt implements decision.Prompter.
func (s *Session) Prompt(ctx context.Context, question string) (string, error) {
	id := uuid.NewString()
	ch := make(chan string, 1)

	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	err := s.send(Message{
		Type:     "prompt",
		PromptID: id,
		Player:   s.player,
		Text:     question,
	})
	if err != nil {
		return "", fmt.Errorf("server: sending prompt to %q: %w", s.player, err)
	}

	select {
	case answer := <-ch:
		return answer, nil
	case <-s.closed:
		return "", fmt.Errorf("server: player %q disconnected", s.player)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) send(msg Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

func (s *Session) readLoop() {
	defer s.close()
	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("prompt client read error",
					zap.String("player", s.player),
					zap.Error(err),
				)
			}
			return
		}
		if msg.Type != "answer" || msg.PromptID == "" {
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[msg.PromptID]
		s.mu.Unlock()
		if !ok {
			s.logger.Debug("answer for unknown prompt",
				zap.String("player", s.player),
				zap.String("prompt_id", msg.PromptID),
			)
			continue
		}
		ch <- msg.Text
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}
