// Package server hosts matches between remote bots over WebSockets. The
// first two bots to join are seated, the match runs through the arena with
// each bot proxied by a RemoteAgent, and game progress is broadcast to
// every connected client.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/boardforbots/arena"
	"github.com/lox/boardforbots/game"
	"github.com/lox/boardforbots/protocol"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// seats is the number of bots a match needs.
const seats = 2

// Config configures a match server.
type Config struct {
	// Addr is the TCP listen address, e.g. ":8080" or "127.0.0.1:0".
	Addr string

	// Games is the number of games in the hosted match.
	Games int

	// MaxMoves aborts games that never terminate.
	MaxMoves int

	// MoveTimeout bounds how long a bot may think per move. A bot that
	// overruns it forfeits the game.
	MoveTimeout time.Duration

	// MoveDelay paces the match so spectators can follow it.
	MoveDelay time.Duration

	// Logger receives server and connection events.
	Logger *log.Logger

	// MatchLogger receives the arena's per-game progress.
	MatchLogger zerolog.Logger

	// Clock drives move timeouts and pacing. Nil uses the real clock.
	Clock quartz.Clock
}

// Server hosts one match between the first two bots to join.
type Server struct {
	rules    game.Rules
	cfg      Config
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock
	ln       net.Listener

	mu          sync.RWMutex
	connections map[*Connection]bool
	names       map[string]*Connection

	register   chan *Connection
	unregister chan *Connection
	joined     chan *Connection

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a match server for the given rules.
func New(rules game.Rules, cfg Config) (*Server, error) {
	if rules == nil {
		return nil, errors.New("server: rules are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Games <= 0 {
		cfg.Games = arena.DefaultGames
	}
	if cfg.MoveTimeout <= 0 {
		cfg.MoveTimeout = DefaultMoveTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		rules: rules,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Bots connect from anywhere, there is no browser origin to check
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		names:       make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		joined:      make(chan *Connection, seats),
		logger:      cfg.Logger.WithPrefix("server"),
		clock:       cfg.Clock,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Listen binds the listen socket. After it returns, Addr reports the bound
// address, which is how tests discover the port behind ":0".
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Run serves until two bots join, plays the match between them, and
// returns its result. The server shuts down when Run returns.
func (s *Server) Run(ctx context.Context) (*arena.Result, error) {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return nil, err
		}
	}
	defer s.Stop()

	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{Handler: mux}
	defer func() { _ = httpServer.Close() }()
	go func() {
		err := httpServer.Serve(s.ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
	}()

	s.logger.Info("Waiting for bots", "addr", s.Addr(), "game", s.rules.Name(), "games", s.cfg.Games)

	var bots [seats]*Connection
	for i := range bots {
		select {
		case c := <-s.joined:
			bots[i] = c
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var agents [seats]*RemoteAgent
	for i, c := range bots {
		agents[i] = NewRemoteAgent(c, s.rules, s.cfg.MoveTimeout, s.clock, s.logger)
	}

	match, err := arena.New(s.rules,
		arena.Contestant{Name: bots[0].Name(), Agent: agents[0]},
		arena.Contestant{Name: bots[1].Name(), Agent: agents[1]},
		arena.Config{
			Games:     s.cfg.Games,
			MaxMoves:  s.cfg.MaxMoves,
			MoveDelay: s.cfg.MoveDelay,
			Clock:     s.clock,
			Logger:    s.cfg.MatchLogger,
			OnGameStart: func(id, white, black string) {
				for _, ag := range agents {
					ag.SetGame(id)
				}
				s.announceGameStart(bots[:], id, white, black)
			},
			OnGameEnd: s.announceGameEnd,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Both bots joined, starting match",
		"one", bots[0].Name(), "two", bots[1].Name())

	res, err := match.Run(ctx)
	if err != nil {
		return nil, err
	}

	s.announceMatchEnd(res)
	return res, nil
}

// Stop shuts the server down, closing every connection.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.ln != nil {
		_ = s.ln.Close()
	}
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				if name := conn.Name(); name != "" {
					delete(s.names, name)
				}
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// admit seats a joining bot. It queues the welcome message itself so the
// welcome is on the wire before any move request for the same bot.
func (s *Server) admit(c *Connection, data protocol.JoinData) error {
	if data.BotName == "" {
		return errors.New("bot name required")
	}
	if data.Game != "" && data.Game != s.rules.Name() {
		return fmt.Errorf("this server hosts %s, not %s", s.rules.Name(), data.Game)
	}

	s.mu.Lock()
	if _, taken := s.names[data.BotName]; taken {
		s.mu.Unlock()
		return fmt.Errorf("name %q is already taken", data.BotName)
	}
	if len(s.names) >= seats {
		s.mu.Unlock()
		return errors.New("match already has two bots")
	}
	s.names[data.BotName] = c
	s.mu.Unlock()

	c.SetName(data.BotName)
	s.logger.Info("Bot joined", "bot", data.BotName)

	welcome, err := protocol.NewMessage(protocol.MessageTypeWelcome, protocol.WelcomeData{
		BotName:    data.BotName,
		Game:       s.rules.Name(),
		ActionSize: s.rules.ActionSize(),
		Games:      s.cfg.Games,
	})
	if err != nil {
		return err
	}
	if err := c.SendMessage(welcome); err != nil {
		return err
	}

	select {
	case s.joined <- c:
	default:
	}
	return nil
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s, s.logger)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// Broadcast sends a message to every connected client.
func (s *Server) Broadcast(msg *protocol.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send message to client", "error", err, "bot", conn.Name())
		}
	}
}

// announceGameStart tells each seated bot which side it plays.
func (s *Server) announceGameStart(bots []*Connection, id, white, black string) {
	for _, c := range bots {
		seat := "black"
		if c.Name() == white {
			seat = "white"
		}
		msg, err := protocol.NewMessage(protocol.MessageTypeGameStart, protocol.GameStartData{
			GameID: id,
			White:  white,
			Black:  black,
			Seat:   seat,
		})
		if err != nil {
			return
		}
		_ = c.SendMessage(msg)
	}
}

func (s *Server) announceGameEnd(rec arena.GameRecord) {
	msg, err := protocol.NewMessage(protocol.MessageTypeGameEnd, protocol.GameEndData{
		GameID:  rec.ID,
		Winner:  rec.Winner,
		Moves:   rec.Moves,
		Forfeit: rec.Forfeit,
	})
	if err != nil {
		return
	}
	s.Broadcast(msg)
}

func (s *Server) announceMatchEnd(res *arena.Result) {
	msg, err := protocol.NewMessage(protocol.MessageTypeMatchEnd, protocol.MatchEndData{
		MatchID: res.ID,
		Games:   len(res.Games),
		Wins:    map[string]int{res.One: res.OneWins, res.Two: res.TwoWins},
		Draws:   res.Draws,
	})
	if err != nil {
		return
	}
	s.Broadcast(msg)
}
