// Package server exposes game sessions over websockets. Each session is owned
// by a worker goroutine; every connection bound to it queues commands there.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeonadventure/internal/antispam"
	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/config"
	"github.com/lawnchairsociety/dungeonadventure/internal/database"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/namefilter"
	"github.com/lawnchairsociety/dungeonadventure/internal/savegame"
)

// ResultRecorder stores finished games. *database.Database implements it.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r database.GameResult) (bool, error)
}

// Options configures a Server. Repository, Results and Definitions are
// optional.
type Options struct {
	Config      *config.Config
	Repository  savegame.Repository
	Results     ResultRecorder
	Definitions *character.Definitions
}

type Server struct {
	cfg     *config.Config
	repo    savegame.Repository
	results ResultRecorder
	defs    *character.Definitions
	names   *namefilter.NameFilter

	connLimiter *ConnLimiter
	loadLimiter *LoadLimiter
	upgrader    websocket.Upgrader
	mux         *http.ServeMux
	httpServer  *http.Server
	StartTime   time.Time

	// ctx parents every worker; cancelling it stops them all.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	workers map[string]*worker
	clients map[*WebSocketClient]struct{}
	wg      sync.WaitGroup

	shutdownOnce sync.Once
}

// New creates a server. It does not listen until Run.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, gameerr.Configuration("server needs a config")
	}
	if opts.Config.Server.CommandQueueSize < 1 {
		return nil, gameerr.Configuration("server.command_queue_size must be at least 1")
	}
	defs := opts.Definitions
	if defs == nil {
		defs = character.DefaultDefinitions()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:         opts.Config,
		repo:        opts.Repository,
		results:     opts.Results,
		defs:        defs,
		connLimiter: NewConnLimiter(opts.Config.Server.Connections),
		loadLimiter: NewLoadLimiter(opts.Config.Server.RateLimit),
		names:       namefilter.New(&opts.Config.Game.Names),
		mux:         http.NewServeMux(),
		StartTime:   time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		workers:     make(map[string]*worker),
		clients:     make(map[*WebSocketClient]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.mux.HandleFunc("GET /ws", s.handleWebSocketUpgrade)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s, nil
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler { return s.mux }

// Run listens on the configured address until ctx is cancelled, then shuts
// down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("WebSocket server listening", "address", s.cfg.Server.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting connections, closes open ones and waits for every
// session worker to stop. Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cancel()
		s.loadLimiter.Stop()

		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}

		s.mu.Lock()
		for c := range s.clients {
			c.Close()
		}
		s.mu.Unlock()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			logger.Info("Server shutdown complete")
		case <-ctx.Done():
			logger.Warning("Server shutdown timed out waiting for session workers")
			if err == nil {
				err = ctx.Err()
			}
		}
	})
	return err
}

// SessionCount returns the number of live session workers.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	allowed := s.cfg.Server.WebSocket.IsOriginAllowed(origin, r.Host)
	if !allowed {
		logger.Warning("WebSocket connection rejected - origin not allowed",
			"origin", origin,
			"host", r.Host,
			"remote_addr", r.RemoteAddr)
	}
	return allowed
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"uptime":      time.Since(s.StartTime).Round(time.Second).String(),
		"sessions":    s.SessionCount(),
		"connections": s.connLimiter.Stats(),
	})
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	}

	clientIP := realIP(r)
	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	go s.serve(NewWebSocketClient(conn, s.cfg.Server.WebSocket.MaxMessageSize), clientIP)
}

// serve reads requests from one connection until it closes.
func (s *Server) serve(client *WebSocketClient, clientIP string) {
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()
	logger.Info("Client connected", "remote_addr", client.RemoteAddr())

	throttle := antispam.NewTracker(s.cfg.Server.Throttle)
	var bound *worker
	defer func() {
		if bound != nil {
			s.detach(bound)
		}
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		client.Close()
		s.connLimiter.Release(clientIP)
		logger.Info("Client disconnected", "remote_addr", client.RemoteAddr())
	}()

	for {
		req, err := client.ReadRequest()
		if err != nil {
			if !gameerr.IsIllegalAction(err) {
				return
			}
			if client.Send(errorResponse(err, nil)) != nil {
				return
			}
			continue
		}

		if check := throttle.Check(req.Cmd); !check.Allowed {
			err := gameerr.IllegalActionf("%s, try again in %ds", check.Reason, check.WaitSeconds)
			if client.Send(errorResponse(err, nil)) != nil {
				return
			}
			continue
		}

		var resp Response
		switch req.Cmd {
		case CmdNew, CmdLoad:
			var next *worker
			if req.Cmd == CmdNew {
				next, resp = s.newSession(req)
			} else {
				next, resp = s.loadSession(clientIP, req)
			}
			if next != nil {
				// Reloading the bound session took a second hold; drop one.
				if bound != nil {
					s.detach(bound)
				}
				bound = next
			}
		default:
			if bound == nil {
				resp = errorResponse(gameerr.IllegalAction("no active session: send new or load first"), nil)
			} else {
				resp = bound.submit(req)
			}
		}

		if err := client.Send(resp); err != nil {
			return
		}
	}
}

// newSession starts a fresh game and a worker for it.
func (s *Server) newSession(req Request) (*worker, Response) {
	className := req.Class
	if className == "" {
		className = s.cfg.Game.Class
	}
	class, err := character.ParseHeroClass(className)
	if err != nil {
		return nil, errorResponse(gameerr.IllegalAction(err.Error()), nil)
	}
	name := req.Name
	if name == "" {
		name = s.cfg.Game.HeroName
	}
	name, err = s.names.Check(name)
	if err != nil {
		return nil, errorResponse(err, nil)
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.cfg.Game.Seed
	}
	cfg := s.cfg.Dungeon
	if req.Difficulty != "" {
		difficulty, err := dungeon.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, errorResponse(gameerr.IllegalAction(err.Error()), nil)
		}
		cfg.Difficulty = difficulty
	}

	session, err := game.New(game.Options{
		Seed:        seed,
		HeroName:    name,
		Class:       class,
		Dungeon:     cfg,
		Definitions: s.defs,
	})
	if err != nil {
		return nil, errorResponse(err, nil)
	}

	resp := okResponse(SessionInfo{ID: session.ID(), Seed: session.Seed()}, session)
	w, created, err := s.register(session)
	if err != nil {
		return nil, errorResponse(err, nil)
	}
	if !created {
		return w, w.info(session)
	}
	return w, resp
}

// loadSession joins the live worker for req.ID or restores the save into a
// new one.
func (s *Server) loadSession(clientIP string, req Request) (*worker, Response) {
	if req.ID == "" {
		return nil, errorResponse(gameerr.IllegalAction("load needs a session id"), nil)
	}
	if locked, remaining := s.loadLimiter.Locked(clientIP); locked {
		return nil, errorResponse(gameerr.IllegalActionf("too many failed loads, try again in %s", remaining.Round(time.Second)), nil)
	}

	s.mu.Lock()
	live := s.workers[req.ID]
	if live != nil {
		live.conns++
	}
	s.mu.Unlock()
	if live != nil {
		return live, live.info(live.session)
	}

	if s.repo == nil {
		return nil, errorResponse(gameerr.Configuration("saving is disabled"), nil)
	}
	snap, err := s.repo.Load(s.ctx, req.ID)
	if err != nil {
		if gameerr.IsNotFound(err) {
			if locked, d := s.loadLimiter.RecordFailure(clientIP); locked {
				logger.Warning("Client locked out after failed loads",
					"client_ip", clientIP,
					"lockout", d.String())
			}
		}
		return nil, errorResponse(err, nil)
	}
	session, err := game.Restore(snap, s.defs)
	if err != nil {
		return nil, errorResponse(err, nil)
	}
	s.loadLimiter.RecordSuccess(clientIP)

	resp := okResponse(SessionInfo{ID: session.ID(), Seed: session.Seed()}, session)
	w, created, err := s.register(session)
	if err != nil {
		return nil, errorResponse(err, nil)
	}
	if !created {
		return w, w.info(w.session)
	}
	return w, resp
}

// info answers new and load for a connection joining a running worker. The
// view is built on the worker's goroutine.
func (w *worker) info(session *game.Session) Response {
	resp := w.submit(Request{Cmd: CmdView})
	if resp.OK {
		resp.Result = SessionInfo{ID: session.ID(), Seed: session.Seed()}
	}
	return resp
}

// register binds one connection to the worker for session, starting the
// worker if none is running. created is false when another connection won
// the race and the existing worker was joined instead.
func (s *Server) register(session *game.Session) (w *worker, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, false, gameerr.IllegalAction("server is shutting down")
	}
	if live := s.workers[session.ID()]; live != nil {
		live.conns++
		return live, false, nil
	}

	w = newWorker(s, session)
	ctx, cancel := context.WithCancel(s.ctx)
	w.cancel = cancel
	w.conns = 1
	s.workers[session.ID()] = w

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.run(ctx)
	}()
	return w, true, nil
}

// detach releases one connection's hold on w. The last one stops it.
func (s *Server) detach(w *worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.conns--
	if w.conns > 0 {
		return
	}
	if s.workers[w.session.ID()] == w {
		delete(s.workers, w.session.ID())
	}
	w.cancel()
}

func resultOf(s *game.Session) database.GameResult {
	return database.GameResult{
		SessionID:  s.ID(),
		HeroName:   s.Hero().Name(),
		Class:      string(s.Hero().Class()),
		Result:     string(s.State()),
		Pillars:    len(s.Hero().Pillars()),
		Seed:       s.Seed(),
		FinishedAt: time.Now().UTC(),
	}
}
