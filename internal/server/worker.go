package server

import (
	"context"
	"time"

	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
)

// job is one queued command and the channel its response goes back on.
type job struct {
	req   Request
	reply chan Response
}

// worker owns a session. Every command against the session runs on the
// worker's goroutine, in queue order.
type worker struct {
	srv     *Server
	session *game.Session
	queue   chan job
	cancel  context.CancelFunc
	done    chan struct{}

	// conns is guarded by srv.mu.
	conns int
}

func newWorker(srv *Server, session *game.Session) *worker {
	return &worker{
		srv:     srv,
		session: session,
		queue:   make(chan job, srv.cfg.Server.CommandQueueSize),
		done:    make(chan struct{}),
	}
}

func (w *worker) run(ctx context.Context) {
	defer close(w.done)
	logger.Debug("Session worker started", "session_id", w.session.ID())

	for {
		select {
		case <-ctx.Done():
			w.finish()
			return
		case j := <-w.queue:
			j.reply <- w.execute(ctx, j.req)
		}
	}
}

// finish saves the session on the way out when auto-save is on.
func (w *worker) finish() {
	if w.srv.cfg.Server.AutoSave && w.srv.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.srv.repo.Save(ctx, w.session.Snapshot()); err != nil {
			logger.Error("Failed to save session on worker stop",
				"session_id", w.session.ID(),
				"error", err)
		}
	}
	logger.Debug("Session worker stopped", "session_id", w.session.ID())
}

// submit queues req and waits for its response.
func (w *worker) submit(req Request) Response {
	reply := make(chan Response, 1)
	select {
	case w.queue <- job{req: req, reply: reply}:
	case <-w.done:
		return errorResponse(gameerr.IllegalAction("session is closed"), nil)
	}

	select {
	case resp := <-reply:
		return resp
	case <-w.done:
		select {
		case resp := <-reply:
			return resp
		default:
			return errorResponse(gameerr.IllegalAction("session is closed"), nil)
		}
	}
}

// execute runs one command against the session.
func (w *worker) execute(ctx context.Context, req Request) Response {
	s := w.session
	before := s.State()

	var (
		result  any
		err     error
		mutates = true
	)
	switch req.Cmd {
	case CmdMove:
		dir, perr := grid.ParseDirection(req.Direction)
		if perr != nil {
			err = gameerr.IllegalAction(perr.Error())
			break
		}
		result, err = s.MovePlayer(dir)
	case CmdAttack:
		result, err = s.Attack()
	case CmdSpecial:
		result, err = s.UseSpecialAbility()
	case CmdHeal:
		result, err = s.UseHealingPotion()
	case CmdVision:
		result, err = s.UseVisionPotion()
	case CmdView:
		mutates = false
	case CmdSave:
		mutates = false
		if w.srv.repo == nil {
			err = gameerr.Configuration("saving is disabled")
			break
		}
		if err = w.srv.repo.Save(ctx, s.Snapshot()); err == nil {
			result = SessionInfo{ID: s.ID(), Seed: s.Seed()}
			logger.Info("Session saved", "session_id", s.ID())
		}
	default:
		err = gameerr.IllegalActionf("unknown command %q", req.Cmd)
	}

	if err != nil {
		logger.Debug("Command rejected",
			"session_id", s.ID(),
			"cmd", req.Cmd,
			"code", string(gameerr.CodeOf(err)),
			"error", err)
		return errorResponse(err, s)
	}
	if mutates {
		w.afterCommand(ctx, before)
	}
	return okResponse(result, s)
}

// afterCommand records finished games and auto-saves.
func (w *worker) afterCommand(ctx context.Context, before game.State) {
	s := w.session
	if before == game.Playing && s.IsOver() && w.srv.results != nil {
		first, err := w.srv.results.RecordResult(ctx, resultOf(s))
		switch {
		case err != nil:
			logger.Error("Failed to record game result", "session_id", s.ID(), "error", err)
		case first:
			logger.Always("First victory for class",
				"session_id", s.ID(),
				"hero", s.Hero().Name(),
				"class", s.Hero().Class())
		}
	}

	if w.srv.cfg.Server.AutoSave && w.srv.repo != nil {
		if err := w.srv.repo.Save(ctx, s.Snapshot()); err != nil {
			logger.Warning("Auto-save failed", "session_id", s.ID(), "error", err)
		}
	}
}
