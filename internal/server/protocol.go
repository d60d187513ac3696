package server

import (
	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
)

// Commands understood over the websocket.
const (
	CmdNew     = "new"
	CmdLoad    = "load"
	CmdMove    = "move"
	CmdAttack  = "attack"
	CmdSpecial = "special"
	CmdHeal    = "heal"
	CmdVision  = "vision"
	CmdView    = "view"
	CmdSave    = "save"
)

// Request is one command from a client.
type Request struct {
	Cmd        string `json:"cmd"`
	Direction  string `json:"direction,omitempty"`
	Class      string `json:"class,omitempty"`
	Name       string `json:"name,omitempty"`
	Seed       int64  `json:"seed,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	ID         string `json:"id,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	OK     bool       `json:"ok"`
	Code   string     `json:"code,omitempty"`
	Error  string     `json:"error,omitempty"`
	Result any        `json:"result,omitempty"`
	View   *game.View `json:"view,omitempty"`
}

// SessionInfo is the result of new, load and save.
type SessionInfo struct {
	ID   string `json:"id"`
	Seed int64  `json:"seed"`
}

func okResponse(result any, s *game.Session) Response {
	resp := Response{OK: true, Result: result}
	if s != nil {
		v := s.View()
		resp.View = &v
	}
	return resp
}

func errorResponse(err error, s *game.Session) Response {
	resp := Response{Code: string(gameerr.CodeOf(err)), Error: err.Error()}
	if s != nil {
		v := s.View()
		resp.View = &v
	}
	return resp
}
