package session

import (
	"strings"

	"github.com/vpalmerio/MoveGameDB/game"
	"github.com/vpalmerio/MoveGameDB/metrics"
)

// Server-side reducer names.
const (
	reducerEnterGame   = "enter_game"
	reducerRespawn     = "respawn"
	reducerSplit       = "player_split"
	reducerSuicide     = "suicide"
	reducerUpdateInput = "update_player_input"
)

type enterGameArgs struct {
	Name          string `json:"name"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

type updateInputArgs struct {
	Direction game.Vector2 `json:"direction"`
}

// EnterGame joins the game under the given display name, attaching the
// linked wallet address when one is available. Declined outside the login
// and loading phases, and for blank names.
func (s *Session) EnterGame(name string) {
	name = strings.TrimSpace(name)
	if name == "" || !s.phaseIs(game.PhaseLogin, game.PhaseLoading) {
		s.decline(reducerEnterGame)
		return
	}
	args := enterGameArgs{Name: name}
	if s.wallet != nil && s.wallet.IsConnected() {
		args.WalletAddress = s.wallet.Address()
	}
	s.call(reducerEnterGame, args)
}

// Respawn asks for a fresh circle. Only meaningful while dead.
func (s *Session) Respawn() {
	if !s.phaseIs(game.PhaseDead) {
		s.decline(reducerRespawn)
		return
	}
	s.call(reducerRespawn, nil)
}

// Split divides every owned circle. Only while playing.
func (s *Session) Split() {
	if !s.phaseIs(game.PhasePlaying) {
		s.decline(reducerSplit)
		return
	}
	s.call(reducerSplit, nil)
}

// Suicide gives up all owned circles. Only while playing.
func (s *Session) Suicide() {
	if !s.phaseIs(game.PhasePlaying) {
		s.decline(reducerSuicide)
		return
	}
	s.call(reducerSuicide, nil)
}

// SetDirection steers the player's circles. dir must already be
// unit-length or zero. Only while playing.
func (s *Session) SetDirection(dir game.Vector2) {
	if !s.phaseIs(game.PhasePlaying) {
		s.decline(reducerUpdateInput)
		return
	}
	s.call(reducerUpdateInput, updateInputArgs{Direction: dir})
}

func (s *Session) phaseIs(allowed ...game.Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for _, p := range allowed {
		if s.phase == p {
			return true
		}
	}
	return false
}

// call is fire-and-forget: all visible effects arrive later as replicated
// row changes. Write failures are logged, not surfaced; the connection
// loop notices real breakage on its own.
func (s *Session) call(reducer string, args any) {
	if err := s.conn.CallReducer(reducer, args); err != nil {
		s.logger.Warn("reducer call failed", "reducer", reducer, "error", err)
		return
	}
	metrics.CommandsSent.WithLabelValues(reducer).Inc()
}

func (s *Session) decline(reducer string) {
	s.logger.Debug("declining reducer call", "reducer", reducer, "phase", s.Phase().String())
}
