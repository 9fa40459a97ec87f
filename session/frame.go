package session

import "github.com/vpalmerio/MoveGameDB/game"

// Frame is the read-only snapshot the renderer consumes. Every slice and
// map in it is a fresh copy; the renderer may not (and cannot usefully)
// mutate session state through it.
type Frame struct {
	Phase         game.Phase
	WorldSize     float64
	Food          []game.RenderableFood
	Circles       []game.RenderableCircle
	Players       map[string]game.Player
	LocalIdentity string
	LocalPlayer   *game.Player
	OwnedCircles  []game.RenderableCircle
	TotalMass     float64
	ErrMsg        string
	WalletErrMsg  string
}

// Frame composes the current renderable view from the mirrors.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	f := Frame{
		Phase:         s.phase,
		LocalIdentity: s.identity,
		ErrMsg:        s.errMsg,
		WalletErrMsg:  s.walletErr,
	}
	s.mu.Unlock()

	entities := s.tables.Entities.Snapshot()
	f.Food = game.ComposeFood(s.tables.Food.Snapshot(), entities)
	f.Circles = game.ComposeCircles(s.tables.Circles.Snapshot(), entities)
	f.Players = s.tables.Players.Snapshot()

	if cfg, ok := s.tables.ConfigRow(); ok {
		f.WorldSize = cfg.WorldSize
	}
	if f.LocalIdentity != "" {
		if p, ok := f.Players[f.LocalIdentity]; ok {
			f.LocalPlayer = &p
			f.OwnedCircles = game.OwnedCircles(f.Circles, p.PlayerID)
			f.TotalMass = game.TotalMass(f.OwnedCircles)
		}
	}
	return f
}
