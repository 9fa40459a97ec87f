package game

// Phase is the client's gameplay phase. It is derived entirely from
// replicated state and connection signals; the server never sends an
// explicit phase.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseWalletPending
	PhaseLoading
	PhaseLogin
	PhasePlaying
	PhaseDead
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseWalletPending:
		return "wallet_pending"
	case PhaseLoading:
		return "loading_data"
	case PhaseLogin:
		return "login"
	case PhasePlaying:
		return "playing"
	case PhaseDead:
		return "dead"
	default:
		return "unknown"
	}
}

// seated reports whether the player has made it past the loading screen.
// Once seated, transient data gaps must not bounce the UI back to loading.
func (p Phase) seated() bool {
	return p == PhaseLogin || p == PhasePlaying || p == PhaseDead
}

// PhaseInputs is everything the phase transition rule looks at.
type PhaseInputs struct {
	Current              Phase
	Connected            bool
	WalletRequired       bool
	WalletLinked         bool
	HaveIdentity         bool
	SubscriptionsApplied bool
	HaveConfig           bool
	InitialFoodTarget    uint32
	EntityCount          int
	LocalPlayer          *Player
	OwnedCircleCount     int
}

// NextPhase evaluates the transition rules in priority order.
//
// Liveness is inferred from the existence of owned renderable circles: the
// server's only death signal is deleting the player's last circle. A player
// row with a name but zero circles is treated as dead; one with no name has
// not entered the game yet.
func NextPhase(in PhaseInputs) Phase {
	if !in.Connected {
		return PhaseConnecting
	}
	if in.WalletRequired && !in.WalletLinked {
		return PhaseWalletPending
	}

	playerUnattributed := in.LocalPlayer != nil && in.LocalPlayer.PlayerID == 0
	worldEmpty := in.EntityCount == 0 && in.InitialFoodTarget > 0
	loading := !in.HaveIdentity || !in.SubscriptionsApplied || !in.HaveConfig ||
		playerUnattributed || worldEmpty
	if loading && !in.Current.seated() {
		return PhaseLoading
	}

	if in.LocalPlayer != nil && in.LocalPlayer.PlayerID != 0 {
		switch {
		case in.OwnedCircleCount > 0:
			return PhasePlaying
		case in.LocalPlayer.Name != "":
			return PhaseDead
		default:
			return PhaseLogin
		}
	}
	return PhaseLogin
}
