// Package wallet is the optional wallet collaborator. When no wallet is
// configured the client skips the wallet gate entirely.
package wallet

import "context"

// Wallet links an on-chain address to the player. Connect may prompt or
// block on an external signer; Address is only meaningful once IsConnected
// reports true.
type Wallet interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Address() string
}

// Static is a wallet backed by a pre-configured address. It satisfies the
// gate immediately; real signer integrations implement the same interface.
type Static struct {
	addr      string
	connected bool
}

func NewStatic(addr string) *Static {
	return &Static{addr: addr}
}

func (s *Static) Connect(ctx context.Context) error {
	s.connected = true
	return nil
}

func (s *Static) IsConnected() bool { return s.connected }

func (s *Static) Address() string {
	if !s.connected {
		return ""
	}
	return s.addr
}
