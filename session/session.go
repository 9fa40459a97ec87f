// Package session owns the live connection to the game backend: the table
// mirrors, the subscription latch, the phase machine inputs, and the
// command dispatcher. A Session is explicitly constructed and explicitly
// closed; there are no ambient singletons.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vpalmerio/MoveGameDB/game"
	"github.com/vpalmerio/MoveGameDB/metrics"
	"github.com/vpalmerio/MoveGameDB/store"
	"github.com/vpalmerio/MoveGameDB/transport"
	"github.com/vpalmerio/MoveGameDB/wallet"
)

// DefaultFoodTarget stands in for the config row's food target when the
// server predates that column. Matches the server's spawn target.
const DefaultFoodTarget = 600

// Session glues the replication stream to the local mirrors and derives
// the game phase. All mutation happens through transport callbacks
// serialized under one mutex; consumers only ever see copies via Frame.
type Session struct {
	logger *slog.Logger
	conn   transport.Conn
	wallet wallet.Wallet
	tables *store.Tables

	mu            sync.Mutex
	closed        bool
	connected     bool
	everConnected bool
	identity      string
	phase         game.Phase
	latch         *appliedLatch
	errMsg        string
	walletErr     string

	// lifeMu fences mirror mutations against teardown: callbacks hold the
	// read side while touching the mirrors, Close takes the write side as a
	// barrier so no in-flight apply outlives it.
	lifeMu sync.RWMutex

	cancels []func()
}

// New wires a session onto a transport connection. wallet may be nil, in
// which case the wallet gate is skipped.
func New(conn transport.Conn, w wallet.Wallet, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		logger: logger.With("component", "session"),
		conn:   conn,
		wallet: w,
		tables: store.NewTables(logger),
		phase:  game.PhaseConnecting,
		latch:  newAppliedLatch(store.TableNames),
	}

	s.cancels = append(s.cancels,
		conn.OnConnect(s.handleConnect),
		conn.OnDisconnect(s.handleDisconnect),
		conn.OnConnectError(s.handleConnectError),
	)
	for _, table := range store.TableNames {
		s.cancels = append(s.cancels, conn.OnRowEvent(table, s.handleRowEvent))
	}
	s.tables.OnChange(s.handleStoreChanged)
	return s
}

// Start links the wallet (when configured) and kicks off the connection
// loop. It does not block; progress shows up through Frame.
func (s *Session) Start(ctx context.Context) {
	if s.wallet != nil {
		if err := s.wallet.Connect(ctx); err != nil {
			s.mu.Lock()
			s.walletErr = err.Error()
			s.mu.Unlock()
			s.logger.Warn("wallet link failed", "error", err)
		}
	}
	s.conn.Connect(ctx)
}

// Close deregisters every callback and tears down the connection. Late
// callbacks from in-flight work become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	// Wait for any in-flight mirror mutation to drain.
	s.lifeMu.Lock()
	s.lifeMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	s.conn.Disconnect()
	s.logger.Info("session closed")
}

func (s *Session) handleConnect(identity, token string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.connected = true
	s.identity = identity
	s.errMsg = ""
	s.latch.Reset()
	reconnect := s.everConnected
	s.everConnected = true
	s.mu.Unlock()

	s.logger.Info("connected", "identity", identity)
	if reconnect {
		metrics.Reconnects.Inc()
	}
	s.applyGuarded(func() { s.tables.Reset() })

	for _, table := range store.TableNames {
		table := table
		s.conn.Subscribe(queryFor(table),
			func() { s.handleApplied(table) },
			func(msg string) { s.handleSubscriptionError(table, msg) },
		)
	}
	s.recompute()
}

func (s *Session) handleApplied(table string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	first := s.latch.MarkApplied(table)
	completed := first && s.latch.Done()
	s.mu.Unlock()

	// Only the first acknowledgement bulk-loads the mirror. A repeated
	// callback carries the connect-time snapshot, and reloading it would
	// discard every row change applied since.
	if first {
		s.applyGuarded(func() { s.tables.InitTable(table, s.conn.Rows(table)) })
	}
	if completed {
		s.logger.Info("all subscriptions applied")
	}
	s.recompute()
}

func (s *Session) handleSubscriptionError(table, msg string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.errMsg = fmt.Sprintf("subscription %s failed: %s", table, msg)
	s.mu.Unlock()

	s.logger.Error("subscription failed", "table", table, "message", msg)
	metrics.SubscriptionErrors.Inc()
}

func (s *Session) handleDisconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.connected = false
	s.identity = ""
	s.latch.Reset()
	s.recomputeLocked()
	s.mu.Unlock()
	s.logger.Warn("disconnected")
}

func (s *Session) handleConnectError(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.errMsg = err.Error()
	s.recomputeLocked()
	s.mu.Unlock()
	s.logger.Warn("connect error", "error", err)
}

func (s *Session) handleRowEvent(ev transport.RowEvent) {
	// Apply fires the store's change notification, which recomputes phase.
	s.applyGuarded(func() { s.tables.Apply(ev) })
}

// applyGuarded runs a mirror mutation unless the session is closed. The
// closed check and the mutation both happen under lifeMu's read side, so a
// concurrent Close cannot slip between them: it either sees the mutation
// drained at its barrier or closes before the check and the mutation never
// runs. s.mu is not held across fn; mirror notifications re-enter the
// session to recompute the phase.
func (s *Session) applyGuarded(fn func()) {
	s.lifeMu.RLock()
	defer s.lifeMu.RUnlock()
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	fn()
}

func (s *Session) handleStoreChanged() {
	s.recompute()
}

func (s *Session) recompute() {
	s.mu.Lock()
	if !s.closed {
		s.recomputeLocked()
	}
	s.mu.Unlock()
}

// recomputeLocked re-derives the phase from connection signals plus the
// current mirrors. Caller holds s.mu.
func (s *Session) recomputeLocked() {
	in := game.PhaseInputs{
		Current:              s.phase,
		Connected:            s.connected,
		WalletRequired:       s.wallet != nil,
		WalletLinked:         s.wallet != nil && s.wallet.IsConnected(),
		HaveIdentity:         s.identity != "",
		SubscriptionsApplied: s.latch.Done(),
		EntityCount:          s.tables.Entities.Len(),
	}
	if cfg, ok := s.tables.ConfigRow(); ok {
		in.HaveConfig = true
		in.InitialFoodTarget = cfg.InitialFoodTarget
		if in.InitialFoodTarget == 0 {
			in.InitialFoodTarget = DefaultFoodTarget
		}
	}
	if p, ok := s.tables.Players.Get(s.identity); ok && s.identity != "" {
		in.LocalPlayer = &p
		circles := game.ComposeCircles(s.tables.Circles.Snapshot(), s.tables.Entities.Snapshot())
		in.OwnedCircleCount = len(game.OwnedCircles(circles, p.PlayerID))
	}

	next := game.NextPhase(in)
	if next != s.phase {
		s.logger.Info("phase change", "from", s.phase.String(), "to", next.String())
		s.phase = next
		metrics.CurrentPhase.Set(float64(next))
	}
}

// Phase returns the current game phase.
func (s *Session) Phase() game.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func queryFor(table string) string {
	return "SELECT * FROM " + table
}
