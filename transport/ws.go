package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	reconnectDelay = 5 * time.Second
	maxMessageSize = 1 << 20
)

// WS is the websocket implementation of Conn. One WS survives any number of
// reconnects and registered callbacks carry over, but subscriptions are not
// replayed automatically: each dial surfaces as an OnConnect callback, and
// consumers re-issue their Subscribe calls from there.
type WS struct {
	url    string
	module string
	tokens *TokenStore
	logger *slog.Logger

	mu           sync.Mutex
	conn         *websocket.Conn
	closed       bool
	nextHandler  int
	onConnect    map[int]func(identity, token string)
	onDisconnect map[int]func()
	onConnectErr map[int]func(error)
	onRow        map[string]map[int]func(RowEvent)
	subs         map[string]*subscription
	snapshots    map[string][]json.RawMessage

	writeMu sync.Mutex
}

type subscription struct {
	id        string
	onApplied func()
	onError   func(string)
}

func NewWS(url, module string, tokens *TokenStore, logger *slog.Logger) *WS {
	if logger == nil {
		logger = slog.Default()
	}
	return &WS{
		url:          url,
		module:       module,
		tokens:       tokens,
		logger:       logger.With("component", "transport"),
		onConnect:    make(map[int]func(string, string)),
		onDisconnect: make(map[int]func()),
		onConnectErr: make(map[int]func(error)),
		onRow:        make(map[string]map[int]func(RowEvent)),
		subs:         make(map[string]*subscription),
		snapshots:    make(map[string][]json.RawMessage),
	}
}

func (w *WS) OnConnect(fn func(identity, token string)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextHandler
	w.nextHandler++
	w.onConnect[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.onConnect, id)
	}
}

func (w *WS) OnDisconnect(fn func()) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextHandler
	w.nextHandler++
	w.onDisconnect[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.onDisconnect, id)
	}
}

func (w *WS) OnConnectError(fn func(err error)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextHandler
	w.nextHandler++
	w.onConnectErr[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.onConnectErr, id)
	}
}

func (w *WS) OnRowEvent(table string, fn func(RowEvent)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextHandler
	w.nextHandler++
	if w.onRow[table] == nil {
		w.onRow[table] = make(map[int]func(RowEvent))
	}
	w.onRow[table][id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.onRow[table], id)
	}
}

// Connect runs the dial/read/reconnect loop in a goroutine until the
// context is cancelled or Disconnect is called.
func (w *WS) Connect(ctx context.Context) {
	go w.run(ctx)
}

func (w *WS) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		w.logger.Info("dialing replication backend", "url", w.url)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
		if err != nil {
			w.logger.Warn("dial failed", "error", err)
			w.fireConnectError(err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		w.mu.Lock()
		w.conn = conn
		w.snapshots = make(map[string][]json.RawMessage)
		token := ""
		if w.tokens != nil {
			token = w.tokens.Load()
		}
		w.mu.Unlock()

		// Present the persisted token so the backend resumes our identity.
		if err := w.write(clientEnvelope{Type: "hello", Module: w.module, Token: token}); err != nil {
			w.logger.Warn("hello failed", "error", err)
			conn.Close()
			continue
		}

		w.readLoop(ctx, conn)

		w.mu.Lock()
		w.conn = nil
		w.mu.Unlock()
		w.fireDisconnect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// readLoop pumps frames until the connection dies. A side goroutine keeps
// pings flowing; pongs push the read deadline forward.
func (w *WS) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client shutting down"),
					time.Now().Add(writeWait))
				return
			case <-ticker.C:
				w.writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				w.writeMu.Unlock()
				if err != nil {
					w.logger.Debug("ping failed", "error", err)
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Warn("read error", "error", err)
			}
			return
		}
		env, err := decodeServerEnvelope(data)
		if err != nil {
			w.logger.Warn("bad frame", "error", err)
			continue
		}
		w.handle(env)
	}
}

func (w *WS) handle(env serverEnvelope) {
	switch env.Type {
	case envIdentity:
		if w.tokens != nil && env.Token != "" {
			if err := w.tokens.Save(env.Token); err != nil {
				w.logger.Warn("persist token failed", "error", err)
			}
		}
		w.mu.Lock()
		handlers := make([]func(string, string), 0, len(w.onConnect))
		for _, fn := range w.onConnect {
			handlers = append(handlers, fn)
		}
		w.mu.Unlock()
		for _, fn := range handlers {
			fn(env.Identity, env.Token)
		}

	case envSnapshot:
		w.mu.Lock()
		w.snapshots[env.Table] = env.Rows
		w.mu.Unlock()

	case envApplied:
		w.mu.Lock()
		sub := w.subs[env.Query]
		w.mu.Unlock()
		if sub != nil && sub.onApplied != nil {
			sub.onApplied()
		}

	case envError:
		w.mu.Lock()
		sub := w.subs[env.Query]
		w.mu.Unlock()
		if sub != nil && sub.onError != nil {
			sub.onError(env.Message)
			return
		}
		w.fireConnectError(errMessage(env.Message))

	default:
		ev, ok := env.rowEvent()
		if !ok {
			w.logger.Debug("unhandled envelope", "type", env.Type)
			return
		}
		w.mu.Lock()
		handlers := make([]func(RowEvent), 0, len(w.onRow[ev.Table]))
		for _, fn := range w.onRow[ev.Table] {
			handlers = append(handlers, fn)
		}
		w.mu.Unlock()
		for _, fn := range handlers {
			fn(ev)
		}
	}
}

func (w *WS) Subscribe(query string, onApplied func(), onError func(msg string)) {
	sub := &subscription{
		id:        uuid.New().String(),
		onApplied: onApplied,
		onError:   onError,
	}
	w.mu.Lock()
	w.subs[query] = sub
	w.mu.Unlock()

	if err := w.write(clientEnvelope{Type: "subscribe", ID: sub.id, Query: query}); err != nil {
		w.logger.Warn("subscribe failed", "query", query, "error", err)
		if onError != nil {
			onError(err.Error())
		}
	}
}

func (w *WS) Rows(table string) []json.RawMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	rows := w.snapshots[table]
	out := make([]json.RawMessage, len(rows))
	copy(out, rows)
	return out
}

func (w *WS) CallReducer(name string, args any) error {
	return w.write(clientEnvelope{Type: "call", ID: uuid.New().String(), Reducer: name, Args: args})
}

func (w *WS) Disconnect() {
	w.mu.Lock()
	w.closed = true
	conn := w.conn
	w.conn = nil
	w.mu.Unlock()
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		conn.Close()
	}
}

func (w *WS) write(env clientEnvelope) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WS) fireDisconnect() {
	w.mu.Lock()
	handlers := make([]func(), 0, len(w.onDisconnect))
	for _, fn := range w.onDisconnect {
		handlers = append(handlers, fn)
	}
	w.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (w *WS) fireConnectError(err error) {
	w.mu.Lock()
	handlers := make([]func(error), 0, len(w.onConnectErr))
	for _, fn := range w.onConnectErr {
		handlers = append(handlers, fn)
	}
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(err)
	}
}

type errMessage string

func (e errMessage) Error() string { return string(e) }

var errNotConnected = errMessage("not connected")
