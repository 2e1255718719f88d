package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matchwire-dev/matchwire/pkg/event"
	"github.com/matchwire-dev/matchwire/pkg/protocol"
)

// tracerName is the instrumentation scope for client command spans.
const tracerName = "matchwire/client"

// Client owns one Session and one Transport and translates user intents
// into outgoing frames. Commands are serialized: one runs at a time, while
// the reader loop dispatches incoming frames concurrently.
type Client struct {
	transport Transport
	session   *Session
	config    *Config
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer

	mu         sync.Mutex // serializes command dispatch
	connected  atomic.Bool
	readerDone chan struct{}
}

// New creates a client over the given transport. A nil config uses
// DefaultConfig; a nil logger uses slog.Default.
func New(transport Transport, config *Config, logger *slog.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Pre-closed so the first login never waits for a prior reader loop.
	done := make(chan struct{})
	close(done)

	c := &Client{
		transport:  transport,
		session:    NewSession(),
		config:     config.Clone(),
		logger:     logger.With("component", "client"),
		tracer:     otel.Tracer(tracerName),
		readerDone: done,
	}
	c.session.SetDebug(config.Debug)
	return c
}

// WithMetrics attaches a metrics collector and returns the client for chaining.
func (c *Client) WithMetrics(m *Metrics) *Client {
	c.metrics = m
	return c
}

// Session exposes the session state machine, mainly for observers and tests.
func (c *Client) Session() *Session {
	return c.session
}

// LoggedIn reports whether the session is logged in.
func (c *Client) LoggedIn() bool {
	return c.session.LoggedIn()
}

// UserName returns the local user identity.
func (c *Client) UserName() string {
	return c.session.UserName()
}

// SnapshotGame returns a copy of the aggregate for (game, user), or false
// when nothing has been ingested for that pair.
func (c *Client) SnapshotGame(game, user string) (GameState, bool) {
	return c.session.GameSnapshot(game, user)
}

// Login connects the transport if needed, starts the reader loop, and sends
// CONNECT. The session moves to login-pending; the logged-in transition
// happens when the reader loop observes the broker's confirmation.
func (c *Client) Login(ctx context.Context, user, pass string) error {
	ctx, span := c.startSpan(ctx, "login", attribute.String("user", user))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.LoggedIn() {
		return c.spanErr(span, ErrAlreadyLoggedIn)
	}

	if !c.connected.Load() {
		// The previous reader loop must have fully exited before the
		// session is cleared for a fresh connection attempt.
		<-c.readerDone
		c.session.Clear()
		c.session.SetDebug(c.config.Debug)

		if err := c.transport.Connect(ctx); err != nil {
			return c.spanErr(span, err)
		}
		c.connected.Store(true)

		done := make(chan struct{})
		c.readerDone = done
		go c.readLoop(done)
	}

	c.session.SetUserName(user)
	c.session.BeginLogin()

	f := protocol.NewFrame(protocol.CommandConnect)
	f.SetHeader("accept-version", c.config.AcceptVersion)
	f.SetHeader("host", c.config.VHost)
	f.SetHeader("login", user)
	f.SetHeader("passcode", pass)

	if err := c.send(f); err != nil {
		return c.spanErr(span, err)
	}
	c.logger.Info("login requested", "user", user)
	return nil
}

// Join subscribes to a game topic. The subscription and its pending receipt
// correlation are registered before the frame is sent and rolled back if the
// send fails.
func (c *Client) Join(ctx context.Context, topic string) error {
	_, span := c.startSpan(ctx, "join", attribute.String("topic", topic))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.LoggedIn() {
		return c.spanErr(span, ErrNotLoggedIn)
	}
	if c.session.IsSubscribed(topic) {
		return c.spanErr(span, ErrAlreadySubscribed)
	}

	subID := c.session.NextSubscriptionID()
	receiptID := c.session.NextReceiptID()
	c.session.AddSubscription(topic, subID)
	c.session.RegisterReceiptAction(receiptID, ReceiptJoin, topic)

	f := protocol.NewFrame(protocol.CommandSubscribe)
	f.SetHeader("destination", "/"+topic)
	f.SetHeader("id", fmt.Sprint(subID))
	f.SetHeader("receipt", fmt.Sprint(receiptID))

	if err := c.send(f); err != nil {
		c.session.RemoveSubscription(topic)
		c.session.TakeReceiptAction(receiptID)
		return c.spanErr(span, err)
	}

	c.metrics.setSubscriptions(c.session.SubscriptionCount())
	c.logger.Info("joined topic", "topic", topic, "subscription_id", subID)
	return nil
}

// Exit unsubscribes from a game topic. The registry entry is removed before
// the frame is sent and restored if the send fails, so the local view never
// drifts from what was actually requested.
func (c *Client) Exit(ctx context.Context, topic string) error {
	_, span := c.startSpan(ctx, "exit", attribute.String("topic", topic))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.LoggedIn() {
		return c.spanErr(span, ErrNotLoggedIn)
	}
	subID, ok := c.session.SubscriptionID(topic)
	if !ok {
		return c.spanErr(span, ErrNotSubscribed)
	}

	receiptID := c.session.NextReceiptID()
	c.session.RemoveSubscription(topic)
	c.session.RegisterReceiptAction(receiptID, ReceiptExit, topic)

	f := protocol.NewFrame(protocol.CommandUnsubscribe)
	f.SetHeader("id", fmt.Sprint(subID))
	f.SetHeader("receipt", fmt.Sprint(receiptID))

	if err := c.send(f); err != nil {
		c.session.AddSubscription(topic, subID)
		c.session.TakeReceiptAction(receiptID)
		return c.spanErr(span, err)
	}

	c.metrics.setSubscriptions(c.session.SubscriptionCount())
	c.logger.Info("exited topic", "topic", topic, "subscription_id", subID)
	return nil
}

// Report loads an event-source file, ingests each event locally under the
// local user, and sends one SEND frame per event to the game topic. A format
// error in the file aborts the command before anything is sent; the session
// is left intact.
func (c *Client) Report(ctx context.Context, path string) error {
	_, span := c.startSpan(ctx, "report", attribute.String("path", path))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.LoggedIn() {
		return c.spanErr(span, ErrNotLoggedIn)
	}

	teamA, teamB, events, err := event.LoadFile(path)
	if err != nil {
		return c.spanErr(span, err)
	}
	game := GameName(teamA, teamB)
	user := c.session.UserName()

	for i := range events {
		ev := events[i]
		c.session.IngestEvent(ev, user)

		f := protocol.NewFrame(protocol.CommandSend)
		f.SetHeader("destination", "/"+game)
		f.Body = ev.MarshalBody(user)

		if err := c.send(f); err != nil {
			return c.spanErr(span, fmt.Errorf("client: report event %d/%d: %w", i+1, len(events), err))
		}
	}

	span.SetAttributes(attribute.Int("events", len(events)))
	c.logger.Info("report sent", "game", game, "events", len(events))
	return nil
}

// Logout sends DISCONNECT with a receipt and waits, bounded by
// Config.LogoutTimeout, for the reader loop to observe the broker's
// acknowledgment. On timeout the connection is discarded and the session
// force-transitions to logged-out; ErrLogoutTimeout flags the forced path.
func (c *Client) Logout(ctx context.Context) error {
	_, span := c.startSpan(ctx, "logout")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.LoggedIn() {
		return c.spanErr(span, ErrNotLoggedIn)
	}

	receiptID := c.session.NextReceiptID()
	c.session.SetDisconnectReceiptID(receiptID)
	done := c.session.LogoutDone()

	f := protocol.NewFrame(protocol.CommandDisconnect)
	f.SetHeader("receipt", fmt.Sprint(receiptID))

	if err := c.send(f); err != nil {
		return c.spanErr(span, err)
	}
	c.logger.Info("logging out", "receipt_id", receiptID)

	select {
	case <-done:
		c.logger.Info("logged out")
		return nil
	case <-time.After(c.config.LogoutTimeout):
		c.session.SetLoggedIn(false)
		c.transport.Close()
		c.connected.Store(false)
		return c.spanErr(span, ErrLogoutTimeout)
	}
}

// Close discards the transport without a disconnect handshake. The reader
// loop, if running, exits on the resulting receive error.
func (c *Client) Close() error {
	c.connected.Store(false)
	return c.transport.Close()
}

// Done returns a channel closed when the current reader loop has exited.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readerDone
}

// send serializes and transmits one frame, recording metrics either way.
func (c *Client) send(f *protocol.Frame) error {
	data := f.Serialize()
	if c.session.Debug() {
		c.logger.Debug("frame out", "command", f.Command.String(), "bytes", len(data))
	}
	if err := c.transport.Send(data); err != nil {
		c.metrics.recordSendError()
		return err
	}
	c.metrics.recordFrameSent(f.Command.String())
	return nil
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "matchwire."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

// spanErr records err on the span and passes it through.
func (c *Client) spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
