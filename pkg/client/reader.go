package client

import (
	"strconv"

	"github.com/matchwire-dev/matchwire/pkg/event"
	"github.com/matchwire-dev/matchwire/pkg/protocol"
)

// readLoop continuously receives frame blocks from the transport, decodes
// them, and dispatches by command into the session. It runs for the lifetime
// of one connection attempt and blocks only in Receive, which unblocks on
// data, transport closure, or transport error.
//
// The deferred teardown guarantees the login flag is never left true after
// the loop exits, and unblocks any Logout still waiting on the handshake.
func (c *Client) readLoop(done chan struct{}) {
	defer func() {
		c.session.SetLoggedIn(false)
		c.session.finishLogout()
		c.transport.Close()
		c.connected.Store(false)
		close(done)
	}()

	for {
		raw, err := c.transport.Receive()
		if err != nil {
			c.logger.Info("disconnected from broker", "error", err)
			return
		}

		frame := protocol.Parse(raw)
		if c.session.Debug() {
			c.logger.Debug("frame in", "command", frame.Command.String(), "bytes", len(raw))
		}

		switch frame.Command {
		case protocol.CommandNone:
			c.metrics.recordReadError()
			c.logger.Error("unparseable frame", "bytes", len(raw))

		case protocol.CommandConnected:
			c.metrics.recordFrameReceived("CONNECTED")
			c.session.SetLoggedIn(true)
			c.logger.Info("login successful", "user", c.session.UserName())

		case protocol.CommandError:
			c.metrics.recordFrameReceived("ERROR")
			c.logger.Error("broker error",
				"message", frame.Header("message"),
				"detail", frame.Body)
			if c.config.DisconnectOnError {
				return
			}

		case protocol.CommandMessage:
			c.metrics.recordFrameReceived("MESSAGE")
			c.handleMessage(frame)

		case protocol.CommandReceipt:
			c.metrics.recordFrameReceived("RECEIPT")
			if c.handleReceipt(frame) {
				return
			}

		default:
			c.metrics.recordFrameReceived("UNKNOWN")
			c.logger.Warn("unrecognized frame", "command", frame.Token, "body", frame.Body)
		}
	}
}

// handleMessage ingests one delivered event. Self-authored events come back
// as echoes of our own reports and are already in the aggregates, so they
// are skipped; a malformed body is logged and dropped without touching
// session state.
func (c *Client) handleMessage(frame *protocol.Frame) {
	reporter := event.Reporter(frame.Body)
	if reporter != "" && reporter == c.session.UserName() {
		c.metrics.recordEventSkipped()
		c.logger.Debug("skipped self-authored event echo")
		return
	}

	ev, err := event.ParseBody(frame.Body)
	if err != nil {
		c.metrics.recordReadError()
		c.logger.Error("malformed event body", "error", err)
		return
	}

	c.session.IngestEvent(ev, reporter)
	c.metrics.recordEventIngested()
	c.logger.Debug("event ingested",
		"game", GameName(ev.TeamA, ev.TeamB),
		"reporter", reporter,
		"event", ev.Name,
		"time", ev.Time)
}

// handleReceipt correlates a receipt with its pending action. Returns true
// when the receipt completes the disconnect handshake, which terminates the
// reader loop.
func (c *Client) handleReceipt(frame *protocol.Frame) (terminal bool) {
	id, err := strconv.Atoi(frame.Header("receipt-id"))
	if err != nil {
		c.logger.Error("receipt with bad id", "receipt_id", frame.Header("receipt-id"))
		return false
	}

	if action, ok := c.session.TakeReceiptAction(id); ok {
		c.logger.Info("receipt confirmed",
			"action", action.Kind.String(),
			"topic", action.Topic,
			"receipt_id", id)
		c.metrics.setSubscriptions(c.session.SubscriptionCount())
	}

	if id == c.session.DisconnectReceiptID() {
		c.session.SetLoggedIn(false)
		c.session.finishLogout()
		c.logger.Info("disconnect acknowledged", "receipt_id", id)
		return true
	}
	return false
}
