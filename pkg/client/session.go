// Package client implements the broker-facing side of a matchwire client:
// a concurrent session-state machine, the background frame reader loop, and
// the command dispatch layer that turns user intents into outgoing frames.
//
// One Session instance is shared by exactly two actors: the reader loop
// (background, continuous) and the command path (foreground, one command at
// a time). The Session serializes access internally with fine-grained locks
// per logical sub-state so the two paths rarely contend.
package client

import (
	"sync"
	"sync/atomic"
)

// loginState tracks the session's position in the login lifecycle.
type loginState int32

const (
	loggedOut loginState = iota
	loginPending
	loggedIn
)

// ReceiptKind classifies the action awaiting a broker receipt.
type ReceiptKind uint8

const (
	ReceiptJoin ReceiptKind = iota
	ReceiptExit
)

// String returns the user-facing verb for the receipt kind.
func (k ReceiptKind) String() string {
	switch k {
	case ReceiptJoin:
		return "join"
	case ReceiptExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ReceiptAction describes a pending action registered before a request was
// sent, to be reported when the matching receipt arrives.
type ReceiptAction struct {
	Kind  ReceiptKind
	Topic string
}

// noDisconnectReceipt marks the disconnect receipt id as unset.
const noDisconnectReceipt = -1

// Session holds all mutable state for one connection attempt: login status,
// identity, subscription registry, receipt correlation table, and per-game
// event aggregates. Safe for concurrent use by the reader loop and the
// command path; Clear is the one exception (see its doc).
type Session struct {
	state atomic.Int32
	debug atomic.Bool

	userMu   sync.RWMutex
	userName string

	subSeq     atomic.Int64
	receiptSeq atomic.Int64

	subMu     sync.RWMutex
	topicToID map[string]int
	idToTopic map[int]string

	receiptMu sync.Mutex
	pending   map[int]ReceiptAction

	disconnectReceipt atomic.Int64

	gameMu sync.Mutex
	games  map[gameKey]*GameState

	// logoutCh is closed by the reader loop when the disconnect receipt is
	// observed or the loop exits, unblocking a waiting Logout.
	logoutMu sync.Mutex
	logoutCh chan struct{}
}

// gameKey identifies one aggregate: events for one game as seen through one
// reporting user.
type gameKey struct {
	game string
	user string
}

// NewSession creates a session in the logged-out state.
func NewSession() *Session {
	s := &Session{}
	s.reset()
	return s
}

// reset reinitializes every field to its initial value.
func (s *Session) reset() {
	s.state.Store(int32(loggedOut))
	s.userMu.Lock()
	s.userName = ""
	s.userMu.Unlock()
	s.subSeq.Store(0)
	s.receiptSeq.Store(0)
	s.subMu.Lock()
	s.topicToID = make(map[string]int)
	s.idToTopic = make(map[int]string)
	s.subMu.Unlock()
	s.receiptMu.Lock()
	s.pending = make(map[int]ReceiptAction)
	s.receiptMu.Unlock()
	s.disconnectReceipt.Store(noDisconnectReceipt)
	s.gameMu.Lock()
	s.games = make(map[gameKey]*GameState)
	s.gameMu.Unlock()
	s.logoutMu.Lock()
	s.logoutCh = make(chan struct{})
	s.logoutMu.Unlock()
}

// Clear resets the session to its initial state for a fresh connection
// attempt. It must not be invoked concurrently with any other method on the
// same instance: the reader loop for the previous connection has to have
// fully exited first.
func (s *Session) Clear() {
	s.reset()
}

// SetLoggedIn records a definitive login state transition. true moves the
// machine to logged-in; false moves it to logged-out.
func (s *Session) SetLoggedIn(v bool) {
	if v {
		s.state.Store(int32(loggedIn))
	} else {
		s.state.Store(int32(loggedOut))
	}
}

// BeginLogin marks the session as awaiting a login confirmation. Only valid
// from the logged-out state; the transition is a no-op otherwise.
func (s *Session) BeginLogin() {
	s.state.CompareAndSwap(int32(loggedOut), int32(loginPending))
}

// LoggedIn reports whether a login confirmation has been received and no
// terminating condition has occurred since.
func (s *Session) LoggedIn() bool {
	return loginState(s.state.Load()) == loggedIn
}

// SetDebug toggles verbose frame logging.
func (s *Session) SetDebug(v bool) { s.debug.Store(v) }

// Debug reports whether verbose frame logging is enabled.
func (s *Session) Debug() bool { return s.debug.Load() }

// SetUserName records the local user identity.
func (s *Session) SetUserName(name string) {
	s.userMu.Lock()
	s.userName = name
	s.userMu.Unlock()
}

// UserName returns the local user identity.
func (s *Session) UserName() string {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	return s.userName
}

// NextSubscriptionID returns a strictly increasing subscription id, starting
// at 0. Ids are never reused within a session lifetime.
func (s *Session) NextSubscriptionID() int {
	return int(s.subSeq.Add(1) - 1)
}

// NextReceiptID returns a strictly increasing receipt id, starting at 0.
// Ids are never reused within a session lifetime.
func (s *Session) NextReceiptID() int {
	return int(s.receiptSeq.Add(1) - 1)
}

// AddSubscription records topic ↔ id in both directions.
func (s *Session) AddSubscription(topic string, id int) {
	s.subMu.Lock()
	s.topicToID[topic] = id
	s.idToTopic[id] = topic
	s.subMu.Unlock()
}

// RemoveSubscription drops both directions of the mapping for topic.
// Removing an unknown topic is a no-op.
func (s *Session) RemoveSubscription(topic string) {
	s.subMu.Lock()
	if id, ok := s.topicToID[topic]; ok {
		delete(s.topicToID, topic)
		delete(s.idToTopic, id)
	}
	s.subMu.Unlock()
}

// SubscriptionID returns the id registered for topic.
func (s *Session) SubscriptionID(topic string) (int, bool) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	id, ok := s.topicToID[topic]
	return id, ok
}

// IsSubscribed reports whether topic has an active subscription.
func (s *Session) IsSubscribed(topic string) bool {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	_, ok := s.topicToID[topic]
	return ok
}

// SubscriptionCount returns the number of active subscriptions.
func (s *Session) SubscriptionCount() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.topicToID)
}

// SetDisconnectReceiptID records the receipt id whose arrival signals that
// the broker acknowledged the disconnect request.
func (s *Session) SetDisconnectReceiptID(id int) {
	s.disconnectReceipt.Store(int64(id))
}

// DisconnectReceiptID returns the registered disconnect receipt id, or -1
// when none is registered.
func (s *Session) DisconnectReceiptID() int {
	return int(s.disconnectReceipt.Load())
}

// RegisterReceiptAction records the pending action for a receipt id, before
// the request frame is sent.
func (s *Session) RegisterReceiptAction(id int, kind ReceiptKind, topic string) {
	s.receiptMu.Lock()
	s.pending[id] = ReceiptAction{Kind: kind, Topic: topic}
	s.receiptMu.Unlock()
}

// TakeReceiptAction atomically looks up and removes the pending action for
// id. The second return is false when no action is registered, which also
// covers a repeated take of the same id.
func (s *Session) TakeReceiptAction(id int) (ReceiptAction, bool) {
	s.receiptMu.Lock()
	defer s.receiptMu.Unlock()
	action, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return action, ok
}

// LogoutDone returns a channel closed when the disconnect handshake
// completes or the reader loop exits.
func (s *Session) LogoutDone() <-chan struct{} {
	s.logoutMu.Lock()
	defer s.logoutMu.Unlock()
	return s.logoutCh
}

// finishLogout closes the logout channel. Safe to call more than once.
func (s *Session) finishLogout() {
	s.logoutMu.Lock()
	defer s.logoutMu.Unlock()
	select {
	case <-s.logoutCh:
	default:
		close(s.logoutCh)
	}
}
