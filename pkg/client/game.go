package client

import (
	"github.com/matchwire-dev/matchwire/pkg/event"
)

// GameEvent is one received event annotated at ingestion time with the
// aggregate's half index and a per-aggregate arrival sequence number. The
// sequence number exists purely for deterministic ordering when events share
// a timestamp and half.
type GameEvent struct {
	Event event.Event
	Half  int
	Seq   int
}

// GameState accumulates everything one reporting user has said about one
// game: the participant names, three running stat maps with last-write-wins
// merge semantics, and the ordered list of received events.
type GameState struct {
	TeamA string
	TeamB string

	GeneralStats map[string]string
	TeamAStats   map[string]string
	TeamBStats   map[string]string

	Events []GameEvent

	half    int
	nextSeq int
}

// halftimeKey is the general-updates key that drives the half index.
const halftimeKey = "before halftime"

func newGameState() *GameState {
	return &GameState{
		GeneralStats: make(map[string]string),
		TeamAStats:   make(map[string]string),
		TeamBStats:   make(map[string]string),
	}
}

// clone returns a deep copy so callers never observe later mutation.
func (g *GameState) clone() GameState {
	out := GameState{
		TeamA:        g.TeamA,
		TeamB:        g.TeamB,
		GeneralStats: copyMap(g.GeneralStats),
		TeamAStats:   copyMap(g.TeamAStats),
		TeamBStats:   copyMap(g.TeamBStats),
		Events:       make([]GameEvent, len(g.Events)),
		half:         g.half,
		nextSeq:      g.nextSeq,
	}
	copy(out.Events, g.Events)
	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func mergeUpdates(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

// applyHalftime flips the half index when the event's general updates carry
// a recognized halftime marker. Only the literal markers below flip; any
// other value leaves the half index unchanged, since producers emit
// inconsistent casing.
func (g *GameState) applyHalftime(updates map[string]string) {
	switch updates[halftimeKey] {
	case "false", "False", "FALSE", "0":
		g.half = 1
	case "true", "True", "TRUE", "1":
		g.half = 0
	}
}

// GameName derives the game topic from the two participant names.
func GameName(teamA, teamB string) string {
	return teamA + "_" + teamB
}

// IngestEvent merges one received event into the aggregate for
// (game, reportingUser), creating the aggregate on first sight. Participant
// names are fixed by the first event seen; stat maps merge key-by-key with
// last write winning; the half index is re-evaluated before the event is
// appended. Atomic with respect to concurrent ingestion and snapshots.
func (s *Session) IngestEvent(ev event.Event, reportingUser string) {
	key := gameKey{game: GameName(ev.TeamA, ev.TeamB), user: reportingUser}

	s.gameMu.Lock()
	defer s.gameMu.Unlock()

	g, ok := s.games[key]
	if !ok {
		g = newGameState()
		s.games[key] = g
	}
	if g.TeamA == "" {
		g.TeamA = ev.TeamA
	}
	if g.TeamB == "" {
		g.TeamB = ev.TeamB
	}

	mergeUpdates(g.GeneralStats, ev.GameUpdates)
	mergeUpdates(g.TeamAStats, ev.TeamAUpdates)
	mergeUpdates(g.TeamBStats, ev.TeamBUpdates)

	g.applyHalftime(ev.GameUpdates)

	g.Events = append(g.Events, GameEvent{Event: ev, Half: g.half, Seq: g.nextSeq})
	g.nextSeq++
}

// GameSnapshot returns a copy of the aggregate for (game, user). The second
// return is false when nothing has been ingested for that pair; callers
// conventionally substitute an empty default in that case.
func (s *Session) GameSnapshot(game, user string) (GameState, bool) {
	s.gameMu.Lock()
	defer s.gameMu.Unlock()

	g, ok := s.games[gameKey{game: game, user: user}]
	if !ok {
		return GameState{}, false
	}
	return g.clone(), true
}
