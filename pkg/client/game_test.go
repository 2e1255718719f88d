package client

import (
	"reflect"
	"testing"

	"github.com/matchwire-dev/matchwire/pkg/event"
)

func testEvent(name string, time int) event.Event {
	return event.Event{
		TeamA: "teamX",
		TeamB: "teamY",
		Name:  name,
		Time:  time,
	}
}

func TestGameName(t *testing.T) {
	if got := GameName("teamX", "teamY"); got != "teamX_teamY" {
		t.Errorf("GameName() = %q, want teamX_teamY", got)
	}
}

func TestIngestCreatesAggregate(t *testing.T) {
	s := NewSession()

	if _, ok := s.GameSnapshot("teamX_teamY", "alice"); ok {
		t.Fatal("snapshot found before any ingestion")
	}

	s.IngestEvent(testEvent("kickoff", 0), "alice")

	state, ok := s.GameSnapshot("teamX_teamY", "alice")
	if !ok {
		t.Fatal("snapshot not found after ingestion")
	}
	if state.TeamA != "teamX" || state.TeamB != "teamY" {
		t.Errorf("teams = %q,%q, want teamX,teamY", state.TeamA, state.TeamB)
	}
	if len(state.Events) != 1 {
		t.Fatalf("len(Events) = %d, want 1", len(state.Events))
	}
	if state.Events[0].Event.Name != "kickoff" {
		t.Errorf("event name = %q, want kickoff", state.Events[0].Event.Name)
	}
}

func TestIngestKeysByUser(t *testing.T) {
	s := NewSession()
	s.IngestEvent(testEvent("kickoff", 0), "alice")
	s.IngestEvent(testEvent("kickoff", 0), "bob")
	s.IngestEvent(testEvent("goal", 7), "bob")

	alice, _ := s.GameSnapshot("teamX_teamY", "alice")
	bob, _ := s.GameSnapshot("teamX_teamY", "bob")
	if len(alice.Events) != 1 {
		t.Errorf("alice events = %d, want 1", len(alice.Events))
	}
	if len(bob.Events) != 2 {
		t.Errorf("bob events = %d, want 2", len(bob.Events))
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	s := NewSession()

	ev1 := testEvent("kickoff", 0)
	ev1.GameUpdates = map[string]string{"active": "true", "attendance": "20000"}
	ev1.TeamAUpdates = map[string]string{"goals": "0"}
	s.IngestEvent(ev1, "alice")

	ev2 := testEvent("goal", 14)
	ev2.GameUpdates = map[string]string{"attendance": "21000"}
	ev2.TeamAUpdates = map[string]string{"goals": "1"}
	ev2.TeamBUpdates = map[string]string{"possession": "48%"}
	s.IngestEvent(ev2, "alice")

	state, _ := s.GameSnapshot("teamX_teamY", "alice")

	wantGeneral := map[string]string{"active": "true", "attendance": "21000"}
	if !reflect.DeepEqual(state.GeneralStats, wantGeneral) {
		t.Errorf("GeneralStats = %v, want %v", state.GeneralStats, wantGeneral)
	}
	if got := state.TeamAStats["goals"]; got != "1" {
		t.Errorf("TeamAStats[goals] = %q, want 1", got)
	}
	if got := state.TeamBStats["possession"]; got != "48%" {
		t.Errorf("TeamBStats[possession] = %q, want 48%%", got)
	}
}

func TestHalftimeFlip(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		want   []int
	}{
		{"false flips to second half", "false", []int{0, 1}},
		{"capitalized False flips", "False", []int{0, 1}},
		{"uppercase FALSE flips", "FALSE", []int{0, 1}},
		{"zero flips", "0", []int{0, 1}},
		{"unrecognized value holds", "maybe", []int{0, 0}},
		{"absent key holds", "", []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.IngestEvent(testEvent("kickoff", 0), "alice")

			ev := testEvent("whistle", 45)
			if tt.marker != "" {
				ev.GameUpdates = map[string]string{"before halftime": tt.marker}
			}
			s.IngestEvent(ev, "alice")

			state, _ := s.GameSnapshot("teamX_teamY", "alice")
			got := []int{state.Events[0].Half, state.Events[1].Half}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("halves = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHalftimeFlipBack(t *testing.T) {
	s := NewSession()

	half2 := testEvent("whistle", 45)
	half2.GameUpdates = map[string]string{"before halftime": "false"}
	s.IngestEvent(half2, "alice")

	half1 := testEvent("restart", 46)
	half1.GameUpdates = map[string]string{"before halftime": "true"}
	s.IngestEvent(half1, "alice")

	state, _ := s.GameSnapshot("teamX_teamY", "alice")
	if state.Events[0].Half != 1 {
		t.Errorf("flagged event half = %d, want 1", state.Events[0].Half)
	}
	if state.Events[1].Half != 0 {
		t.Errorf("flipped-back event half = %d, want 0", state.Events[1].Half)
	}
}

// The half index carries forward: events after the flip stay in the second
// half without repeating the marker.
func TestHalftimePersists(t *testing.T) {
	s := NewSession()

	flip := testEvent("whistle", 45)
	flip.GameUpdates = map[string]string{"before halftime": "false"}
	s.IngestEvent(flip, "alice")
	s.IngestEvent(testEvent("goal", 60), "alice")

	state, _ := s.GameSnapshot("teamX_teamY", "alice")
	if state.Events[1].Half != 1 {
		t.Errorf("later event half = %d, want 1", state.Events[1].Half)
	}
}

func TestSequenceNumbers(t *testing.T) {
	s := NewSession()
	for i := 0; i < 3; i++ {
		s.IngestEvent(testEvent("tick", 10), "alice")
	}

	state, _ := s.GameSnapshot("teamX_teamY", "alice")
	for i, ge := range state.Events {
		if ge.Seq != i {
			t.Errorf("Events[%d].Seq = %d, want %d", i, ge.Seq, i)
		}
	}
}

func TestTeamNamesFixedByFirstEvent(t *testing.T) {
	s := NewSession()
	s.IngestEvent(testEvent("kickoff", 0), "alice")

	// Same game key, different casing in a later event; the recorded names
	// must not change.
	later := testEvent("goal", 9)
	s.IngestEvent(later, "alice")

	state, _ := s.GameSnapshot("teamX_teamY", "alice")
	if state.TeamA != "teamX" || state.TeamB != "teamY" {
		t.Errorf("teams = %q,%q, want teamX,teamY", state.TeamA, state.TeamB)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewSession()
	ev := testEvent("kickoff", 0)
	ev.GameUpdates = map[string]string{"active": "true"}
	s.IngestEvent(ev, "alice")

	snap, _ := s.GameSnapshot("teamX_teamY", "alice")
	snap.GeneralStats["active"] = "tampered"
	snap.Events[0].Event.Name = "tampered"

	fresh, _ := s.GameSnapshot("teamX_teamY", "alice")
	if fresh.GeneralStats["active"] != "true" {
		t.Error("mutating a snapshot map leaked into session state")
	}
	if fresh.Events[0].Event.Name != "kickoff" {
		t.Error("mutating a snapshot event leaked into session state")
	}

	// And the reverse: ingesting after a snapshot must not grow it.
	s.IngestEvent(testEvent("goal", 5), "alice")
	if len(fresh.Events) != 1 {
		t.Errorf("earlier snapshot grew to %d events", len(fresh.Events))
	}
}
