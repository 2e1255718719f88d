package summary

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matchwire-dev/matchwire/pkg/client"
	"github.com/matchwire-dev/matchwire/pkg/event"
)

func gameEvent(name string, time, half, seq int) client.GameEvent {
	return client.GameEvent{
		Event: event.Event{
			TeamA:       "teamX",
			TeamB:       "teamY",
			Name:        name,
			Time:        time,
			Description: "report for " + name,
		},
		Half: half,
		Seq:  seq,
	}
}

func TestRender(t *testing.T) {
	state := client.GameState{
		TeamA:        "teamX",
		TeamB:        "teamY",
		GeneralStats: map[string]string{"attendance": "21000", "active": "true"},
		TeamAStats:   map[string]string{"goals": "1"},
		TeamBStats:   map[string]string{"goals": "0"},
		Events: []client.GameEvent{
			gameEvent("kickoff", 0, 0, 0),
			gameEvent("goal", 23, 0, 1),
		},
	}

	got := string(Render("teamX_teamY", state))
	want := "teamX vs teamY\n" +
		"Game stats:\n" +
		"General stats:\n" +
		"active: true\n" +
		"attendance: 21000\n" +
		"teamX stats:\n" +
		"goals: 1\n" +
		"teamY stats:\n" +
		"goals: 0\n" +
		"Game event reports:\n" +
		"0 - kickoff:\n\nreport for kickoff\n\n" +
		"23 - goal:\n\nreport for goal\n\n"

	if got != want {
		t.Errorf("Render() =\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderEventOrdering(t *testing.T) {
	// Scrambled arrival: second-half event first, then two first-half events
	// sharing a timestamp, arrival order decides between them.
	state := client.GameState{
		TeamA: "teamX",
		TeamB: "teamY",
		Events: []client.GameEvent{
			gameEvent("late goal", 80, 1, 0),
			gameEvent("second chance", 30, 0, 2),
			gameEvent("first chance", 30, 0, 1),
		},
	}

	got := string(Render("teamX_teamY", state))
	first := strings.Index(got, "first chance")
	second := strings.Index(got, "second chance")
	late := strings.Index(got, "late goal")
	if first < 0 || second < 0 || late < 0 {
		t.Fatalf("missing events in:\n%s", got)
	}
	if !(first < second && second < late) {
		t.Errorf("event order wrong: first=%d second=%d late=%d", first, second, late)
	}
}

func TestRenderEmptyAggregate(t *testing.T) {
	got := string(Render("teamX_teamY", client.GameState{}))

	if !strings.HasPrefix(got, "teamX vs teamY\n") {
		t.Errorf("team names not recovered from game name:\n%s", got)
	}
	if !strings.Contains(got, "teamX stats:\n") || !strings.Contains(got, "teamY stats:\n") {
		t.Errorf("per-team sections missing:\n%s", got)
	}
	if !strings.HasSuffix(got, "Game event reports:\n") {
		t.Errorf("empty aggregate should end with the reports header:\n%s", got)
	}
}

func TestFileStoreWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "summary.txt")

	store := NewFileStore()
	if err := store.Write(context.Background(), path, []byte("teamX vs teamY\n")); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if string(data) != "teamX vs teamY\n" {
		t.Errorf("file content = %q", data)
	}
}
