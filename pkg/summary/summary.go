// Package summary renders a game aggregate into the text report format and
// writes it through a pluggable store (local file or S3).
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matchwire-dev/matchwire/pkg/client"
)

// Store persists a rendered summary under a destination name.
type Store interface {
	Write(ctx context.Context, name string, data []byte) error
}

// Render formats the aggregate for one (game, user) pair as a text report.
//
// Stat maps are emitted in sorted key order. Events are ordered by half,
// then timestamp, then arrival sequence, so reports are deterministic even
// when events share a timestamp. When the aggregate carries no participant
// names (nothing ingested yet), they are recovered from the game name.
func Render(game string, state client.GameState) []byte {
	teamA, teamB := state.TeamA, state.TeamB
	if teamA == "" || teamB == "" {
		if a, b, ok := strings.Cut(game, "_"); ok {
			teamA, teamB = a, b
		}
	}

	events := make([]client.GameEvent, len(state.Events))
	copy(events, state.Events)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Half != events[j].Half {
			return events[i].Half < events[j].Half
		}
		if events[i].Event.Time != events[j].Event.Time {
			return events[i].Event.Time < events[j].Event.Time
		}
		return events[i].Seq < events[j].Seq
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s\n", teamA, teamB)
	b.WriteString("Game stats:\n")
	b.WriteString("General stats:\n")
	writeStats(&b, state.GeneralStats)
	fmt.Fprintf(&b, "%s stats:\n", teamA)
	writeStats(&b, state.TeamAStats)
	fmt.Fprintf(&b, "%s stats:\n", teamB)
	writeStats(&b, state.TeamBStats)
	b.WriteString("Game event reports:\n")
	for _, ge := range events {
		fmt.Fprintf(&b, "%d - %s:\n\n", ge.Event.Time, ge.Event.Name)
		b.WriteString(ge.Event.Description)
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

func writeStats(b *strings.Builder, stats map[string]string) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s: %s\n", k, stats[k])
	}
}
