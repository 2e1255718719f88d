// Package event models a single game event: who played, what happened,
// when, and the stat updates it carries. Events travel as the text body of
// SEND/MESSAGE frames and originate either from a structured JSON source
// file or from parsing a received frame body.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned when an event body carries a non-numeric time.
var ErrInvalidTime = errors.New("event: non-numeric time")

// Event is one reported game event. Immutable after construction.
type Event struct {
	TeamA string
	TeamB string
	Name  string
	Time  int

	// Update maps: later values for the same key overwrite earlier ones.
	GameUpdates  map[string]string
	TeamAUpdates map[string]string
	TeamBUpdates map[string]string

	// Description is free text and may span multiple lines.
	Description string
}

// body section labels. A line whose key matches one of these either sets a
// scalar field or switches the current update-map section.
const (
	labelUser        = "user"
	labelTeamA       = "team a"
	labelTeamB       = "team b"
	labelName        = "event name"
	labelTime        = "time"
	labelGeneral     = "general game updates"
	labelTeamAStats  = "team a updates"
	labelTeamBStats  = "team b updates"
	labelDescription = "description"
)

// ParseBody constructs an Event from the frame-body text format.
//
// The parser is permissive: unrecognized lines outside the description
// section are skipped, and any line seen while the description section is
// active is appended to the description verbatim. The only failure mode is a
// non-numeric time value.
func ParseBody(body string) (Event, error) {
	ev := Event{
		GameUpdates:  make(map[string]string),
		TeamAUpdates: make(map[string]string),
		TeamBUpdates: make(map[string]string),
	}

	section := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		key, value, hasColon := strings.Cut(line, ":")
		if !hasColon {
			if section == labelDescription {
				ev.appendDescription(line)
			}
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case labelTeamA:
			ev.TeamA = value
		case labelTeamB:
			ev.TeamB = value
		case labelName:
			ev.Name = value
		case labelTime:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Event{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
			}
			ev.Time = n
		case labelGeneral, labelTeamAStats, labelTeamBStats:
			section = key
		case labelDescription:
			section = labelDescription
			ev.Description = value
		case labelUser:
			// Reporter identity line; not part of the event itself.
		default:
			switch section {
			case labelGeneral:
				ev.GameUpdates[key] = value
			case labelTeamAStats:
				ev.TeamAUpdates[key] = value
			case labelTeamBStats:
				ev.TeamBUpdates[key] = value
			case labelDescription:
				// A colon inside the description, keep the line whole.
				ev.appendDescription(line)
			}
		}
	}
	return ev, nil
}

func (e *Event) appendDescription(line string) {
	if e.Description == "" {
		e.Description = line
		return
	}
	e.Description += "\n" + line
}

// MarshalBody encodes the event into the frame-body text format, prefixed
// with the reporting user's identity line. Update maps are emitted in sorted
// key order so the output is deterministic.
func (e *Event) MarshalBody(user string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "user: %s\n", user)
	fmt.Fprintf(&b, "team a: %s\n", e.TeamA)
	fmt.Fprintf(&b, "team b: %s\n", e.TeamB)
	fmt.Fprintf(&b, "event name: %s\n", e.Name)
	fmt.Fprintf(&b, "time: %d\n", e.Time)
	b.WriteString("general game updates:\n")
	writeUpdates(&b, e.GameUpdates)
	b.WriteString("team a updates:\n")
	writeUpdates(&b, e.TeamAUpdates)
	b.WriteString("team b updates:\n")
	writeUpdates(&b, e.TeamBUpdates)
	b.WriteString("description:\n")
	b.WriteString(e.Description)
	return b.String()
}

func writeUpdates(b *strings.Builder, updates map[string]string) {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(updates[k])
		b.WriteByte('\n')
	}
}

// Reporter extracts the reporting user from the conventional "user: <name>"
// first line of a message body. Returns "" when the line is absent.
func Reporter(body string) string {
	line, _, _ := strings.Cut(body, "\n")
	key, value, ok := strings.Cut(strings.TrimSuffix(line, "\r"), ":")
	if ok && strings.TrimSpace(key) == labelUser {
		return strings.TrimSpace(value)
	}
	return ""
}
