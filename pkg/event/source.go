package event

import (
	"encoding/json"
	"fmt"
	"os"
)

// sourceFile mirrors the JSON layout of an event-source file.
type sourceFile struct {
	TeamA  string        `json:"team a"`
	TeamB  string        `json:"team b"`
	Events []sourceEvent `json:"events"`
}

type sourceEvent struct {
	Name         string         `json:"event name"`
	Time         int            `json:"time"`
	GameUpdates  map[string]any `json:"general game updates"`
	TeamAUpdates map[string]any `json:"team a updates"`
	TeamBUpdates map[string]any `json:"team b updates"`
	Description  string         `json:"description"`
}

// LoadFile reads a JSON event-source file and returns the two participant
// names plus the events it describes. Update values that are not JSON
// strings (numbers, booleans) are kept as their JSON text.
func LoadFile(path string) (teamA, teamB string, events []Event, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", nil, fmt.Errorf("event: read source file: %w", err)
	}

	var src sourceFile
	if err := json.Unmarshal(data, &src); err != nil {
		return "", "", nil, fmt.Errorf("event: decode source file %s: %w", path, err)
	}

	events = make([]Event, 0, len(src.Events))
	for _, se := range src.Events {
		events = append(events, Event{
			TeamA:        src.TeamA,
			TeamB:        src.TeamB,
			Name:         se.Name,
			Time:         se.Time,
			GameUpdates:  stringifyUpdates(se.GameUpdates),
			TeamAUpdates: stringifyUpdates(se.TeamAUpdates),
			TeamBUpdates: stringifyUpdates(se.TeamBUpdates),
			Description:  se.Description,
		})
	}
	return src.TeamA, src.TeamB, events, nil
}

func stringifyUpdates(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				out[k] = fmt.Sprint(v)
				continue
			}
			out[k] = string(raw)
		}
	}
	return out
}
