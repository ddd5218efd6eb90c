package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType tags the telemetry event variants a voice platform reports
// for a call under test.
type EventType string

const (
	EventCallStarted     EventType = "call_started"
	EventUserTranscript  EventType = "user_transcript"
	EventAgentTranscript EventType = "agent_transcript"
	EventLatency         EventType = "latency"
	EventBargeIn         EventType = "barge_in"
	EventCallEnded       EventType = "call_ended"
)

// ErrInvalidEvent reports an event with an unrecognized type tag or a
// missing required field. Events are never silently coerced.
var ErrInvalidEvent = errors.New("invalid event")

// VoiceEvent is one telemetry event in a call's timeline. Which fields
// are meaningful depends on Type: transcripts carry Text and TS, latency
// samples carry MS, the lifecycle markers carry TS only.
type VoiceEvent struct {
	Type EventType `json:"type"`
	Text string    `json:"text,omitempty"`
	TS   int64     `json:"ts,omitempty"`
	MS   int64     `json:"ms,omitempty"`
}

// rawEvent mirrors VoiceEvent with pointer fields so ParseEvent can tell
// an absent field from a zero value.
type rawEvent struct {
	Type *string `json:"type"`
	Text *string `json:"text"`
	TS   *int64  `json:"ts"`
	MS   *int64  `json:"ms"`
}

// ParseEvent decodes and validates a single wire event. Unknown type tags
// and missing required fields yield an error wrapping ErrInvalidEvent.
func ParseEvent(data []byte) (VoiceEvent, error) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return VoiceEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if raw.Type == nil {
		return VoiceEvent{}, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}

	ev := VoiceEvent{Type: EventType(*raw.Type)}

	switch ev.Type {
	case EventCallStarted, EventBargeIn, EventCallEnded:
		if raw.TS == nil {
			return VoiceEvent{}, fmt.Errorf("%w: %s missing ts", ErrInvalidEvent, ev.Type)
		}
		ev.TS = *raw.TS

	case EventUserTranscript, EventAgentTranscript:
		if raw.Text == nil {
			return VoiceEvent{}, fmt.Errorf("%w: %s missing text", ErrInvalidEvent, ev.Type)
		}
		if raw.TS == nil {
			return VoiceEvent{}, fmt.Errorf("%w: %s missing ts", ErrInvalidEvent, ev.Type)
		}
		ev.Text = *raw.Text
		ev.TS = *raw.TS

	case EventLatency:
		if raw.MS == nil {
			return VoiceEvent{}, fmt.Errorf("%w: latency missing ms", ErrInvalidEvent)
		}
		ev.MS = *raw.MS

	default:
		return VoiceEvent{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, *raw.Type)
	}

	return ev, nil
}
