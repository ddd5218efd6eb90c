package session

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEventVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  VoiceEvent
	}{
		{"call_started", `{"type":"call_started","ts":1000}`, VoiceEvent{Type: EventCallStarted, TS: 1000}},
		{"user_transcript", `{"type":"user_transcript","text":"hi","ts":1500}`, VoiceEvent{Type: EventUserTranscript, Text: "hi", TS: 1500}},
		{"agent_transcript", `{"type":"agent_transcript","text":"hello","ts":2000}`, VoiceEvent{Type: EventAgentTranscript, Text: "hello", TS: 2000}},
		{"latency", `{"type":"latency","ms":1200}`, VoiceEvent{Type: EventLatency, MS: 1200}},
		{"barge_in", `{"type":"barge_in","ts":3000}`, VoiceEvent{Type: EventBargeIn, TS: 3000}},
		{"call_ended", `{"type":"call_ended","ts":9000}`, VoiceEvent{Type: EventCallEnded, TS: 9000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvent([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseEvent error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseEvent = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseEventInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"missing type", `{"ts":1000}`},
		{"unknown type", `{"type":"hangup","ts":1000}`},
		{"call_started without ts", `{"type":"call_started"}`},
		{"transcript without text", `{"type":"agent_transcript","ts":1000}`},
		{"transcript without ts", `{"type":"user_transcript","text":"hi"}`},
		{"latency without ms", `{"type":"latency"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent([]byte(tt.input))
			if err == nil {
				t.Fatal("ParseEvent accepted invalid input")
			}
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("error %v does not wrap ErrInvalidEvent", err)
			}
		})
	}
}

// Zero-valued fields must still parse: a latency of 0ms is a legal sample.
func TestParseEventZeroValues(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"latency","ms":0}`))
	if err != nil {
		t.Fatalf("ParseEvent error: %v", err)
	}
	if ev.MS != 0 {
		t.Errorf("MS = %d, want 0", ev.MS)
	}

	ev, err = ParseEvent([]byte(`{"type":"agent_transcript","text":"","ts":0}`))
	if err != nil {
		t.Fatalf("ParseEvent error: %v", err)
	}
	if ev.Text != "" || ev.TS != 0 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestStatusMarshalJSON(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{Running, `"running"`},
		{Pass, `"pass"`},
		{Fail, `"fail"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.status)
		if err != nil {
			t.Errorf("Marshal(%v) error: %v", tt.status, err)
			continue
		}
		if string(data) != tt.expected {
			t.Errorf("Marshal(%v) = %s, want %s", tt.status, data, tt.expected)
		}
	}
}

func TestStatusUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		{`"running"`, Running},
		{`"pass"`, Pass},
		{`"fail"`, Fail},
	}

	for _, tt := range tests {
		var s Status
		if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.input, err)
			continue
		}
		if s != tt.expected {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, s, tt.expected)
		}
	}
}

func TestStateJSONShape(t *testing.T) {
	st := NewSession("room-1", DefaultRules()).State()

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal to map error: %v", err)
	}

	// Unset optional fields serialize as explicit nulls, not omissions.
	for _, key := range []string{"startedAt", "firstResponseMs", "failureReason"} {
		v, ok := raw[key]
		if !ok {
			t.Errorf("JSON missing %q field", key)
			continue
		}
		if v != nil {
			t.Errorf("%q = %v, want null", key, v)
		}
	}
	if raw["status"] != "running" {
		t.Errorf("status = %v, want %q", raw["status"], "running")
	}
	if raw["roomId"] != "room-1" {
		t.Errorf("roomId = %v, want %q", raw["roomId"], "room-1")
	}
}
