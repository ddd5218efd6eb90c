package replay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/voice-ci/engine/internal/session"
)

func TestDemoTimelineFailsRequiredStep(t *testing.T) {
	reg := session.NewRegistry(session.DefaultRules())

	st, err := Run(reg, DemoRoomID, DemoTimeline(1_700_000_000_000))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if st.Status != session.Fail {
		t.Fatalf("Status = %v, want fail", st.Status)
	}
	want := `Required step missing: agent never said "verify" or "confirm"`
	if st.FailureReason == nil || *st.FailureReason != want {
		t.Errorf("FailureReason = %v, want %q", st.FailureReason, want)
	}
	if st.FirstResponseMs == nil || *st.FirstResponseMs != 1500 {
		t.Errorf("FirstResponseMs = %v, want 1500", st.FirstResponseMs)
	}
}

func TestRunStopsOnFailure(t *testing.T) {
	reg := session.NewRegistry(session.DefaultRules())
	t0 := int64(1000)
	events := []session.VoiceEvent{
		{Type: session.EventCallStarted, TS: t0},
		{Type: session.EventAgentTranscript, Text: "Hi.", TS: t0 + 1000},
		{Type: session.EventLatency, MS: 9000}, // dead air, terminal here
		{Type: session.EventUserTranscript, Text: "still there?", TS: t0 + 12000},
	}

	st, err := Run(reg, "early-stop", events)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if st.Status != session.Fail {
		t.Fatalf("Status = %v, want fail", st.Status)
	}
	if st.Events != 3 {
		t.Errorf("Events = %d, want 3 (delivery stops at the failure)", st.Events)
	}
}

func TestRunUnknownRoomAfterRemoval(t *testing.T) {
	reg := session.NewRegistry(session.DefaultRules())
	// Run always creates the room, so the only not-found path is a
	// removal racing the replay; simulate with a direct send.
	_, err := reg.SendEvent("ghost", session.VoiceEvent{Type: session.EventCallStarted, TS: 1})
	if !errors.Is(err, session.ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestLoadTimeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.jsonl")
	content := `{"type":"call_started","ts":1000}

{"type":"agent_transcript","text":"Let me verify your account.","ts":2000}
{"type":"call_ended","ts":5000}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := LoadTimeline(path)
	if err != nil {
		t.Fatalf("LoadTimeline error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("loaded %d events, want 3", len(events))
	}
	if events[1].Type != session.EventAgentTranscript || events[1].TS != 2000 {
		t.Errorf("events[1] = %+v", events[1])
	}

	reg := session.NewRegistry(session.DefaultRules())
	st, err := Run(reg, "replayed", events)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if st.Status != session.Pass {
		t.Errorf("Status = %v, want pass (reason=%v)", st.Status, st.FailureReason)
	}
}

func TestLoadTimelineMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	content := `{"type":"call_started","ts":1000}
{"type":"mystery","ts":2000}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadTimeline(path)
	if err == nil {
		t.Fatal("LoadTimeline accepted malformed line")
	}
	if !errors.Is(err, session.ErrInvalidEvent) {
		t.Errorf("error %v does not wrap ErrInvalidEvent", err)
	}
}

func TestLoadTimelineMissingFile(t *testing.T) {
	_, err := LoadTimeline(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err == nil {
		t.Fatal("LoadTimeline succeeded on missing file")
	}
}
