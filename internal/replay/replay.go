// Package replay feeds recorded or canned call timelines through the
// registry, for demos and for re-running captured calls.
package replay

import (
	"log"

	"github.com/voice-ci/engine/internal/session"
)

// DemoRoomID is the room the built-in demo timeline runs in.
const DemoRoomID = "smoke-test-001"

// DemoTimeline returns a ~20s support-call timeline anchored at t0
// (epoch millis). It intentionally fails one rule: the agent never says
// "verify" or "confirm".
func DemoTimeline(t0 int64) []session.VoiceEvent {
	return []session.VoiceEvent{
		{Type: session.EventCallStarted, TS: t0},
		{Type: session.EventAgentTranscript, Text: "Hello, thank you for calling. How can I help you today?", TS: t0 + 1500},
		{Type: session.EventUserTranscript, Text: "Hi, I need help with my account.", TS: t0 + 4000},
		{Type: session.EventLatency, MS: 1200},
		{Type: session.EventAgentTranscript, Text: "Sure, I can help you with that. Let me pull up your details.", TS: t0 + 6500},
		{Type: session.EventUserTranscript, Text: "I think there's a charge I don't recognize.", TS: t0 + 9000},
		{Type: session.EventLatency, MS: 2000},
		{Type: session.EventAgentTranscript, Text: "I see the charge you're referring to. Let me look into it.", TS: t0 + 12000},
		{Type: session.EventBargeIn, TS: t0 + 14000},
		{Type: session.EventUserTranscript, Text: "Wait, actually it might be from last month.", TS: t0 + 15000},
		{Type: session.EventAgentTranscript, Text: "No problem, let me check last month's statement for you.", TS: t0 + 17000},
		{Type: session.EventLatency, MS: 800},
		{Type: session.EventCallEnded, TS: t0 + 20000},
	}
}

// Run creates roomID if needed and plays the timeline through it,
// logging each step. Delivery stops early once the session settles on a
// failure; the final state is returned.
func Run(reg *session.Registry, roomID string, events []session.VoiceEvent) (*session.SessionState, error) {
	reg.CreateRoom(roomID)

	var last *session.SessionState
	for _, ev := range events {
		st, err := reg.SendEvent(roomID, ev)
		if err != nil {
			return last, err
		}
		last = st

		if st.FailureReason != nil {
			log.Printf("[replay] [%2d] %-18s -> status=%s | FAIL: %s",
				st.Events, ev.Type, st.Status, *st.FailureReason)
		} else {
			log.Printf("[replay] [%2d] %-18s -> status=%s", st.Events, ev.Type, st.Status)
		}

		if st.Status == session.Fail {
			break
		}
	}
	return last, nil
}
