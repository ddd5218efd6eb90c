package session

import (
	"fmt"
	"strings"
	"sync"
)

// Rules holds the conformance thresholds a session evaluates against.
// The zero value is not useful; start from DefaultRules.
type Rules struct {
	MaxFirstResponseMs int64
	MaxDeadAirMs       int64
	MaxInterruptions   int
	RequiredKeywords   []string
	HoldKeyword        string
}

// DefaultRules returns the stock smoke-test thresholds: first agent
// response within 3s, no unexplained gap over 4s, at most one barge-in,
// and a mandatory "verify"/"confirm" utterance.
func DefaultRules() Rules {
	return Rules{
		MaxFirstResponseMs: 3000,
		MaxDeadAirMs:       4000,
		MaxInterruptions:   1,
		RequiredKeywords:   []string{"verify", "confirm"},
		HoldKeyword:        "hold",
	}
}

// requiredStepSaid reports whether text contains any required keyword,
// case-insensitive.
func (r Rules) requiredStepSaid(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range r.RequiredKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// requiredStepDescription renders the keyword list for failure reasons,
// e.g. `"verify" or "confirm"`.
func (r Rules) requiredStepDescription() string {
	quoted := make([]string, len(r.RequiredKeywords))
	for i, kw := range r.RequiredKeywords {
		quoted[i] = fmt.Sprintf("%q", kw)
	}
	return strings.Join(quoted, " or ")
}

// Session evaluates one call's event stream against the rules. Events
// apply one at a time under the session mutex, so write-once fields and
// the terminal status hold even with concurrent senders.
type Session struct {
	mu            sync.Mutex
	rules         Rules
	state         SessionState
	lastAgentText string
}

// NewSession creates a running session for roomID with no events consumed.
func NewSession(roomID string, rules Rules) *Session {
	return &Session{
		rules: rules,
		state: SessionState{
			RoomID: roomID,
			Status: Running,
		},
	}
}

// OnEvent feeds a single event into the session and returns the resulting
// state snapshot. Once the session is terminal this is a no-op: the frozen
// state comes back unchanged and the event counter does not move.
func (s *Session) OnEvent(ev VoiceEvent) *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsTerminal() {
		return s.state.Clone()
	}

	s.state.Events++

	switch ev.Type {
	case EventCallStarted:
		s.handleCallStarted(ev.TS)
	case EventAgentTranscript:
		s.handleAgentTranscript(ev.Text, ev.TS)
	case EventUserTranscript:
		// tracked for context; no rules attached
	case EventLatency:
		s.handleLatency(ev.MS)
	case EventBargeIn:
		s.handleBargeIn()
	case EventCallEnded:
		s.state.Ended = true
		s.finalizeLocked()
	}

	return s.state.Clone()
}

// Finalize runs the end-of-call rule checks and settles the verdict.
// Normally triggered by a call_ended event; safe to call explicitly.
// No-op if the session is already terminal.
func (s *Session) Finalize() *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizeLocked()
	return s.state.Clone()
}

// State returns an independent snapshot of the current state.
func (s *Session) State() *SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// finalizeLocked checks the structural rules in fixed order; the first
// failing check wins. Caller must hold s.mu.
func (s *Session) finalizeLocked() {
	if s.state.IsTerminal() {
		return
	}

	if s.state.StartedAt == nil {
		s.fail("Call never started")
		return
	}
	if !s.state.Ended {
		s.fail("Call never ended")
		return
	}

	if s.state.FirstResponseMs == nil {
		s.fail("Agent never responded")
		return
	}
	if *s.state.FirstResponseMs > s.rules.MaxFirstResponseMs {
		s.fail(fmt.Sprintf("First response too slow: %dms > %dms",
			*s.state.FirstResponseMs, s.rules.MaxFirstResponseMs))
		return
	}

	// Dead air is caught incrementally, but re-check in case the flag was
	// set without settling the verdict.
	if s.state.DeadAirDetected {
		s.fail(fmt.Sprintf("Dead air detected (latency > %dms without '%s')",
			s.rules.MaxDeadAirMs, s.rules.HoldKeyword))
		return
	}

	if !s.state.RequiredStepSeen {
		s.fail(fmt.Sprintf("Required step missing: agent never said %s",
			s.rules.requiredStepDescription()))
		return
	}

	if s.state.InterruptionCount > s.rules.MaxInterruptions {
		s.fail(fmt.Sprintf("Too many interruptions: %d > %d",
			s.state.InterruptionCount, s.rules.MaxInterruptions))
		return
	}

	s.state.Status = Pass
}

func (s *Session) handleCallStarted(ts int64) {
	if s.state.StartedAt == nil {
		s.state.StartedAt = &ts
	}
}

func (s *Session) handleAgentTranscript(text string, ts int64) {
	if s.state.FirstResponseMs == nil && s.state.StartedAt != nil {
		latency := ts - *s.state.StartedAt
		s.state.FirstResponseMs = &latency
		if latency > s.rules.MaxFirstResponseMs {
			s.fail(fmt.Sprintf("First response too slow: %dms > %dms",
				latency, s.rules.MaxFirstResponseMs))
			return
		}
	}

	if s.rules.requiredStepSaid(text) {
		s.state.RequiredStepSeen = true
	}

	s.lastAgentText = text
}

func (s *Session) handleLatency(ms int64) {
	if ms <= s.rules.MaxDeadAirMs {
		return
	}
	// The exemption keys off the most recent agent utterance at the time
	// of the sample, not any utterance overall.
	holdExempt := strings.Contains(strings.ToLower(s.lastAgentText), strings.ToLower(s.rules.HoldKeyword))
	if !holdExempt {
		s.state.DeadAirDetected = true
		s.fail(fmt.Sprintf("Dead air: %dms latency without agent saying %q",
			ms, s.rules.HoldKeyword))
	}
}

func (s *Session) handleBargeIn() {
	s.state.InterruptionCount++
	if s.state.InterruptionCount > s.rules.MaxInterruptions {
		s.fail(fmt.Sprintf("Too many interruptions: %d > %d",
			s.state.InterruptionCount, s.rules.MaxInterruptions))
	}
}

// fail settles the verdict. The first reason wins and is never
// overwritten. Caller must hold s.mu.
func (s *Session) fail(reason string) {
	if s.state.IsTerminal() {
		return
	}
	s.state.Status = Fail
	s.state.FailureReason = &reason
}
