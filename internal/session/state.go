package session

import (
	"encoding/json"
)

// Status is the verdict of a call under test. It starts at Running and
// moves exactly once to Pass or Fail, after which it never changes.
type Status int

const (
	Running Status = iota
	Pass
	Fail
)

var statusNames = map[Status]string{
	Running: "running",
	Pass:    "pass",
	Fail:    "fail",
}

var statusFromName = map[string]Status{
	"running": Running,
	"pass":    Pass,
	"fail":    Fail,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := statusFromName[name]; ok {
		*s = v
	}
	return nil
}

// SessionState is the snapshot of one call's rule evaluation. StartedAt,
// FirstResponseMs and FailureReason are pointers so an unset field
// serializes as null rather than a zero that looks like data.
type SessionState struct {
	RoomID            string  `json:"roomId"`
	StartedAt         *int64  `json:"startedAt"`
	FirstResponseMs   *int64  `json:"firstResponseMs"`
	DeadAirDetected   bool    `json:"deadAirDetected"`
	RequiredStepSeen  bool    `json:"requiredStepSeen"`
	InterruptionCount int     `json:"interruptionCount"`
	Ended             bool    `json:"ended"`
	Status            Status  `json:"status"`
	FailureReason     *string `json:"failureReason"`
	Events            int     `json:"events"`
}

// Clone returns a deep copy of the SessionState, duplicating pointer
// fields so the copy can be mutated independently of the original.
func (s *SessionState) Clone() *SessionState {
	c := *s
	if s.StartedAt != nil {
		v := *s.StartedAt
		c.StartedAt = &v
	}
	if s.FirstResponseMs != nil {
		v := *s.FirstResponseMs
		c.FirstResponseMs = &v
	}
	if s.FailureReason != nil {
		v := *s.FailureReason
		c.FailureReason = &v
	}
	return &c
}

func (s *SessionState) IsTerminal() bool {
	return s.Status != Running
}
