package ws

import (
	"github.com/voice-ci/engine/internal/session"
)

type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgDelta    MessageType = "delta"
	MsgVerdict  MessageType = "verdict"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

type SnapshotPayload struct {
	Rooms []*session.SessionState `json:"rooms"`
}

type DeltaPayload struct {
	Updates []*session.SessionState `json:"updates"`
	Removed []string                `json:"removed,omitempty"`
}

// VerdictPayload announces a room settling on pass or fail.
type VerdictPayload struct {
	RoomID        string         `json:"roomId"`
	Status        session.Status `json:"status"`
	FailureReason *string        `json:"failureReason,omitempty"`
}
