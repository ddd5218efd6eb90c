package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrRoomNotFound reports an event or query aimed at a room id that was
// never created (or was removed).
var ErrRoomNotFound = errors.New("room not found")

// RoomInfo is one entry in a room listing.
type RoomInfo struct {
	RoomID string `json:"roomId"`
	Status Status `json:"status"`
}

// Registry owns the mapping from room id to live session. Each voice test
// runs inside one room. In-memory only; rooms live until RemoveRoom.
//
// The registry mutex guards only the map. Event evaluation serializes on
// the per-session mutex, so rooms never block each other.
type Registry struct {
	mu    sync.RWMutex
	rules Rules
	rooms map[string]*Session
}

func NewRegistry(rules Rules) *Registry {
	return &Registry{
		rules: rules,
		rooms: make(map[string]*Session),
	}
}

// CreateRoom creates a session for roomID and returns its initial state,
// with created=true. Creating an existing room is idempotent: the current
// state comes back unreset, with created=false.
func (r *Registry) CreateRoom(roomID string) (*SessionState, bool) {
	r.mu.Lock()
	if existing, ok := r.rooms[roomID]; ok {
		r.mu.Unlock()
		return existing.State(), false
	}
	sess := NewSession(roomID, r.rules)
	r.rooms[roomID] = sess
	r.mu.Unlock()

	log.Printf("[registry] room created: %s", roomID)
	return sess.State(), true
}

// SendEvent delivers one event to a room's session and returns the
// resulting state. Returns ErrRoomNotFound for unknown rooms.
func (r *Registry) SendEvent(roomID string, ev VoiceEvent) (*SessionState, error) {
	r.mu.RLock()
	sess, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	state := sess.OnEvent(ev)
	if state.FailureReason != nil {
		log.Printf("[registry] [%s] event=%s status=%s reason=%q",
			roomID, ev.Type, state.Status, *state.FailureReason)
	} else {
		log.Printf("[registry] [%s] event=%s status=%s", roomID, ev.Type, state.Status)
	}
	return state, nil
}

// GetState returns a snapshot for roomID, or ok=false if the room is
// unknown. An unknown room is not an error here.
func (r *Registry) GetState(roomID string) (*SessionState, bool) {
	r.mu.RLock()
	sess, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return sess.State(), true
}

// ListRooms enumerates all known rooms and their statuses. Order is
// unspecified.
func (r *Registry) ListRooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, sess := range r.rooms {
		out = append(out, RoomInfo{RoomID: id, Status: sess.State().Status})
	}
	return out
}

// States returns snapshots of every room, for stream broadcasts.
func (r *Registry) States() []*SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SessionState, 0, len(r.rooms))
	for _, sess := range r.rooms {
		out = append(out, sess.State())
	}
	return out
}

// RemoveRoom deletes a room's session and reports whether one existed.
// The only lifecycle-ending operation; finished rooms are never expired
// automatically.
func (r *Registry) RemoveRoom(roomID string) bool {
	r.mu.Lock()
	_, ok := r.rooms[roomID]
	delete(r.rooms, roomID)
	r.mu.Unlock()
	if ok {
		log.Printf("[registry] room removed: %s", roomID)
	}
	return ok
}

// RoomCount returns the number of known rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ActiveCount returns the number of rooms still running.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, sess := range r.rooms {
		if !sess.State().IsTerminal() {
			count++
		}
	}
	return count
}
