package status

import (
	"fmt"
	"sort"
	"sync"
)

// Status is the lifecycle state of one generation unit
type Status string

const (
	Idle      Status = "idle"
	Pending   Status = "pending"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
)

// Kind names what a unit produces
type Kind string

const (
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
	KindNarration Kind = "narration"
	KindDialogue  Kind = "dialogue"
)

// UnitKey identifies a generation unit. Index is only meaningful for dialogue.
type UnitKey struct {
	SceneID string `json:"sceneId"`
	Kind    Kind   `json:"kind"`
	Index   int    `json:"index"`
}

// ImageKey returns the key of a scene's image unit
func ImageKey(sceneID string) UnitKey { return UnitKey{SceneID: sceneID, Kind: KindImage} }

// VideoKey returns the key of a scene's video unit
func VideoKey(sceneID string) UnitKey { return UnitKey{SceneID: sceneID, Kind: KindVideo} }

// NarrationKey returns the key of a scene's narration unit
func NarrationKey(sceneID string) UnitKey { return UnitKey{SceneID: sceneID, Kind: KindNarration} }

// DialogueKey returns the key of one dialogue line's audio unit
func DialogueKey(sceneID string, index int) UnitKey {
	return UnitKey{SceneID: sceneID, Kind: KindDialogue, Index: index}
}

func (k UnitKey) String() string {
	if k.Kind == KindDialogue {
		return fmt.Sprintf("%s/%s/%d", k.SceneID, k.Kind, k.Index)
	}
	return fmt.Sprintf("%s/%s", k.SceneID, k.Kind)
}

// Recorder is the write side the orchestrator drives
type Recorder interface {
	Start(key UnitKey)
	Complete(key UnitKey)
	Fail(key UnitKey, msg string)
}

// Entry is one unit's state in a snapshot
type Entry struct {
	Key    UnitKey `json:"key"`
	Status Status  `json:"status"`
	Error  string  `json:"error,omitempty"`
}

type unitState struct {
	status Status
	err    string
}

// Tracker holds per-unit status and last error. Safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	units map[UnitKey]unitState
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{units: make(map[UnitKey]unitState)}
}

// SetStatus records s for key
func (t *Tracker) SetStatus(key UnitKey, s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.units[key]
	u.status = s
	t.units[key] = u
}

// GetStatus returns key's status, idle if never recorded
func (t *Tracker) GetStatus(key UnitKey) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, ok := t.units[key]
	if !ok || u.status == "" {
		return Idle
	}
	return u.status
}

// SetError records key's last error message. An empty msg clears it.
func (t *Tracker) SetError(key UnitKey, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.units[key]
	u.err = msg
	if u.status == "" {
		u.status = Idle
	}
	t.units[key] = u
}

// Error returns key's last error message
func (t *Tracker) Error(key UnitKey) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.units[key].err
}

// Start marks key running and clears any previous error
func (t *Tracker) Start(key UnitKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.units[key] = unitState{status: Running}
}

// Complete marks key completed
func (t *Tracker) Complete(key UnitKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.units[key] = unitState{status: Completed}
}

// Fail marks key failed with msg
func (t *Tracker) Fail(key UnitKey, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.units[key] = unitState{status: Failed, err: msg}
}

// Reset forgets every unit
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.units = make(map[UnitKey]unitState)
}

// Snapshot returns all recorded units ordered by key
func (t *Tracker) Snapshot() []Entry {
	t.mu.RLock()
	entries := make([]Entry, 0, len(t.units))
	for key, u := range t.units {
		entries = append(entries, Entry{Key: key, Status: u.status, Error: u.err})
	}
	t.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Key, entries[j].Key
		if a.SceneID != b.SceneID {
			return a.SceneID < b.SceneID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Index < b.Index
	})
	return entries
}

// Discard is a Recorder that drops every update
var Discard Recorder = discard{}

type discard struct{}

func (discard) Start(UnitKey)        {}
func (discard) Complete(UnitKey)     {}
func (discard) Fail(UnitKey, string) {}
