package types

import "time"

// SessionState represents the current state of a playback session.
type SessionState string

const (
	SessionStateIdle    SessionState = "idle"
	SessionStatePlaying SessionState = "playing"
	SessionStateStopped SessionState = "stopped"
)

// PlaybackSession represents one playback engine driving the shared audio
// source.
type PlaybackSession struct {
	ID        string       `json:"id"`
	State     SessionState `json:"state"`
	TrackPath string       `json:"trackPath,omitempty"`
	Ordinal   int          `json:"ordinal"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
