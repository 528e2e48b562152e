package types

import "time"

// PlaybackMessage represents a WebSocket playback update message.
type PlaybackMessage struct {
	SessionID string    `json:"sessionId"`
	Type      string    `json:"type"` // "track", "stopped", "error"
	TrackPath string    `json:"trackPath,omitempty"`
	Ordinal   int       `json:"ordinal"`
	Message   string    `json:"message,omitempty"` // status or error messages
	Timestamp time.Time `json:"timestamp"`         // when the update occurred
}
