package services

import (
	"cadenza/source"
	"cadenza/types"
	"cadenza/websocket"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PlayerService interface defines the methods for driving the shared audio
// source on behalf of playback sessions
type PlayerService interface {
	Begin() error
	End() error
	CreateSession() *types.PlaybackSession
	GetSession(id string) (*types.PlaybackSession, bool)
	GetAllSessions() []*types.PlaybackSession
	CloseSession(id string) bool
	Next(sessionID string, offset int) (*types.PlaybackSession, error)
	Select(sessionID string, ordinal int) (*types.PlaybackSession, error)
	SelectPath(sessionID, path string) (*types.PlaybackSession, error)
	Status() PlayerStatus
	Size() int
}

// PlayerStatus is a snapshot of the audio source state.
type PlayerStatus struct {
	State     string `json:"state"`
	Ordinal   int    `json:"ordinal"`
	TrackPath string `json:"trackPath,omitempty"`
}

// ErrSessionNotFound is returned for operations on unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// playerService serializes all access to the single shared Source. The
// source itself is not safe for concurrent callers.
type playerService struct {
	src      *source.Source
	sessions map[string]*types.PlaybackSession
	mu       sync.RWMutex
	hub      websocket.Hub
}

// NewPlayerService creates a new player service around src.
func NewPlayerService(src *source.Source, hub websocket.Hub) PlayerService {
	return &playerService{
		src:      src,
		sessions: make(map[string]*types.PlaybackSession),
		hub:      hub,
	}
}

// Begin starts the underlying audio source.
func (ps *playerService) Begin() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.src.Begin()
}

// End shuts the underlying audio source down and stops every session.
func (ps *playerService) End() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, session := range ps.sessions {
		session.State = types.SessionStateStopped
		session.UpdatedAt = time.Now()
	}
	return ps.src.End()
}

// CreateSession registers a new playback session
func (ps *playerService) CreateSession() *types.PlaybackSession {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := time.Now()
	session := &types.PlaybackSession{
		ID:        uuid.New().String(),
		State:     types.SessionStateIdle,
		Ordinal:   ps.src.Index(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ps.sessions[session.ID] = session

	return session
}

// GetSession retrieves a session by ID
func (ps *playerService) GetSession(id string) (*types.PlaybackSession, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	session, exists := ps.sessions[id]
	return session, exists
}

// GetAllSessions returns all sessions
func (ps *playerService) GetAllSessions() []*types.PlaybackSession {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	sessions := make([]*types.PlaybackSession, 0, len(ps.sessions))
	for _, session := range ps.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// CloseSession removes a session from the registry
func (ps *playerService) CloseSession(id string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	session, exists := ps.sessions[id]
	if !exists {
		return false
	}

	session.State = types.SessionStateStopped
	session.UpdatedAt = time.Now()
	delete(ps.sessions, id)

	return true
}

// Next advances the source cursor by offset on behalf of a session.
func (ps *playerService) Next(sessionID string, offset int) (*types.PlaybackSession, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.apply(sessionID, func() error {
		_, err := ps.src.Next(offset)
		return err
	})
}

// Select moves the source cursor to ordinal on behalf of a session.
func (ps *playerService) Select(sessionID string, ordinal int) (*types.PlaybackSession, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.apply(sessionID, func() error {
		_, err := ps.src.SelectIndex(ordinal)
		return err
	})
}

// SelectPath opens a literal path on behalf of a session. The source
// cursor stays where the last ordinal selection left it.
func (ps *playerService) SelectPath(sessionID, path string) (*types.PlaybackSession, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.apply(sessionID, func() error {
		_, err := ps.src.SelectPath(path)
		return err
	})
}

// Status returns a snapshot of the source state.
func (ps *playerService) Status() PlayerStatus {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return PlayerStatus{
		State:     ps.src.State().String(),
		Ordinal:   ps.src.Index(),
		TrackPath: ps.src.FileName(),
	}
}

// Size returns the number of qualifying files. Walks the whole library
// tree, so avoid calling it per request.
func (ps *playerService) Size() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.src.Size()
}

// apply runs a source operation for a session, updates the session from
// the source outcome, and broadcasts the change. Callers hold ps.mu.
func (ps *playerService) apply(sessionID string, op func() error) (*types.PlaybackSession, error) {
	session, exists := ps.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	err := op()
	session.Ordinal = ps.src.Index()
	session.UpdatedAt = time.Now()

	if err != nil {
		session.State = types.SessionStateStopped
		session.TrackPath = ""
		if ps.hub != nil {
			ps.hub.BroadcastPlayback(sessionID, "stopped", "", session.Ordinal, err.Error())
		}
		return session, err
	}

	session.State = types.SessionStatePlaying
	session.TrackPath = ps.src.FileName()
	if ps.hub != nil {
		ps.hub.BroadcastPlayback(sessionID, "track", session.TrackPath, session.Ordinal, "")
	}

	return session, nil
}
