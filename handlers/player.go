package handlers

import (
	"cadenza/services"
	"cadenza/source"
	"cadenza/websocket"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PlayerHandler handles playback control endpoints
type PlayerHandler struct {
	player services.PlayerService
	hub    websocket.Hub
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(player services.PlayerService, hub websocket.Hub) *PlayerHandler {
	return &PlayerHandler{
		player: player,
		hub:    hub,
	}
}

// CreateSession registers a new playback session
func (h *PlayerHandler) CreateSession(c *gin.Context) {
	session := h.player.CreateSession()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Playback session created successfully",
		"session": session,
	})
}

// GetAllSessions returns all playback sessions
func (h *PlayerHandler) GetAllSessions(c *gin.Context) {
	sessions := h.player.GetAllSessions()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// GetSession returns a specific playback session by ID
func (h *PlayerHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	session, exists := h.player.GetSession(sessionID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
	})
}

// CloseSession removes a playback session
func (h *PlayerHandler) CloseSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if !h.player.CloseSession(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "session closed successfully",
	})
}

// Next advances the playback cursor. The offset query parameter defaults
// to 1; negative offsets go backward.
func (h *PlayerHandler) Next(c *gin.Context) {
	sessionID := c.Param("sessionId")

	offset := 1
	if offsetStr := c.Query("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "offset must be an integer",
			})
			return
		}
		offset = parsed
	}

	session, err := h.player.Next(sessionID, offset)
	h.respond(c, session, err)
}

// Select moves the playback cursor to an ordinal position
func (h *PlayerHandler) Select(c *gin.Context) {
	sessionID := c.Param("sessionId")

	ordinal, err := strconv.Atoi(c.Param("ordinal"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ordinal must be an integer",
		})
		return
	}

	session, err := h.player.Select(sessionID, ordinal)
	h.respond(c, session, err)
}

// SelectPath opens a track by its literal library path. This does not move
// the playback cursor.
func (h *PlayerHandler) SelectPath(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var body struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	session, err := h.player.SelectPath(sessionID, body.Path)
	h.respond(c, session, err)
}

// Status returns the current state of the shared audio source
func (h *PlayerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.player.Status())
}

// Size returns the number of qualifying tracks. This walks the whole
// library tree on every call.
func (h *PlayerHandler) Size(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"size": h.player.Size(),
	})
}

// respond maps player service results onto HTTP responses
func (h *PlayerHandler) respond(c *gin.Context, session interface{}, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"session": session,
		})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "session not found",
		})
	case errors.Is(err, source.ErrNotFound), errors.Is(err, source.ErrEmptyPath):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "track not found",
			"details": err.Error(),
			"session": session,
		})
	case errors.Is(err, source.ErrNotReady), errors.Is(err, source.ErrClosed):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "player not available",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "player operation failed",
			"details": err.Error(),
		})
	}
}

// HandleWebSocketConnection handles WebSocket connections for a specific session
func (h *PlayerHandler) HandleWebSocketConnection(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session ID is required"})
		return
	}

	// Check if session exists
	_, exists := h.player.GetSession(sessionID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, sessionID)
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}

// HandleWebSocketAllConnection handles WebSocket connections for all playback events
func (h *PlayerHandler) HandleWebSocketAllConnection(c *gin.Context) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, "all")
	h.hub.RegisterClient(client)

	// Start client pumps
	client.StartPumps()
}
