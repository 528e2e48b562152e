package cmd

import (
	"cadenza/config"
	"cadenza/handlers"
	"cadenza/middleware"
	"cadenza/services"
	"cadenza/source"
	"cadenza/storage"
	"cadenza/websocket"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
)

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Mount the library storage. The server owns this mount for its whole
	// lifetime; the per-request and player sources borrow it.
	fs := newStorage()
	if err := fs.Mount(); err != nil {
		log.Fatalf("Failed to mount library storage: %v", err)
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	playerSource := source.NewSourceFromMounted(fs, "/", config.GetExtension())
	playerSource.SetFilter(config.GetFilter())

	playerService := services.NewPlayerService(playerSource, hub)
	if err := playerService.Begin(); err != nil {
		log.Fatalf("Failed to start audio source: %v", err)
	}

	libraryService := services.NewLibraryService(fs)

	// Initialize handlers
	playerHandler := handlers.NewPlayerHandler(playerService, hub)
	trackHandler := handlers.NewTrackHandler(fs, libraryService)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	// Setup router
	r := gin.Default()

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())
	r.Use(middleware.Security())

	// Setup routes
	setupRoutes(r, playerHandler, trackHandler, healthHandler, settingsHandler)

	// Start server
	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("Cadenza web server starting on port %s", portStr)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newStorage selects the library storage backend. When CADENZA_SFTP_HOST is
// set the library is read from a remote SFTP share, otherwise from the
// local library location.
func newStorage() storage.FileSystem {
	host := os.Getenv("CADENZA_SFTP_HOST")
	if host == "" {
		return storage.NewDirFS(config.GetLibraryLocation())
	}

	port := 22
	if portStr := os.Getenv("CADENZA_SFTP_PORT"); portStr != "" {
		if parsed, err := strconv.Atoi(portStr); err == nil {
			port = parsed
		}
	}

	user := os.Getenv("CADENZA_SFTP_USER")
	if user == "" {
		user = os.Getenv("USER")
	}

	return storage.NewSFTPFS(host, port, user, config.GetLibraryLocation())
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, playerHandler *handlers.PlayerHandler, trackHandler *handlers.TrackHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Playback Control Endpoints
		playerGroup := apiGroup.Group("/player")
		{
			playerGroup.GET("/status", playerHandler.Status)
			playerGroup.GET("/size", playerHandler.Size)

			// Session management
			playerGroup.POST("/sessions", playerHandler.CreateSession)
			playerGroup.GET("/sessions", playerHandler.GetAllSessions)
			playerGroup.GET("/sessions/:sessionId", playerHandler.GetSession)
			playerGroup.DELETE("/sessions/:sessionId", playerHandler.CloseSession)

			// Cursor movement
			playerGroup.POST("/sessions/:sessionId/next", playerHandler.Next)
			playerGroup.POST("/sessions/:sessionId/select/:ordinal", playerHandler.Select)
			playerGroup.POST("/sessions/:sessionId/select-path", playerHandler.SelectPath)
		}

		// WebSocket endpoints for real-time playback events
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for specific session events
			wsGroup.GET("/player/:sessionId", playerHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all playback events
			wsGroup.GET("/player", playerHandler.HandleWebSocketAllConnection)
		}

		// Track discovery and streaming endpoints
		apiGroup.GET("/tracks", trackHandler.ListTracks)
		apiGroup.GET("/tracks/stream/*filepath", trackHandler.StreamTrack)

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
