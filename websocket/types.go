package websocket

// This file contains WebSocket-specific type definitions.
// Currently, WebSocket message types are defined in types/websocket.go
// to avoid circular dependencies. This file can be used for additional
// WebSocket-specific types that don't need to be shared across packages.