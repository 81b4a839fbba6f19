package models

import "github.com/coursedeck/playdeck/internal/player"

// BackendReadyMsg is sent when the native player accepted its IPC connection
type BackendReadyMsg struct {
	Handle player.Handle
}

// BackendFailedMsg is sent when the native player could not be launched
type BackendFailedMsg struct {
	Err error
}

// BackendEventMsg carries one event from the native player into the event loop
type BackendEventMsg struct {
	Event player.Event
}

// BackendClosedMsg is sent when the native player's event stream ends
type BackendClosedMsg struct{}

// EmbedOpenedMsg is sent after handing the embed URL to the system
type EmbedOpenedMsg struct {
	Err error
}

// loadCheckMsg asks the model to check the load timeout
type loadCheckMsg struct{}
