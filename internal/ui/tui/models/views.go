package models

// View represents what the player surface is currently showing
type View string

const (
	ViewEmbedded View = "embedded"
	ViewLoading  View = "loading"
	ViewPlayback View = "playback"
	ViewError    View = "error"
)

// Modal represents a UI temporarily shown over the player surface
type Modal string

const (
	ModalNone     Modal = "none"
	ModalSettings Modal = "settings"
	ModalJump     Modal = "jump"
)
