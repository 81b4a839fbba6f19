// Package source decides which playback backend a video reference needs and what URL that backend should be given.
package source

import (
	"fmt"
	"strings"
)

// Backend tags how a Source is played
type Backend int

const (
	// BackendNative is a media player the engine drives directly over IPC
	BackendNative Backend = iota
	// BackendEmbedded is an opaque third-party player that owns its own controls
	BackendEmbedded
)

func (b Backend) String() string {
	switch b {
	case BackendNative:
		return "native"
	case BackendEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

const (
	watchMarker     = "watch?v="
	shortLinkMarker = "youtu.be/"
	embedURLFormat  = "https://www.youtube.com/embed/%s?enablejsapi=1&rel=0"
)

// Props is what a calling page hands to the engine.  It owns all network I/O that produced these values.
type Props struct {
	VideoURL     string
	Title        string
	EmbeddedHint bool
}

// Source is the immutable result of resolving Props.  A different video means a new mount, never a mutated Source.
type Source struct {
	URL     string
	Title   string
	Backend Backend
}

// Resolve classifies props into a Source.  It is pure and intended to run once per mount.
func Resolve(props Props) Source {
	if !props.EmbeddedHint {
		return Source{
			URL:     props.VideoURL,
			Title:   props.Title,
			Backend: BackendNative,
		}
	}

	url := props.VideoURL
	if id, ok := VideoID(props.VideoURL); ok {
		url = EmbedURL(id)
	}

	return Source{
		URL:     url,
		Title:   props.Title,
		Backend: BackendEmbedded,
	}
}

// VideoID extracts the video identifier from a watch URL (`watch?v=<id>&...`) or a short link (`youtu.be/<id>?...`).
// ok is false when neither shape is present.
func VideoID(rawURL string) (id string, ok bool) {
	if i := strings.Index(rawURL, watchMarker); i >= 0 {
		rest := rawURL[i+len(watchMarker):]
		if end := strings.IndexByte(rest, '&'); end >= 0 {
			rest = rest[:end]
		}
		return rest, true
	}

	if i := strings.Index(rawURL, shortLinkMarker); i >= 0 {
		rest := rawURL[i+len(shortLinkMarker):]
		if end := strings.IndexByte(rest, '?'); end >= 0 {
			rest = rest[:end]
		}
		return rest, true
	}

	return "", false
}

// EmbedURL templates an identifier into the embed player URL with its JS API enabled and related videos disabled.
func EmbedURL(id string) string {
	return fmt.Sprintf(embedURLFormat, id)
}
