package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantID string
		wantOK bool
	}{
		{"WatchDropsTrailingParams", "https://www.youtube.com/watch?v=ABC123&t=5", "ABC123", true},
		{"WatchWithoutParams", "https://www.youtube.com/watch?v=ABC123", "ABC123", true},
		{"ShortLinkDropsQuery", "https://youtu.be/ABC123?si=xyz", "ABC123", true},
		{"ShortLinkWithoutQuery", "https://youtu.be/ABC123", "ABC123", true},
		{"WatchWinsOverShortLink", "https://youtu.be/redirect?next=watch?v=XYZ", "XYZ", true},
		{"UnknownShape", "https://cdn.example.com/lessons/intro.mp4", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := VideoID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("EmbeddedShortLink", func(t *testing.T) {
		src := Resolve(Props{VideoURL: "https://youtu.be/XYZ?t=3", Title: "Intro", EmbeddedHint: true})

		assert.Equal(t, BackendEmbedded, src.Backend)
		assert.Equal(t, "https://www.youtube.com/embed/XYZ?enablejsapi=1&rel=0", src.URL)
		assert.Equal(t, "Intro", src.Title)
	})

	t.Run("EmbeddedWatchURL", func(t *testing.T) {
		src := Resolve(Props{VideoURL: "https://www.youtube.com/watch?v=ABC123&t=5", EmbeddedHint: true})

		assert.Equal(t, "https://www.youtube.com/embed/ABC123?enablejsapi=1&rel=0", src.URL)
	})

	t.Run("EmbeddedUnknownShapeFailsOpen", func(t *testing.T) {
		raw := "https://player.vimeo.com/video/76979871"
		src := Resolve(Props{VideoURL: raw, EmbeddedHint: true})

		assert.Equal(t, BackendEmbedded, src.Backend)
		assert.Equal(t, raw, src.URL)
	})

	t.Run("NativeKeepsURL", func(t *testing.T) {
		raw := "https://youtu.be/XYZ?t=3"
		src := Resolve(Props{VideoURL: raw, Title: "Lesson 1"})

		assert.Equal(t, BackendNative, src.Backend)
		assert.Equal(t, raw, src.URL)
	})

	t.Run("Pure", func(t *testing.T) {
		props := Props{VideoURL: "https://youtu.be/XYZ", EmbeddedHint: true}
		assert.Equal(t, Resolve(props), Resolve(props))
	})
}

func TestBackendString(t *testing.T) {
	assert.Equal(t, "native", BackendNative.String())
	assert.Equal(t, "embedded", BackendEmbedded.String())
	assert.Equal(t, "unknown", Backend(42).String())
}
