package playback

// SeekTarget maps a pointer offset x on a progress track of width w to a playback time.  It is 0 when the track has no
// width or the duration is unknown.
func SeekTarget(x, w, duration float64) float64 {
	if w <= 0 || duration <= 0 {
		return 0
	}
	return (x / w) * duration
}
