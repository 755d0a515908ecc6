package control

// Buttons carries the enabled state of each control.
type Buttons struct {
	Previous    bool
	Next        bool
	Rewind      bool
	FastForward bool
	Scrub       bool
}

// Presenter renders the control surface. All calls happen on the playback timeline.
type Presenter interface {
	OnProgress(position, buffered, duration int64)
	// OnScrubPosition updates the time label while the user drags.
	OnScrubPosition(position int64)
	OnButtonsEnabled(buttons Buttons)
	OnVisibilityChanged(visible bool)
	OnBufferingChanged(buffering bool)
	OnPlayingChanged(playing bool)
	// OnParametersChanged reports the playback rate and volume percentage.
	OnParametersChanged(speed float64, volume int)
	OnError(code int, cause error)
}
