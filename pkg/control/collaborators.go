package control

import (
	"log/slog"

	"github.com/pion/webrtc/v3"
)

// ScreenProvider supplies the local screen-capture track the host attaches
// once permission is granted. Capture acquisition itself lives outside this
// package.
type ScreenProvider interface {
	AcquireTrack() (webrtc.TrackLocal, error)
}

// InputSink performs OS-level input injection on the host. Failures are the
// sink's problem to log; they never affect connection state. Coordinates
// are absolute pixels, already mapped from the normalized wire form.
type InputSink interface {
	MovePointer(x, y int)
	ClickPointer(x, y int, button string)
	TogglePointer(x, y int, button string, down bool)
	ToggleKey(key string, down bool, modifiers []string)
}

// ResolutionProvider reports the host's screen size. Polled once and cached.
type ResolutionProvider interface {
	ScreenResolution() (width, height int)
}

// SyntheticScreen is the built-in provider for headless runs and tests: a
// VP8 sample track that negotiates like a real capture stream but carries
// no frames until someone writes to it.
type SyntheticScreen struct{}

func (SyntheticScreen) AcquireTrack() (webrtc.TrackLocal, error) {
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"screen", "godesk",
	)
}

// LogSink logs injected input instead of performing it. Stands in for the
// platform injector during development.
type LogSink struct{}

func (LogSink) MovePointer(x, y int) {
	slog.Debug("inject move", "x", x, "y", y)
}

func (LogSink) ClickPointer(x, y int, button string) {
	slog.Info("inject click", "x", x, "y", y, "button", button)
}

func (LogSink) TogglePointer(x, y int, button string, down bool) {
	slog.Info("inject pointer toggle", "x", x, "y", y, "button", button, "down", down)
}

func (LogSink) ToggleKey(key string, down bool, modifiers []string) {
	slog.Info("inject key", "key", key, "down", down, "modifiers", modifiers)
}

// StaticResolution is a fixed-size ResolutionProvider.
type StaticResolution struct {
	Width  int
	Height int
}

func (r StaticResolution) ScreenResolution() (int, int) {
	return r.Width, r.Height
}
