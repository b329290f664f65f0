package player

import (
	"context"
	"fmt"
)

// State is the playback state reported by the player.
type State int

const (
	StateUnstarted State = iota
	StateEnded
	StatePlaying
	StatePaused
	StateBuffering
	StateCued
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateEnded:
		return "ended"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is a normalized player notification delivered to the controller.
type Event interface {
	isEvent()
}

// StateChange reports a playback state transition.
type StateChange struct {
	State State
}

// PlayerError reports a runtime error code from the player.
type PlayerError struct {
	Code int
}

func (StateChange) isEvent() {}
func (PlayerError) isEvent() {}

// embedRestrictedCodes are the player error codes meaning the video owner
// disallows embedded playback. They get distinct user-facing copy pointing at
// the external fallback.
var embedRestrictedCodes = map[int]bool{
	101: true,
	150: true,
	153: true,
}

// ErrorMessage maps a player error code to its user-facing message.
func ErrorMessage(code int) string {
	if embedRestrictedCodes[code] {
		return "Embed blocked by the video owner. Open the track externally."
	}
	return fmt.Sprintf("player error %d", code)
}

// Handle is a constructed player instance.
type Handle interface {
	LoadVideo(videoID string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(level int) error
	Position() (elapsed, duration float64, err error)
	Events() <-chan Event
	Destroy() error
}

// Adapter constructs player handles. At most one handle should exist at a
// time; Reset clears the memoized library acquisition so a retry can start
// clean.
type Adapter interface {
	CreatePlayer(ctx context.Context, mountID string) (Handle, error)
	Reset()
}
