// Package player drives playback through an external embeddable player
// exposed by a local bridge daemon.
//
// # Adapter
//
// [Adapter] acquires the bridge's player library exactly once per process
// (single-flight, memoized, bounded by a timeout) and constructs player
// handles bound to a mount id. [Bridge] is the HTTP implementation; tests
// substitute fakes.
//
// # Controller
//
// [Controller] owns the playback session: the current track, the ordered
// queue, play/pause state, elapsed/duration polling, and volume. It is a
// state machine over Uninitialized, Loading, Ready, and Blocked. A watchdog
// turns a silent load failure into Blocked, and a reload generation counter
// ensures callbacks from a superseded player instance are ignored after a
// retry.
//
// Adapter events are delivered as [Event] values into
// [Controller.HandleEvent] rather than raw callbacks, so transitions can be
// exercised without a live bridge.
package player
