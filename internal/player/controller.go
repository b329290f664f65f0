package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// Status is the controller's lifecycle state.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusBlocked:
		return "blocked"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

const (
	defaultVolume          = 70
	defaultWatchdogTimeout = 10 * time.Second
	defaultPollInterval    = 500 * time.Millisecond
)

const (
	blockedMessage    = "Player blocked. Retry, or open the track externally."
	invalidURLMessage = "This track's URL is not playable."
)

// Snapshot is a point-in-time copy of the playback session for rendering.
type Snapshot struct {
	Status    Status
	Track     *models.Track
	Playing   bool
	Elapsed   float64
	Duration  float64
	Volume    int
	Index     int
	QueueSize int
	CanGoNext bool
	CanGoPrev bool
	Message   string
}

// Controller owns the single playback session: the current track, the
// ordered queue, play/pause state, position polling, and volume. All adapter
// access goes through it.
//
// One Controller exists per process. All methods are safe for concurrent use.
type Controller struct {
	adapter Adapter
	mountID string
	logger  *log.Logger

	// Overridable in tests.
	watchdogTimeout time.Duration
	pollInterval    time.Duration

	mu             sync.Mutex
	observers      []chan Snapshot
	status         Status
	handle         Handle
	queue          []models.Track
	index          int
	current        *models.Track
	playing        bool
	elapsed        float64
	duration       float64
	volume         int
	message        string
	pendingVideoID string
	generation     int
	watchdog       *time.Timer
	stopPoll       chan struct{}
	closed         bool
}

// NewController creates a Controller in the Uninitialized state.
func NewController(adapter Adapter, mountID string, logger *log.Logger) *Controller {
	return &Controller{
		adapter:         adapter,
		mountID:         mountID,
		logger:          logger,
		watchdogTimeout: defaultWatchdogTimeout,
		pollInterval:    defaultPollInterval,
		volume:          defaultVolume,
	}
}

// Start begins player construction. It is a no-op while a construction is
// already in flight or a handle exists; a watchdog moves the controller to
// Blocked if no ready signal arrives in time.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.status == StatusLoading || c.handle != nil {
		return
	}

	c.startLocked(ctx)
}

// Retry tears down the current player and the adapter's library state, then
// begins a fresh construction. The generation bump makes any in-flight
// callback from the superseded instance a no-op.
func (c *Controller) Retry(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if c.handle != nil {
		go c.handle.Destroy()
		c.handle = nil
	}
	c.playing = false
	c.adapter.Reset()

	c.startLocked(ctx)
}

func (c *Controller) startLocked(ctx context.Context) {
	c.generation++
	gen := c.generation
	c.status = StatusLoading
	c.message = ""

	if c.stopPoll != nil {
		close(c.stopPoll)
		c.stopPoll = nil
	}

	if c.watchdog != nil {
		c.watchdog.Stop()
	}
	c.watchdog = time.AfterFunc(c.watchdogTimeout, func() {
		c.watchdogFired(gen)
	})

	go func() {
		handle, err := c.adapter.CreatePlayer(ctx, c.mountID)
		c.finishCreate(gen, handle, err)
	}()

	c.notifyLocked()
}

// finishCreate settles a construction attempt. Results from a superseded
// generation are discarded, destroying their handle.
func (c *Controller) finishCreate(gen int, handle Handle, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.closed {
		if handle != nil {
			go handle.Destroy()
		}
		return
	}

	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}

	if err != nil {
		c.status = StatusBlocked
		c.message = blockedMessage
		c.logger.Error("player construction failed", "error", err)
		c.notifyLocked()
		return
	}

	c.handle = handle
	c.status = StatusReady

	if err := handle.SetVolume(c.volume); err != nil {
		c.logger.Debug("failed to apply volume", "error", err)
	}

	if c.pendingVideoID != "" {
		if err := c.loadAndPlayLocked(c.pendingVideoID); err != nil {
			c.logger.Error("failed to start pending track", "error", err)
		}
		c.pendingVideoID = ""
	}

	stop := make(chan struct{})
	c.stopPoll = stop
	go c.pumpEvents(gen, handle)
	go c.poll(gen, handle, stop)

	c.notifyLocked()
}

func (c *Controller) watchdogFired(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.closed || c.handle != nil {
		return
	}

	c.status = StatusBlocked
	c.message = blockedMessage
	c.logger.Warn("player never signalled ready")
	c.notifyLocked()
}

// HandleEvent applies one adapter event tagged with the generation of the
// handle that emitted it. Events from superseded generations are ignored.
func (c *Controller) HandleEvent(gen int, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.closed {
		return
	}

	switch ev := event.(type) {
	case StateChange:
		switch ev.State {
		case StateEnded:
			if err := c.advanceLocked(1); err != nil {
				c.logger.Error("auto-advance failed", "error", err)
			}
		case StatePlaying:
			c.playing = true
			c.message = ""
		case StatePaused:
			c.playing = false
		}
	case PlayerError:
		c.status = StatusBlocked
		c.message = ErrorMessage(ev.Code)
		c.playing = false
		c.logger.Warn("player reported error", "code", ev.Code)
	}

	c.notifyLocked()
}

// PlayQueue replaces the queue with tracks and starts playback at track
// (index 0 when track is not in the list). An unparseable track URL fails
// with [shared.ErrInvalidMediaURL] but leaves the queue in place.
func (c *Controller) PlayQueue(tracks []models.Track, track models.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := 0
	for i, item := range tracks {
		if item.ID == track.ID {
			index = i
			break
		}
	}

	c.queue = append([]models.Track(nil), tracks...)
	c.index = index

	err := c.playLocked(track)
	c.notifyLocked()
	return err
}

// PlayTrack plays a single track as a one-element queue.
func (c *Controller) PlayTrack(track models.Track) error {
	return c.PlayQueue([]models.Track{track}, track)
}

// TogglePlay pauses if playing and plays if paused. No-op without a handle.
// The playing flag is updated optimistically; the next state-change event is
// authoritative.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}

	var err error
	if c.playing {
		c.playing = false
		err = c.handle.Pause()
	} else {
		c.playing = true
		err = c.handle.Play()
	}

	c.notifyLocked()
	return err
}

// PlayNext advances to the next queued track. No-op at the end of the queue.
func (c *Controller) PlayNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.advanceLocked(1)
	c.notifyLocked()
	return err
}

// PlayPrev retreats to the previous queued track. No-op at the start.
func (c *Controller) PlayPrev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.advanceLocked(-1)
	c.notifyLocked()
	return err
}

// SeekTo jumps to the given position, updating elapsed time optimistically.
// No-op without a handle.
func (c *Controller) SeekTo(seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}

	c.elapsed = seconds
	return c.handle.Seek(seconds)
}

// SetVolume clamps level to [0,100] and stores it, forwarding to the player
// only when a handle exists.
func (c *Controller) SetVolume(level int) error {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume = level
	if c.handle == nil {
		return nil
	}
	return c.handle.SetVolume(level)
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Updates returns a channel receiving a snapshot after each state change.
// Position-poll ticks are not published; poll [Snapshot] for those. Slow
// receivers miss intermediate snapshots rather than block the controller.
func (c *Controller) Updates() <-chan Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 4)
	c.observers = append(c.observers, ch)
	return ch
}

func (c *Controller) notifyLocked() {
	snapshot := c.snapshotLocked()
	for _, ch := range c.observers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Status:    c.status,
		Playing:   c.playing,
		Elapsed:   c.elapsed,
		Duration:  c.duration,
		Volume:    c.volume,
		Index:     c.index,
		QueueSize: len(c.queue),
		CanGoNext: len(c.queue) > 0 && c.index < len(c.queue)-1,
		CanGoPrev: len(c.queue) > 0 && c.index > 0,
		Message:   c.message,
	}

	if c.current != nil {
		track := *c.current
		snapshot.Track = &track
	}

	return snapshot
}

// Close tears the session down. Any late callbacks from in-flight work are
// discarded.
func (c *Controller) Close() {
	c.mu.Lock()

	c.closed = true
	c.generation++
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
	if c.stopPoll != nil {
		close(c.stopPoll)
		c.stopPoll = nil
	}

	handle := c.handle
	c.handle = nil
	c.mu.Unlock()

	if handle != nil {
		if err := handle.Destroy(); err != nil {
			c.logger.Debug("failed to destroy player", "error", err)
		}
	}
}

func (c *Controller) advanceLocked(delta int) error {
	if len(c.queue) == 0 {
		return nil
	}

	next := c.index + delta
	if next < 0 || next >= len(c.queue) {
		return nil
	}

	c.index = next
	return c.playLocked(c.queue[next])
}

func (c *Controller) playLocked(track models.Track) error {
	videoID := ExtractVideoID(track.YouTubeURL)
	if videoID == "" {
		c.message = invalidURLMessage
		return fmt.Errorf("%w: %s", shared.ErrInvalidMediaURL, track.YouTubeURL)
	}

	c.message = ""
	current := track
	c.current = &current
	c.elapsed = 0
	c.duration = 0

	if c.handle == nil {
		c.pendingVideoID = videoID
		return nil
	}

	// A playback attempt on a live handle clears a previous error state.
	if c.status == StatusBlocked {
		c.status = StatusReady
	}

	return c.loadAndPlayLocked(videoID)
}

func (c *Controller) loadAndPlayLocked(videoID string) error {
	if err := c.handle.LoadVideo(videoID); err != nil {
		return fmt.Errorf("failed to load video: %w", err)
	}
	if err := c.handle.Play(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	c.playing = true
	return nil
}

// pumpEvents republishes handle events into the transition function until
// the handle's channel closes.
func (c *Controller) pumpEvents(gen int, handle Handle) {
	for event := range handle.Events() {
		c.HandleEvent(gen, event)
	}
}

// poll refreshes elapsed time on a fixed period while the handle exists.
// Duration is only overwritten once a positive value is observed.
func (c *Controller) poll(gen int, handle Handle, stop <-chan struct{}) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		elapsed, duration, err := handle.Position()
		if err != nil {
			continue
		}

		c.mu.Lock()
		if gen != c.generation || c.closed {
			c.mu.Unlock()
			return
		}
		c.elapsed = elapsed
		if duration > 0 {
			c.duration = duration
		}
		c.mu.Unlock()
	}
}
