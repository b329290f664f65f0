package player

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

type fakeHandle struct {
	mu        sync.Mutex
	loaded    []string
	playCalls int
	pauseCall int
	volumes   []int
	seeks     []float64
	elapsed   float64
	duration  float64
	events    chan Event
	destroyed bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{events: make(chan Event, 16)}
}

func (h *fakeHandle) LoadVideo(videoID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaded = append(h.loaded, videoID)
	return nil
}

func (h *fakeHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playCalls++
	return nil
}

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauseCall++
	return nil
}

func (h *fakeHandle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seeks = append(h.seeks, seconds)
	return nil
}

func (h *fakeHandle) SetVolume(level int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volumes = append(h.volumes, level)
	return nil
}

func (h *fakeHandle) Position() (float64, float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.elapsed, h.duration, nil
}

func (h *fakeHandle) Events() <-chan Event {
	return h.events
}

func (h *fakeHandle) Destroy() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.destroyed = true
	return nil
}

func (h *fakeHandle) lastLoaded() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.loaded) == 0 {
		return ""
	}
	return h.loaded[len(h.loaded)-1]
}

func (h *fakeHandle) loadCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.loaded)
}

func (h *fakeHandle) lastVolume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.volumes) == 0 {
		return -1
	}
	return h.volumes[len(h.volumes)-1]
}

func (h *fakeHandle) setPosition(elapsed, duration float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.elapsed = elapsed
	h.duration = duration
}

type fakeAdapter struct {
	mu      sync.Mutex
	handle  *fakeHandle
	err     error
	creates int
	resets  int
	block   chan struct{}
}

func (a *fakeAdapter) CreatePlayer(ctx context.Context, mountID string) (Handle, error) {
	a.mu.Lock()
	block := a.block
	a.creates++
	a.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.handle, nil
}

func (a *fakeAdapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resets++
}

func testController(adapter Adapter) *Controller {
	c := NewController(adapter, "test-player", shared.NewLogger(io.Discard))
	c.watchdogTimeout = 50 * time.Millisecond
	c.pollInterval = 5 * time.Millisecond
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func readyController(t *testing.T) (*Controller, *fakeHandle, *fakeAdapter) {
	t.Helper()

	handle := newFakeHandle()
	adapter := &fakeAdapter{handle: handle}
	c := testController(adapter)
	c.Start(context.Background())
	waitFor(t, "ready", func() bool { return c.Snapshot().Status == StatusReady })
	t.Cleanup(c.Close)

	return c, handle, adapter
}

func (c *Controller) currentGeneration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func queueTracks() []models.Track {
	return []models.Track{
		{ID: "t1", Title: "One", YouTubeURL: "https://youtu.be/vid1", OrderIndex: 0},
		{ID: "t2", Title: "Two", YouTubeURL: "https://youtu.be/vid2", OrderIndex: 1},
		{ID: "t3", Title: "Three", YouTubeURL: "https://youtu.be/vid3", OrderIndex: 2},
	}
}

func TestController(t *testing.T) {
	t.Run("Ready applies volume", func(t *testing.T) {
		_, handle, _ := readyController(t)

		if handle.lastVolume() != defaultVolume {
			t.Errorf("expected volume %d applied on ready, got %d", defaultVolume, handle.lastVolume())
		}
	})

	t.Run("Queue navigation", func(t *testing.T) {
		c, handle, _ := readyController(t)
		tracks := queueTracks()

		if err := c.PlayQueue(tracks, tracks[1]); err != nil {
			t.Fatalf("failed to play queue: %v", err)
		}

		snapshot := c.Snapshot()
		if snapshot.Index != 1 || !snapshot.CanGoPrev || !snapshot.CanGoNext {
			t.Errorf("expected index 1 with both directions open, got %+v", snapshot)
		}

		if handle.lastLoaded() != "vid2" {
			t.Errorf("expected vid2 loaded, got %s", handle.lastLoaded())
		}

		if err := c.PlayPrev(); err != nil {
			t.Fatalf("failed to play prev: %v", err)
		}

		snapshot = c.Snapshot()
		if snapshot.Index != 0 || snapshot.CanGoPrev {
			t.Errorf("expected index 0 with prev closed, got %+v", snapshot)
		}

		if handle.lastLoaded() != "vid1" {
			t.Errorf("expected vid1 loaded, got %s", handle.lastLoaded())
		}

		for i := 0; i < 2; i++ {
			if err := c.PlayNext(); err != nil {
				t.Fatalf("failed to play next: %v", err)
			}
		}

		snapshot = c.Snapshot()
		if snapshot.Index != 2 || snapshot.CanGoNext {
			t.Errorf("expected index 2 with next closed, got %+v", snapshot)
		}

		loads := handle.loadCount()
		if err := c.PlayNext(); err != nil {
			t.Fatalf("play next past the end should be a no-op: %v", err)
		}

		snapshot = c.Snapshot()
		if snapshot.Index != 2 || handle.loadCount() != loads {
			t.Error("expected no-op at the end of the queue")
		}
	})

	t.Run("Queue start track not in list", func(t *testing.T) {
		c, handle, _ := readyController(t)
		tracks := queueTracks()
		outsider := models.Track{ID: "tx", Title: "Other", YouTubeURL: "https://youtu.be/vidx"}

		if err := c.PlayQueue(tracks, outsider); err != nil {
			t.Fatalf("failed to play queue: %v", err)
		}

		if snapshot := c.Snapshot(); snapshot.Index != 0 {
			t.Errorf("expected index 0 for unknown start track, got %d", snapshot.Index)
		}

		if handle.lastLoaded() != "vidx" {
			t.Errorf("expected vidx loaded, got %s", handle.lastLoaded())
		}
	})

	t.Run("Volume clamps", func(t *testing.T) {
		c, handle, _ := readyController(t)

		if err := c.SetVolume(150); err != nil {
			t.Fatalf("failed to set volume: %v", err)
		}
		if c.Snapshot().Volume != 100 || handle.lastVolume() != 100 {
			t.Errorf("expected clamp to 100, got %d/%d", c.Snapshot().Volume, handle.lastVolume())
		}

		if err := c.SetVolume(-5); err != nil {
			t.Fatalf("failed to set volume: %v", err)
		}
		if c.Snapshot().Volume != 0 || handle.lastVolume() != 0 {
			t.Errorf("expected clamp to 0, got %d/%d", c.Snapshot().Volume, handle.lastVolume())
		}
	})

	t.Run("Volume without handle stays local", func(t *testing.T) {
		adapter := &fakeAdapter{handle: newFakeHandle()}
		c := testController(adapter)

		if err := c.SetVolume(85); err != nil {
			t.Fatalf("failed to set volume: %v", err)
		}

		if c.Snapshot().Volume != 85 {
			t.Errorf("expected volume 85, got %d", c.Snapshot().Volume)
		}

		if got := adapter.handle.lastVolume(); got != -1 {
			t.Errorf("expected no forwarded volume, got %d", got)
		}
	})

	t.Run("Pending track plays once ready", func(t *testing.T) {
		handle := newFakeHandle()
		block := make(chan struct{})
		adapter := &fakeAdapter{handle: handle, block: block}
		c := testController(adapter)
		c.Start(context.Background())
		t.Cleanup(c.Close)

		track := queueTracks()[0]
		if err := c.PlayTrack(track); err != nil {
			t.Fatalf("failed to request track before ready: %v", err)
		}

		if handle.loadCount() != 0 {
			t.Error("no load should happen before the player is ready")
		}

		close(block)
		waitFor(t, "pending track to start", func() bool {
			return handle.lastLoaded() == "vid1"
		})

		snapshot := c.Snapshot()
		if !snapshot.Playing || snapshot.Track == nil || snapshot.Track.ID != "t1" {
			t.Errorf("expected pending track playing, got %+v", snapshot)
		}
	})

	t.Run("Invalid URL keeps queue", func(t *testing.T) {
		c, handle, _ := readyController(t)
		bad := models.Track{ID: "bad", Title: "Bad", YouTubeURL: "https://vimeo.com/123"}
		tracks := append(queueTracks(), bad)

		err := c.PlayQueue(tracks, bad)
		if !errors.Is(err, shared.ErrInvalidMediaURL) {
			t.Fatalf("expected ErrInvalidMediaURL, got %v", err)
		}

		snapshot := c.Snapshot()
		if snapshot.QueueSize != 4 {
			t.Errorf("expected queue kept, got size %d", snapshot.QueueSize)
		}
		if snapshot.Message != invalidURLMessage {
			t.Errorf("expected invalid URL message, got %q", snapshot.Message)
		}
		if handle.loadCount() != 0 {
			t.Error("no load should be attempted for an invalid URL")
		}
	})

	t.Run("Toggle play", func(t *testing.T) {
		c, handle, _ := readyController(t)

		if err := c.PlayTrack(queueTracks()[0]); err != nil {
			t.Fatalf("failed to play track: %v", err)
		}

		if err := c.TogglePlay(); err != nil {
			t.Fatalf("failed to toggle: %v", err)
		}
		if c.Snapshot().Playing {
			t.Error("expected paused after toggle")
		}

		if err := c.TogglePlay(); err != nil {
			t.Fatalf("failed to toggle: %v", err)
		}
		if !c.Snapshot().Playing {
			t.Error("expected playing after second toggle")
		}

		handle.mu.Lock()
		pauses := handle.pauseCall
		handle.mu.Unlock()
		if pauses != 1 {
			t.Errorf("expected 1 pause call, got %d", pauses)
		}
	})

	t.Run("Toggle without handle is a no-op", func(t *testing.T) {
		c := testController(&fakeAdapter{handle: newFakeHandle()})
		if err := c.TogglePlay(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("Seek updates elapsed optimistically", func(t *testing.T) {
		c, handle, _ := readyController(t)

		if err := c.SeekTo(42); err != nil {
			t.Fatalf("failed to seek: %v", err)
		}

		if got := c.Snapshot().Elapsed; got != 42 {
			t.Errorf("expected elapsed 42, got %v", got)
		}

		handle.mu.Lock()
		seeks := len(handle.seeks)
		handle.mu.Unlock()
		if seeks != 1 {
			t.Errorf("expected 1 seek call, got %d", seeks)
		}
	})

	t.Run("Poll refreshes position", func(t *testing.T) {
		c, handle, _ := readyController(t)

		handle.setPosition(12.5, 240)
		waitFor(t, "position update", func() bool {
			snapshot := c.Snapshot()
			return snapshot.Elapsed == 12.5 && snapshot.Duration == 240
		})

		// A transient zero duration must not clobber the known one.
		handle.setPosition(13, 0)
		waitFor(t, "elapsed update", func() bool { return c.Snapshot().Elapsed == 13 })
		if got := c.Snapshot().Duration; got != 240 {
			t.Errorf("expected duration kept at 240, got %v", got)
		}
	})

	t.Run("Auto-advance on ended", func(t *testing.T) {
		c, handle, _ := readyController(t)
		tracks := queueTracks()

		if err := c.PlayQueue(tracks, tracks[0]); err != nil {
			t.Fatalf("failed to play queue: %v", err)
		}

		handle.events <- StateChange{State: StateEnded}
		waitFor(t, "auto-advance", func() bool { return c.Snapshot().Index == 1 })

		if handle.lastLoaded() != "vid2" {
			t.Errorf("expected vid2 loaded after auto-advance, got %s", handle.lastLoaded())
		}

		// At the end of the queue, ended just stops playback.
		if err := c.PlayNext(); err != nil {
			t.Fatalf("failed to play next: %v", err)
		}
		loads := handle.loadCount()
		c.HandleEvent(c.currentGeneration(), StateChange{State: StateEnded})

		if c.Snapshot().Index != 2 || handle.loadCount() != loads {
			t.Error("expected no-op for ended at the end of the queue")
		}
	})

	t.Run("State events reconcile playing flag", func(t *testing.T) {
		c, _, _ := readyController(t)
		gen := c.currentGeneration()

		c.HandleEvent(gen, StateChange{State: StatePlaying})
		if !c.Snapshot().Playing {
			t.Error("expected playing after playing event")
		}

		c.HandleEvent(gen, StateChange{State: StatePaused})
		if c.Snapshot().Playing {
			t.Error("expected paused after paused event")
		}
	})

	t.Run("Error classification", func(t *testing.T) {
		c, _, _ := readyController(t)
		gen := c.currentGeneration()

		c.HandleEvent(gen, PlayerError{Code: 150})
		snapshot := c.Snapshot()
		if snapshot.Status != StatusBlocked {
			t.Errorf("expected blocked status, got %s", snapshot.Status)
		}
		if snapshot.Message != ErrorMessage(150) {
			t.Errorf("expected embed message, got %q", snapshot.Message)
		}

		c.HandleEvent(gen, PlayerError{Code: 2})
		if got := c.Snapshot().Message; got != "player error 2" {
			t.Errorf("expected generic message, got %q", got)
		}

		// A fresh playback attempt on the live handle clears the error.
		if err := c.PlayTrack(queueTracks()[0]); err != nil {
			t.Fatalf("failed to play track: %v", err)
		}
		snapshot = c.Snapshot()
		if snapshot.Status != StatusReady || snapshot.Message != "" {
			t.Errorf("expected recovery on playback, got %+v", snapshot)
		}
	})

	t.Run("Watchdog fires when ready never arrives", func(t *testing.T) {
		adapter := &fakeAdapter{handle: newFakeHandle(), block: make(chan struct{})}
		c := testController(adapter)
		c.Start(context.Background())
		t.Cleanup(c.Close)

		waitFor(t, "watchdog", func() bool { return c.Snapshot().Status == StatusBlocked })
		if got := c.Snapshot().Message; got != blockedMessage {
			t.Errorf("expected blocked message, got %q", got)
		}
	})

	t.Run("Construction failure blocks", func(t *testing.T) {
		adapter := &fakeAdapter{err: shared.ErrLibraryLoad}
		c := testController(adapter)
		c.Start(context.Background())
		t.Cleanup(c.Close)

		waitFor(t, "blocked", func() bool { return c.Snapshot().Status == StatusBlocked })
	})

	t.Run("Retry discards stale callbacks", func(t *testing.T) {
		c, _, adapter := readyController(t)
		oldGen := c.currentGeneration()

		adapter.mu.Lock()
		adapter.block = make(chan struct{})
		adapter.mu.Unlock()

		c.Retry(context.Background())

		adapter.mu.Lock()
		resets := adapter.resets
		adapter.mu.Unlock()
		if resets != 1 {
			t.Errorf("expected adapter reset, got %d", resets)
		}

		// A ready signal from the superseded instance must be ignored.
		stale := newFakeHandle()
		c.finishCreate(oldGen, stale, nil)

		snapshot := c.Snapshot()
		if snapshot.Status != StatusLoading {
			t.Errorf("expected loading after retry, got %s", snapshot.Status)
		}

		waitFor(t, "stale handle destroyed", func() bool {
			stale.mu.Lock()
			defer stale.mu.Unlock()
			return stale.destroyed
		})

		// Likewise a stale playing event.
		c.HandleEvent(oldGen, StateChange{State: StatePlaying})
		if c.Snapshot().Playing {
			t.Error("stale event should not change state")
		}
	})

	t.Run("Updates publishes state changes", func(t *testing.T) {
		handle := newFakeHandle()
		adapter := &fakeAdapter{handle: handle}
		c := testController(adapter)
		t.Cleanup(c.Close)

		updates := c.Updates()
		c.Start(context.Background())

		sawLoading := false
		sawReady := false
		deadline := time.After(2 * time.Second)
		for !sawReady {
			select {
			case snap := <-updates:
				switch snap.Status {
				case StatusLoading:
					sawLoading = true
				case StatusReady:
					sawReady = true
				}
			case <-deadline:
				t.Fatal("timed out waiting for ready update")
			}
		}
		if !sawLoading {
			t.Error("expected a loading update before ready")
		}

		if err := c.PlayTrack(queueTracks()[0]); err != nil {
			t.Fatalf("PlayTrack failed: %v", err)
		}

		waitFor(t, "track update", func() bool {
			for {
				select {
				case snap := <-updates:
					if snap.Track != nil && snap.Track.ID == "t1" {
						return true
					}
				default:
					return false
				}
			}
		})
	})

	t.Run("Close destroys handle", func(t *testing.T) {
		handle := newFakeHandle()
		adapter := &fakeAdapter{handle: handle}
		c := testController(adapter)
		c.Start(context.Background())
		waitFor(t, "ready", func() bool { return c.Snapshot().Status == StatusReady })

		c.Close()

		handle.mu.Lock()
		destroyed := handle.destroyed
		handle.mu.Unlock()
		if !destroyed {
			t.Error("expected handle destroyed on close")
		}
	})
}
