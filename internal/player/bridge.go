package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

const (
	// acquireTimeout bounds the library handshake. The bridge loads the
	// embeddable player library on first request, which can hang silently
	// when blocked.
	acquireTimeout = 8 * time.Second

	eventRetryDelay = 500 * time.Millisecond
)

// Bridge implements [Adapter] against the local player bridge daemon.
//
// The bridge wraps the embeddable player library and exposes it over HTTP on
// localhost. Library acquisition is single-flight and memoized: concurrent
// callers share one handshake, and the settled result (success or failure)
// is reused until [Bridge.Reset].
type Bridge struct {
	baseURL        string
	httpClient     *http.Client
	logger         *log.Logger
	acquireTimeout time.Duration

	mu      sync.Mutex
	acquire *acquisition
}

type acquisition struct {
	done chan struct{}
	err  error
}

// NewBridge creates a Bridge from player configuration.
func NewBridge(cfg shared.PlayerConfig, logger *log.Logger) *Bridge {
	return &Bridge{
		baseURL:        cfg.BridgeURL,
		httpClient:     http.DefaultClient,
		logger:         logger,
		acquireTimeout: acquireTimeout,
	}
}

// Acquire ensures the bridge's player library is loaded, sharing a single
// in-flight handshake across callers. Fails with [shared.ErrLibraryLoad] when
// the bridge cannot signal readiness within the timeout.
func (b *Bridge) Acquire(ctx context.Context) error {
	b.mu.Lock()
	a := b.acquire
	if a == nil {
		a = &acquisition{done: make(chan struct{})}
		b.acquire = a
		go b.handshake(a)
	}
	b.mu.Unlock()

	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handshake runs detached from any caller context so the memoized result is
// the same for everyone waiting on it.
func (b *Bridge) handshake(a *acquisition) {
	defer close(a.done)

	ctx, cancel := context.WithTimeout(context.Background(), b.acquireTimeout)
	defer cancel()

	if err := b.do(ctx, http.MethodGet, "/library", nil, nil); err != nil {
		a.err = fmt.Errorf("%w: %v", shared.ErrLibraryLoad, err)
		b.logger.Error("player library acquisition failed", "error", err)
	}
}

// Reset clears the memoized acquisition and tells the daemon to tear down
// its library state, permitting a clean reacquisition on the next attempt.
func (b *Bridge) Reset() {
	b.mu.Lock()
	b.acquire = nil
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.do(ctx, http.MethodPost, "/reset", nil, nil); err != nil {
		b.logger.Debug("bridge reset request failed", "error", err)
	}
}

// CreatePlayer constructs a player bound to mountID. The call resolves only
// once the instance reports ready.
func (b *Bridge) CreatePlayer(ctx context.Context, mountID string) (Handle, error) {
	if err := b.Acquire(ctx); err != nil {
		return nil, err
	}

	var created struct {
		ID string `json:"id"`
	}
	payload := map[string]string{"mount_id": mountID}
	if err := b.do(ctx, http.MethodPost, "/players", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	handle := &bridgeHandle{
		bridge: b,
		id:     created.ID,
		events: make(chan Event, 16),
		cancel: cancel,
	}
	go handle.pump(pumpCtx)

	return handle, nil
}

func (b *Bridge) do(ctx context.Context, method, path string, payload, result any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("bridge error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("bridge error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// bridgeHandle is a player instance held by the bridge daemon.
type bridgeHandle struct {
	bridge *Bridge
	id     string
	events chan Event
	cancel context.CancelFunc
}

func (h *bridgeHandle) LoadVideo(videoID string) error {
	return h.post("/load", map[string]string{"video_id": videoID})
}

func (h *bridgeHandle) Play() error {
	return h.post("/play", nil)
}

func (h *bridgeHandle) Pause() error {
	return h.post("/pause", nil)
}

func (h *bridgeHandle) Seek(seconds float64) error {
	return h.post("/seek", map[string]float64{"seconds": seconds})
}

func (h *bridgeHandle) SetVolume(level int) error {
	return h.post("/volume", map[string]int{"level": level})
}

func (h *bridgeHandle) Position() (float64, float64, error) {
	var position struct {
		Elapsed  float64 `json:"elapsed"`
		Duration float64 `json:"duration"`
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	path := fmt.Sprintf("/players/%s/position", h.id)
	if err := h.bridge.do(ctx, http.MethodGet, path, nil, &position); err != nil {
		return 0, 0, err
	}

	return position.Elapsed, position.Duration, nil
}

func (h *bridgeHandle) Events() <-chan Event {
	return h.events
}

func (h *bridgeHandle) Destroy() error {
	h.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return h.bridge.do(ctx, http.MethodDelete, "/players/"+h.id, nil, nil)
}

func (h *bridgeHandle) post(action string, payload any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.bridge.do(ctx, http.MethodPost, fmt.Sprintf("/players/%s%s", h.id, action), payload, nil)
}

// pump long-polls the daemon's event feed and republishes normalized events
// until the handle is destroyed.
func (h *bridgeHandle) pump(ctx context.Context) {
	defer close(h.events)

	for {
		var batch []struct {
			Type  string `json:"type"`
			State int    `json:"state"`
			Code  int    `json:"code"`
		}

		path := fmt.Sprintf("/players/%s/events", h.id)
		err := h.bridge.do(ctx, http.MethodGet, path, nil, &batch)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			h.bridge.logger.Debug("event poll failed", "player", h.id, "error", err)
			select {
			case <-time.After(eventRetryDelay):
				continue
			case <-ctx.Done():
				return
			}
		}

		for _, raw := range batch {
			var event Event
			switch raw.Type {
			case "state":
				event = StateChange{State: State(raw.State)}
			case "error":
				event = PlayerError{Code: raw.Code}
			default:
				continue
			}

			select {
			case h.events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
