package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// Open launches a soundtrack track in the default browser. This is the
// fallback for videos whose owners block embedded playback.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	soundtrackID := cmd.StringArg("id")
	if soundtrackID == "" {
		return fmt.Errorf("%w: a soundtrack ID is required", shared.ErrMissingArgument)
	}

	soundtrack, err := r.library.Soundtrack(soundtrackID)
	if err != nil {
		return err
	}

	tracks := soundtrack.Tracks()
	index := int(cmd.Int("track"))
	if index < 1 || index > len(tracks) {
		return fmt.Errorf("%w: track %d does not exist (soundtrack has %d)", shared.ErrInvalidArgument, index, len(tracks))
	}

	track := tracks[index-1]
	r.logger.Info("opening track externally", "title", track.Title)

	if err := shared.OpenBrowser(track.YouTubeURL); err != nil {
		r.writePlain("Could not open a browser. Visit:\n%s\n", track.YouTubeURL)
		return nil
	}

	return r.writePlain("✓ Opened '%s' in your browser\n", track.Title)
}
