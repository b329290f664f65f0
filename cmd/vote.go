package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// VoteUp upvotes a soundtrack, switching or removing an earlier vote.
func (r *Runner) VoteUp(ctx context.Context, cmd *cli.Command) error {
	return r.vote(cmd.StringArg("id"), 1)
}

// VoteDown downvotes a soundtrack, switching or removing an earlier vote.
func (r *Runner) VoteDown(ctx context.Context, cmd *cli.Command) error {
	return r.vote(cmd.StringArg("id"), -1)
}

func (r *Runner) vote(soundtrackID string, direction int) error {
	if err := r.services(); err != nil {
		return err
	}

	if soundtrackID == "" {
		return fmt.Errorf("%w: a soundtrack ID is required", shared.ErrMissingArgument)
	}

	user := r.auth.Current()
	if user == nil {
		return shared.ErrNotAuthenticated
	}

	if err := r.library.Vote(soundtrackID, user.ID(), direction); err != nil {
		return fmt.Errorf("vote failed: %w", err)
	}

	soundtrack, err := r.library.Soundtrack(soundtrackID)
	if err != nil {
		return err
	}

	return r.writePlain("✓ '%s' now at %+d (%d up, %d down)\n",
		soundtrack.Title(), soundtrack.Score(), soundtrack.Upvotes(), soundtrack.Downvotes())
}
