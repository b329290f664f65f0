package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vincentsto199-blip/Comic/internal/formatter"
	"github.com/vincentsto199-blip/Comic/internal/library"
	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// SoundtrackAdd creates a soundtrack for a Comic Vine issue, resolving the
// issue into the local library first.
func (r *Runner) SoundtrackAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	user := r.auth.Current()
	if user == nil {
		return shared.ErrNotAuthenticated
	}

	tracks, err := parseTrackInputs(cmd.StringSlice("track"))
	if err != nil {
		return err
	}

	comicVineID := int(cmd.Int("issue"))
	catalogIssue, err := r.catalog.Get(ctx, comicVineID)
	if err != nil {
		return fmt.Errorf("failed to look up issue %d: %w", comicVineID, err)
	}

	issue, err := r.library.ResolveIssue(*catalogIssue)
	if err != nil {
		return fmt.Errorf("failed to resolve issue: %w", err)
	}

	soundtrack, err := r.library.SaveSoundtrack(library.SoundtrackInput{
		IssueID:   issue.ID(),
		Title:     cmd.String("title"),
		OwnerID:   user.ID(),
		OwnerName: user.DisplayName(),
		Tracks:    tracks,
	})
	if err != nil {
		return fmt.Errorf("failed to create soundtrack: %w", err)
	}

	r.logger.Info("soundtrack created", "id", soundtrack.ID(), "issue", issue.Title())
	r.writePlain("✓ Created '%s' for %s\n", soundtrack.Title(), issue.Title())
	r.writePlain("Soundtrack ID: %s\n", soundtrack.ID())
	return nil
}

// SoundtrackEdit replaces a soundtrack's title and track list. Fields left
// unset keep their current values.
func (r *Runner) SoundtrackEdit(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	user := r.auth.Current()
	if user == nil {
		return shared.ErrNotAuthenticated
	}

	existing, err := r.library.Soundtrack(cmd.String("id"))
	if err != nil {
		return err
	}

	title := cmd.String("title")
	if title == "" {
		title = existing.Title()
	}

	tracks, err := parseTrackInputs(cmd.StringSlice("track"))
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		tracks = trackInputsFromModel(existing.Tracks())
	}

	soundtrack, err := r.library.SaveSoundtrack(library.SoundtrackInput{
		ID:        existing.ID(),
		IssueID:   existing.IssueID(),
		Title:     title,
		OwnerID:   user.ID(),
		OwnerName: user.DisplayName(),
		Tracks:    tracks,
	})
	if err != nil {
		return fmt.Errorf("failed to update soundtrack: %w", err)
	}

	r.writePlain("✓ Updated '%s' (%d tracks)\n", soundtrack.Title(), len(soundtrack.Tracks()))
	return nil
}

// SoundtrackList prints an issue's soundtracks ordered by score.
func (r *Runner) SoundtrackList(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	viewerID := ""
	if user := r.auth.Current(); user != nil {
		viewerID = user.ID()
	}

	issueID := cmd.String("issue-id")
	soundtracks, err := r.library.ListSoundtracks(issueID, viewerID)
	if err != nil {
		return fmt.Errorf("failed to list soundtracks: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, len(soundtracks))
		for i, st := range soundtracks {
			rows[i] = map[string]any{
				"id":          st.ID(),
				"title":       st.Title(),
				"owner":       st.OwnerName(),
				"score":       st.Score(),
				"upvotes":     st.Upvotes(),
				"downvotes":   st.Downvotes(),
				"viewer_vote": st.ViewerVote(),
				"tracks":      len(st.Tracks()),
			}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(soundtracks) == 0 {
		return r.writePlain("No soundtracks yet for issue %s.\n", issueID)
	}

	issue, err := r.library.Issue(issueID)
	if err != nil {
		return err
	}

	r.writePlainHeader(issue.Title())
	for _, st := range soundtracks {
		marker := " "
		switch st.ViewerVote() {
		case 1:
			marker = "▲"
		case -1:
			marker = "▼"
		}
		r.writePlain("%s [%+d] %s - %d tracks by %s (%s)\n",
			marker, st.Score(), st.Title(), len(st.Tracks()), st.OwnerName(), st.ID())
	}
	return nil
}

// SoundtrackExport writes a soundtrack to the requested format.
func (r *Runner) SoundtrackExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	soundtrack, err := r.library.Soundtrack(cmd.String("id"))
	if err != nil {
		return err
	}

	issueTitle := ""
	coverURL := ""
	if issue, err := r.library.Issue(soundtrack.IssueID()); err == nil {
		issueTitle = issue.Title()
		coverURL = issue.CoverURL()
	}

	output := cmd.String("output")
	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(soundtrack, output)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("✓ Exported to %s and %s\n", result.TracksFile, result.MetadataFile)

	case "markdown", "md":
		imageURL := ""
		if cmd.Bool("cover") {
			imageURL = coverURL
		}
		result, err := formatter.WriteMarkdownExport(soundtrack, issueTitle, output, imageURL)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("✓ Exported to %s/\n", result.Directory)

	case "text", "txt":
		path, err := formatter.WriteTextExport(soundtrack, output)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("✓ Exported to %s\n", path)

	default:
		return fmt.Errorf("%w: unknown format %q (use csv, markdown, or text)", shared.ErrInvalidArgument, format)
	}

	return nil
}

// parseTrackInputs parses repeated --track flags of the form
// 'Title|URL' or 'Title|URL|start-end'.
func parseTrackInputs(values []string) ([]library.TrackInput, error) {
	tracks := make([]library.TrackInput, 0, len(values))
	for _, value := range values {
		parts := strings.Split(value, "|")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%w: track %q must be 'Title|URL' or 'Title|URL|start-end'", shared.ErrInvalidArgument, value)
		}

		track := library.TrackInput{
			Title:      strings.TrimSpace(parts[0]),
			YouTubeURL: strings.TrimSpace(parts[1]),
		}

		if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
			start, end, err := parsePageRange(parts[2])
			if err != nil {
				return nil, fmt.Errorf("%w: track %q: %v", shared.ErrInvalidArgument, value, err)
			}
			track.PageStart = &start
			track.PageEnd = &end
		}

		tracks = append(tracks, track)
	}
	return tracks, nil
}

// parsePageRange parses 'start-end' into its bounds.
func parsePageRange(value string) (int, int, error) {
	bounds := strings.SplitN(strings.TrimSpace(value), "-", 2)
	if len(bounds) != 2 {
		return 0, 0, fmt.Errorf("page range must be 'start-end'")
	}

	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start page %q", bounds[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end page %q", bounds[1])
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("page range %d-%d is out of order", start, end)
	}

	return start, end, nil
}

// trackInputsFromModel converts stored tracks back to authoring inputs.
func trackInputsFromModel(tracks []models.Track) []library.TrackInput {
	inputs := make([]library.TrackInput, len(tracks))
	for i, track := range tracks {
		inputs[i] = library.TrackInput{
			Title:      track.Title,
			YouTubeURL: track.YouTubeURL,
			PageStart:  track.PageStart,
			PageEnd:    track.PageEnd,
		}
	}
	return inputs
}
