package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vincentsto199-blip/Comic/internal/catalog"
	"github.com/vincentsto199-blip/Comic/internal/library"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// Search queries Comic Vine for issues and records the query in the
// recent-search list. With --recent, prints stored queries instead.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	if cmd.Bool("recent") {
		queries, err := r.searches.Recent(0)
		if err != nil {
			return fmt.Errorf("failed to load recent searches: %w", err)
		}
		if len(queries) == 0 {
			return r.writePlain("No recent searches.\n")
		}
		for _, query := range queries {
			r.writePlain("%s\n", query)
		}
		return nil
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	if err := r.searches.Record(query); err != nil {
		r.logger.Warn("failed to record search", "error", err)
	}

	var issues []catalog.Issue
	var err error
	if cmd.Bool("suggest") {
		issues, err = r.catalog.Suggest(ctx, query)
	} else {
		issues, err = r.catalog.Search(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(issues, cmd.Bool("pretty"))
	}

	if len(issues) == 0 {
		return r.writePlain("No issues matched '%s'.\n", query)
	}

	r.writePlainHeader(fmt.Sprintf("Results for '%s'", query))
	for _, issue := range issues {
		line := fmt.Sprintf("%-10d %s", issue.ID, library.IssueTitle(issue))
		if issue.CoverDate != "" {
			line = fmt.Sprintf("%s (%s)", line, issue.CoverDate)
		}
		r.writePlain("%s\n", line)
	}
	r.writePlainln("Use 'comictracks soundtrack add --issue <id>' to start a soundtrack.")
	return nil
}
