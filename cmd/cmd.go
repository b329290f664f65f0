// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the new configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// searchCommand handles comic issue search operations
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search Comic Vine for issues",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "suggest",
				Usage: "Return a short suggestion list instead of full results",
			},
			&cli.BoolFlag{
				Name:  "recent",
				Usage: "Show recent searches instead of querying",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// authCommand handles account operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the local account session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Create an account and start a session",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name (defaults to email)",
					},
				},
				Action: r.AuthSignUp,
			},
			{
				Name:  "signin",
				Usage: "Sign in to an existing account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthSignIn,
			},
			{
				Name:   "signout",
				Usage:  "End the active session",
				Action: r.AuthSignOut,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in account",
				Action: r.AuthWhoAmI,
			},
		},
	}
}

// soundtrackCommand handles soundtrack authoring and export
func soundtrackCommand(r *Runner) *cli.Command {
	trackFlag := &cli.StringSliceFlag{
		Name:  "track",
		Usage: "Track as 'Title|YouTube URL' or 'Title|YouTube URL|start-end' (repeatable)",
	}

	return &cli.Command{
		Name:    "soundtrack",
		Aliases: []string{"st"},
		Usage:   "Create, edit, list, and export soundtracks",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a soundtrack for an issue",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "issue",
						Usage:    "Comic Vine issue ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Soundtrack title",
						Required: true,
					},
					trackFlag,
				},
				Action: r.SoundtrackAdd,
			},
			{
				Name:  "edit",
				Usage: "Edit a soundtrack you own",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Soundtrack ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "New soundtrack title (keeps current when omitted)",
					},
					trackFlag,
				},
				Action: r.SoundtrackEdit,
			},
			{
				Name:  "list",
				Usage: "List soundtracks for an issue, highest score first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "issue-id",
						Usage:    "Issue ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SoundtrackList,
			},
			{
				Name:  "export",
				Usage: "Export a soundtrack to csv, markdown, or text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Soundtrack ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (defaults to the soundtrack ID)",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the issue cover for markdown exports",
					},
				},
				Action: r.SoundtrackExport,
			},
		},
	}
}

// voteCommand handles soundtrack voting
func voteCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{
		&cli.StringArg{Name: "id"},
	}

	return &cli.Command{
		Name:  "vote",
		Usage: "Vote on soundtracks (voting again removes, opposite switches)",
		Commands: []*cli.Command{
			{
				Name:      "up",
				Usage:     "Upvote a soundtrack",
				Arguments: idArg,
				Action:    r.VoteUp,
			},
			{
				Name:      "down",
				Usage:     "Downvote a soundtrack",
				Arguments: idArg,
				Action:    r.VoteDown,
			},
		},
	}
}

// playCommand returns the top-level TUI command for browsing and playback.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive browser and player",
		Action:  r.Play,
	}
}

// openCommand opens a soundtrack's track in the default browser.
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open a track externally (for embed-blocked videos)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "track",
				Usage: "1-based track number within the soundtrack",
				Value: 1,
			},
		},
		Action: r.Open,
	}
}
