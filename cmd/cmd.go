// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (falls back to PUBDEX_PASSWORD)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (falls back to PUBDEX_PASSWORD)",
					},
					&cli.StringFlag{
						Name:  "first-name",
						Usage: "First name (optional)",
					},
					&cli.StringFlag{
						Name:  "last-name",
						Usage: "Last name (optional)",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in user's profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
			{
				Name:  "update",
				Usage: "Update the signed-in user's name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "first-name",
						Usage: "New first name",
					},
					&cli.StringFlag{
						Name:  "last-name",
						Usage: "New last name",
					},
				},
				Action: r.AuthUpdate,
			},
		},
	}
}

// pubsCommand handles publication browsing and management
func pubsCommand(r *Runner) *cli.Command {
	searchFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"s"},
			Usage:   "Filter by title, author or keyword",
		},
		&cli.StringFlag{
			Name:    "order",
			Aliases: []string{"o"},
			Usage:   "Sort order (date_desc, date_asc, title_asc, title_desc)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}

	return &cli.Command{
		Name:    "pubs",
		Aliases: []string{"publications"},
		Usage:   "Publication repository operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all publications in the repository",
				Flags:  searchFlags,
				Action: r.PubsList,
			},
			{
				Name:  "mine",
				Usage: "List your uploaded publications",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "order",
						Aliases: []string{"o"},
						Usage:   "Sort order (date_desc, date_asc, title_asc, title_desc)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PubsMine,
			},
			{
				Name:  "delete",
				Usage: "Delete one of your publications",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.PubsDelete,
			},
			{
				Name:  "download",
				Usage: "Download a publication's document",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"O"},
						Usage:   "Output file path",
					},
				},
				Action: r.PubsDownload,
			},
			{
				Name:  "export",
				Usage: "Export a publication list to CSV, Markdown or text",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"O"},
						Usage:   "Output file path (defaults to stdout)",
					},
					&cli.BoolFlag{
						Name:  "mine",
						Usage: "Export your publications instead of the full list",
					},
				}, searchFlags[:2]...),
				Action: r.PubsExport,
			},
		},
	}
}

// uploadCommand handles document submission
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a publication document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the document (PDF)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "bibtex",
				Aliases: []string{"b"},
				Usage:   "Path to a BibTeX file with the publication metadata",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Publication title (required without --bibtex)",
			},
			&cli.StringFlag{
				Name:  "authors",
				Usage: "Author names (required without --bibtex)",
			},
			&cli.StringFlag{
				Name:  "year",
				Usage: "Publication year (required without --bibtex)",
			},
			&cli.StringFlag{
				Name:  "journal",
				Usage: "Journal name (required without --bibtex)",
			},
			&cli.StringFlag{
				Name:  "doi",
				Usage: "Digital object identifier (optional)",
			},
			&cli.BoolFlag{
				Name:  "suggest",
				Usage: "Prefill missing title and DOI by scanning the PDF",
			},
		},
		Action: r.Upload,
	}
}

// cacheCommand manages locally stored list snapshots
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached publication list snapshots",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show stored snapshots",
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Delete all stored snapshots",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive publication browser",
		Action:  r.TUI,
	}
}
