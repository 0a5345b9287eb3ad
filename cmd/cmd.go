// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/library"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func listingFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.IntFlag{
			Name:    "page",
			Aliases: []string{"p"},
			Usage:   "Result page to load",
			Value:   1,
		},
		&cli.StringFlag{
			Name:  "genre",
			Usage: "Only movies of this genre (e.g. Action, Drama, Sci-Fi)",
		},
		&cli.StringFlag{
			Name:  "year",
			Usage: "Release year or decade (e.g. 2023, 1990s)",
		},
		&cli.StringFlag{
			Name:  "rating",
			Usage: "Minimum rating (6, 7, 8 or 9)",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort order for filtered results",
			Value: "popularity.desc",
		},
	}, jsonFlags()...)
}

// setupCommand handles setup operations for the database and config file.
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
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// moviesCommand handles catalog browsing.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a category, or discover with filters",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "popular, top-rated or upcoming",
						Value:   "popular",
					},
				}, listingFlags()...),
				Action: r.MoviesList,
			},
			{
				Name:      "search",
				Usage:     "Search movies by title",
				ArgsUsage: "<query>",
				Flags:     listingFlags(),
				Action:    r.MoviesSearch,
			},
			{
				Name:  "show",
				Usage: "Show full details for one movie",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the backdrop image in a browser",
					},
				}, jsonFlags()...),
				Action: r.MoviesShow,
			},
			{
				Name:   "genres",
				Usage:  "List catalog genres",
				Flags:  jsonFlags(),
				Action: r.MoviesGenres,
			},
			{
				Name:  "genre",
				Usage: "List movies of one genre",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "Result page to load",
						Value:   1,
					},
				}, jsonFlags()...),
				Action: r.MoviesByGenre,
			},
		},
	}
}

func collectionCommand(r *Runner, c library.Collection, aliases []string) *cli.Command {
	return &cli.Command{
		Name:    string(c),
		Aliases: aliases,
		Usage:   "Manage your " + c.Title(),
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add movies by id",
				ArgsUsage: "<id>...",
				Action:    r.CollectionAdd(c),
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove movies by id",
				ArgsUsage: "<id>...",
				Action:    r.CollectionRemove(c),
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved movies",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "ids",
						Usage: "Print ids only, without fetching details",
					},
				}, jsonFlags()...),
				Action: r.CollectionList(c),
			},
			{
				Name:  "export",
				Usage: "Export saved movies to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown, text or json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail requests (defaults to api.workers)",
					},
				},
				Action: r.CollectionExport(c),
			},
		},
	}
}

// watchlistCommand handles the watchlist collection.
func watchlistCommand(r *Runner) *cli.Command {
	return collectionCommand(r, library.Watchlist, []string{"wl"})
}

// favoritesCommand handles the favorites collection.
func favoritesCommand(r *Runner) *cli.Command {
	return collectionCommand(r, library.Favorites, []string{"fav"})
}

// authCommand handles the identity session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Account password",
						Sources: cli.EnvVars("REELX_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Account password",
						Sources: cli.EnvVars("REELX_PASSWORD"),
					},
					&cli.StringFlag{
						Name:  "confirm-password",
						Usage: "Repeat the password (defaults to --password)",
					},
					&cli.BoolFlag{
						Name:  "accept-terms",
						Usage: "Accept the terms of service",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "dashboard",
				Usage:  "Show the signed-in dashboard",
				Flags:  jsonFlags(),
				Action: r.Dashboard,
			},
		},
	}
}

// activityCommand shows the local activity log.
func activityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Show recent actions",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum entries to show",
				Value:   20,
			},
			&cli.DurationFlag{
				Name:  "prune",
				Usage: "Delete entries older than this duration before listing",
			},
		}, jsonFlags()...),
		Action: r.Activity,
	}
}

// serveCommand runs the HTTP surface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the listing, session and collection API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing movies",
		Action:  r.TUI,
	}
}
