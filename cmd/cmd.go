// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag(path string) cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   path,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config if missing, initialize database and run migrations",
				Flags:  []cli.Flag{configFlag(r.configPath)},
				Action: r.SetupDatabase,
			},
		},
	}
}

// catalogCommand handles catalog browsing and the local cache
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Browse and cache the track catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog tracks",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "status",
						Usage: "Track status to include (repeatable, defaults to catalog.statuses)",
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "Read from the local cache instead of the catalog",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "sync",
				Usage: "Fetch the catalog and cache it locally",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "status",
						Usage: "Track status to sync (repeatable, defaults to catalog.statuses)",
					},
				},
				Action: r.CatalogSync,
			},
		},
	}
}

// likesCommand handles the liked-song set
func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "likes",
		Usage: "Manage liked songs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List liked track ids",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LikesList,
			},
			{
				Name:  "toggle",
				Usage: "Like or unlike a track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LikesToggle,
			},
			{
				Name:  "export",
				Usage: "Export liked tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (directory for md)",
					},
				},
				Action: r.LikesExport,
			},
		},
	}
}

// pricingCommand prints the regional offer
func pricingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pricing",
		Usage: "Subscription pricing",
		Commands: []*cli.Command{
			{
				Name:  "quote",
				Usage: "Quote the offer for a locale and timezone (detected when omitted)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "locale",
						Usage: "Locale such as en-GB or de_DE.UTF-8",
					},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "IANA timezone such as Europe/Berlin",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PricingQuote,
			},
		},
	}
}

// waveformCommand renders waveforms outside the player
func waveformCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "waveform",
		Usage: "Render the progress waveform",
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Print a waveform, or write a PNG with --output",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "width",
						Usage: "Width in cells (pixels for PNG)",
						Value: 60,
					},
					&cli.IntFlag{
						Name:  "height",
						Usage: "Height in rows (pixels for PNG)",
						Value: 3,
					},
					&cli.FloatFlag{
						Name:  "progress",
						Usage: "Playback progress percentage",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Sample seed",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "playing",
						Usage: "Draw the playing marker",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write a PNG to this path",
					},
				},
				Action: r.WaveformRender,
			},
		},
	}
}

// serveCommand runs the payments API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve pricing, checkout, webhooks and waveform images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

// checkoutCommand runs an interactive checkout
func checkoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "Purchase the subscription",
		Commands: []*cli.Command{
			{
				Name:  "paypal",
				Usage: "Create a PayPal order, approve it in the browser and capture it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "locale",
						Usage: "Locale used to price the order",
					},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "Timezone used to price the order",
					},
				},
				Action: r.CheckoutPayPal,
			},
		},
	}
}

// playCommand launches the terminal player
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "restart",
				Usage: "Resume policy: continue or restart (defaults to player.restart_on_play)",
			},
			&cli.StringFlag{
				Name:  "tick",
				Usage: "Tick mode: duration or fixed (defaults to player.tick_mode)",
			},
		},
		Action: r.Play,
	}
}
