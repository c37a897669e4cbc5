package main

import (
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.json",
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Report what would change without mutating anything",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the run summary as JSON",
	}
}

func curationFlags() []cli.Flag {
	return []cli.Flag{configFlag(), dryRunFlag(), verboseFlag(), jsonFlag()}
}

// filterCommand runs the genre-filter pipeline.
func filterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "filter",
		Usage:  "Filter source playlists by genre into the destination playlist",
		Flags:  curationFlags(),
		Action: r.FilterRun,
	}
}

// rotateCommand rotates overflow from the master playlist into the archive.
func rotateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "rotate",
		Usage:  "Move the oldest tracks from the master playlist to the archive",
		Flags:  curationFlags(),
		Action: r.RotateRun,
	}
}

// likeCommand favorites every track in the prefix-named playlists.
func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "like",
		Usage:  "Favorite all tracks in playlists matching the configured name prefix",
		Flags:  curationFlags(),
		Action: r.LikeRun,
	}
}

// allCommand runs filter, rotate and like in sequence.
func allCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "all",
		Usage:  "Run filter, rotate and like in sequence",
		Flags:  curationFlags(),
		Action: r.AllRun,
	}
}

// loginCommand performs the device-authorization flow and stores the session.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Authenticate with Tidal via the device authorization flow",
		Flags:  []cli.Flag{configFlag(), verboseFlag()},
		Action: r.Login,
	}
}

// historyCommand lists past runs from the history database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past runs",
		Flags: []cli.Flag{
			configFlag(),
			jsonFlag(),
			&cli.StringFlag{
				Name:  "command",
				Usage: "Only show runs of this command (filter, rotate, like)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
		},
		Action: r.History,
	}
}

// setupCommand creates the config file and initializes the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a starter config file and initialize the run-history database",
		Flags:  []cli.Flag{configFlag(), verboseFlag()},
		Action: r.Setup,
	}
}
