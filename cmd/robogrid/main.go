// Command robogrid is the offline companion to the game server. It lists,
// validates and analyses level packs, runs scripts and explores levels
// without a server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/robogrid/game/level"
	"github.com/wricardo/robogrid/logging"
)

const version = "1.0.0"

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ColorDenied.Sprint(err.Error()))
		os.Exit(1)
	}
}

// newApp builds the command tree writing reports to out
func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "robogrid",
		Usage:   "work with robot grid level packs offline",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "no-color", Usage: "disable coloured output"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Init(cmd.Bool("debug"))
			logging.SetOutput(os.Stderr)
			if cmd.Bool("no-color") {
				color.Disable()
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "levels",
				Usage: "list the levels of a pack",
				Flags: []cli.Flag{levelsDirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					levels, err := level.NewManager(cmd.String("levels-dir"))
					if err != nil {
						return err
					}
					printLevels(out, levels.List())
					return nil
				},
			},
			{
				Name:      "validate",
				Usage:     "check every level file in a directory",
				ArgsUsage: "<dir>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						return errors.New("validate needs a level directory")
					}
					return validateDir(dir, out)
				},
			},
			{
				Name:      "analyze",
				Usage:     "report density, reachability, enemies and goals per level",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					levels, err := level.NewManager(cmd.Args().First())
					if err != nil {
						return err
					}
					analyzePack(out, levels.Pack(), levels.Resources())
					return nil
				},
			},
			{
				Name:  "play",
				Usage: "run a script offline and render the resulting board",
				Flags: []cli.Flag{
					levelsDirFlag(),
					&cli.IntFlag{Name: "level", Value: 1, Usage: "1-based level number"},
					&cli.StringFlag{Name: "script", Usage: "script file, - for stdin", Required: true},
					&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "random seed"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					src, err := readScript(cmd.String("script"))
					if err != nil {
						return err
					}
					levels, err := level.NewManager(cmd.String("levels-dir"))
					if err != nil {
						return err
					}
					game, run, err := playScript(levels.Pack(), levels.Resources(), cmd.Int("level"), src, cmd.Uint64("seed"))
					if err != nil {
						return err
					}
					printRun(out, game, run)
					return nil
				},
			},
			{
				Name:  "solve",
				Usage: "explore a level automatically and print the generated script",
				Flags: []cli.Flag{
					levelsDirFlag(),
					&cli.IntFlag{Name: "level", Value: 1, Usage: "1-based level number"},
					&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "random seed"},
					&cli.IntFlag{Name: "max-moves", Value: 500, Usage: "give up after this many moves"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					levels, err := level.NewManager(cmd.String("levels-dir"))
					if err != nil {
						return err
					}
					game, err := newGameAt(levels.Pack(), levels.Resources(), cmd.Int("level"), cmd.Uint64("seed"))
					if err != nil {
						return err
					}
					printExplore(out, game, NewExplorer(game, cmd.Int("max-moves")).Run())
					return nil
				},
			},
		},
	}
}

func levelsDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "levels-dir",
		Usage:   "directory of level YAML files (empty uses the embedded pack)",
		Sources: cli.EnvVars("LEVELS_DIR"),
	}
}

func readScript(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}
