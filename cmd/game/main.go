// Command ballcatch runs the game in the local terminal.
//
// Usage:
//
//	ballcatch [flags]
//
// Without --detector-url the hand is a keyboard pointer (arrows or WASD).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomz197/ballcatch/internal/config"
	"github.com/tomz197/ballcatch/internal/logging"
	"github.com/tomz197/ballcatch/internal/loop/client"
	"github.com/tomz197/ballcatch/internal/loop/server"
)

// flags holds the command line values. They override the config file.
type flags struct {
	configPath  string
	difficulty  string
	timeLimit   int
	ballsLimit  int
	reference   string
	detectorURL string
	cameraURL   string
	logFile     string
	logLevel    string
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ballcatch",
		Short: "Catch falling balls with your hand, in the terminal",
		Long: `Balls fall from the top of the playfield. Touch the green ones with
your hand to score, avoid the red ones. A session ends when the time or
hit limit is reached, or when you stop it.

Hands come from a pose-estimation service (--detector-url) fed by an HTTP
snapshot camera (--camera-url). Without a detector the hand follows the
arrow keys or WASD.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg, f.logFile)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVarP(&f.difficulty, "difficulty", "d", config.DefaultDifficulty, "easy, normal or hard")
	fl.IntVar(&f.timeLimit, "time-limit", config.DefaultTimeLimit, "seconds of play after the first hit (10-300)")
	fl.IntVar(&f.ballsLimit, "balls-limit", config.DefaultBallsLimit, "hits that end the session (5-100)")
	fl.StringVar(&f.reference, "reference", config.DefaultReference, "catch point: tip or palm")
	fl.StringVar(&f.detectorURL, "detector-url", "", "hand pose estimation endpoint")
	fl.StringVar(&f.cameraURL, "camera-url", "", "HTTP snapshot camera URL")
	fl.StringVar(&f.logFile, "log-file", "", "write logs to this file (stdout is the game)")
	fl.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")

	return cmd
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("difficulty") {
		cfg.Game.Difficulty = f.difficulty
	}
	if fl.Changed("time-limit") {
		cfg.Game.TimeLimit = f.timeLimit
	}
	if fl.Changed("balls-limit") {
		cfg.Game.BallsLimit = f.ballsLimit
	}
	if fl.Changed("reference") {
		cfg.Game.Reference = f.reference
	}
	if fl.Changed("detector-url") {
		cfg.Detector.Endpoint = f.detectorURL
	}
	if fl.Changed("camera-url") {
		cfg.Camera.SnapshotURL = f.cameraURL
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger logs to path, or nowhere when path is empty. The returned
// func closes the log file.
func openLogger(path, level string) (*log.Logger, func() error, error) {
	if path == "" {
		return logging.Discard(), func() error { return nil }, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(level, file), file.Close, nil
}

func run(cfg *config.Config, logFile string) error {
	logger, closeLog, err := openLogger(logFile, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	opts, err := client.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Username = config.GetEnv("USER", "player")
	opts.Logger = logger
	opts.ColorProfile = termenv.EnvColorProfile()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	// A local lobby of one keeps the client identical to the SSH one.
	lobby := server.NewServer(server.Options{Logger: logger})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lobby.Run(ctx)

	c := client.NewClient(lobby, bufio.NewReader(os.Stdin), os.Stdout, opts)
	return c.Run()
}
