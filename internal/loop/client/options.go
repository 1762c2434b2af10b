package client

import (
	"github.com/tomz197/ballcatch/internal/capture"
	appconfig "github.com/tomz197/ballcatch/internal/config"
	"github.com/tomz197/ballcatch/internal/detect"
	"github.com/tomz197/ballcatch/internal/loop/config"
)

// OptionsFromConfig builds client options from a loaded config. Without a
// detector endpoint the client plays with the keyboard pointer on the
// virtual camera. A detector endpoint needs a snapshot camera. Callers fill
// in the per connection fields (username, terminal size, logger).
func OptionsFromConfig(cfg *appconfig.Config) (ClientOptions, error) {
	if err := appconfig.Validate(cfg); err != nil {
		return ClientOptions{}, err
	}
	difficulty, err := config.ParseDifficulty(cfg.Game.Difficulty)
	if err != nil {
		return ClientOptions{}, err
	}
	reference, err := detect.ParseReference(cfg.Game.Reference)
	if err != nil {
		return ClientOptions{}, err
	}

	opts := ClientOptions{
		Reference: reference,
		Settings: &config.Settings{
			Difficulty: difficulty,
			TimeLimit:  cfg.Game.TimeLimit,
			BallsLimit: cfg.Game.BallsLimit,
		},
	}
	if cfg.Detector.Endpoint != "" {
		opts.Detector = detect.NewRemote(cfg.Detector.Endpoint, cfg.Detector.Timeout)
	}
	if cfg.Camera.SnapshotURL != "" {
		opts.Camera = capture.NewSnapshot(cfg.Camera.SnapshotURL, cfg.Detector.Timeout)
	}
	return opts, nil
}
