package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/ballcatch/internal/capture"
	appconfig "github.com/tomz197/ballcatch/internal/config"
	"github.com/tomz197/ballcatch/internal/detect"
	"github.com/tomz197/ballcatch/internal/loop/config"
)

func TestOptionsFromConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Default()
	opts, err := OptionsFromConfig(&cfg)
	require.NoError(t, err)

	assert.Nil(t, opts.Detector, "keyboard pointer is created per client")
	assert.Nil(t, opts.Camera)
	assert.Equal(t, detect.ReferenceTip, opts.Reference)
	require.NotNil(t, opts.Settings)
	assert.Equal(t, config.DefaultSettings(), *opts.Settings)
}

func TestOptionsFromConfig_Remote(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Default()
	cfg.Game.Difficulty = "hard"
	cfg.Game.Reference = "palm"
	cfg.Game.BallsLimit = 500
	cfg.Detector.Endpoint = "http://pose.local/estimate"
	cfg.Detector.Timeout = time.Second
	cfg.Camera.SnapshotURL = "http://cam.local/snapshot.jpg"

	opts, err := OptionsFromConfig(&cfg)
	require.NoError(t, err)

	assert.IsType(t, &detect.Remote{}, opts.Detector)
	assert.IsType(t, &capture.Snapshot{}, opts.Camera)
	assert.Equal(t, detect.ReferencePalm, opts.Reference)
	assert.Equal(t, config.Hard, opts.Settings.Difficulty)
	assert.Equal(t, 500, opts.Settings.BallsLimit, "out-of-range limits are replaced when a session starts")
}

func TestOptionsFromConfig_BadDifficulty(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Default()
	cfg.Game.Difficulty = "brutal"
	_, err := OptionsFromConfig(&cfg)
	assert.Error(t, err)
}

func TestOptionsFromConfig_DetectorNeedsCamera(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Default()
	cfg.Detector.Endpoint = "http://pose.local/estimate"

	opts, err := OptionsFromConfig(&cfg)
	var verr appconfig.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "camera.snapshot_url", verr.Field)
	assert.Nil(t, opts.Detector, "no remote detector on blank frames")
}
