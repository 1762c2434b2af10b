package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultSSHHost         = "::"
	DefaultSSHPort         = 2222
	DefaultHostKeyPath     = "/app/keys/host_key"
	DefaultWebHost         = "0.0.0.0"
	DefaultWebPort         = 8080
	DefaultDifficulty      = "easy"
	DefaultTimeLimit       = 60
	DefaultBallsLimit      = 20
	DefaultReference       = "tip"
	DefaultDetectorTimeout = 2 * time.Second
	DefaultLogLevel        = "info"
)

// Config is the on-disk configuration. Every section is optional; missing
// fields keep the values from Default.
type Config struct {
	SSH      SSHConfig      `yaml:"ssh"`
	Web      WebConfig      `yaml:"web"`
	Game     GameConfig     `yaml:"game"`
	Detector DetectorConfig `yaml:"detector"`
	Camera   CameraConfig   `yaml:"camera"`
	Log      LogConfig      `yaml:"log"`
}

// SSHConfig configures the SSH game server.
type SSHConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key"`
}

// WebConfig configures the landing page and assessment API.
type WebConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	SSHDisplayHost string `yaml:"ssh_display_host"`
}

// GameConfig holds the session settings offered by default on the
// settings screen. They are validated again when a session starts.
type GameConfig struct {
	Difficulty string `yaml:"difficulty"`
	TimeLimit  int    `yaml:"time_limit"`
	BallsLimit int    `yaml:"balls_limit"`
	Reference  string `yaml:"reference"` // "tip" or "palm"
}

// DetectorConfig points at a remote hand-pose service. An empty endpoint
// selects the keyboard pointer.
type DetectorConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CameraConfig points at an HTTP snapshot camera.
type CameraConfig struct {
	SnapshotURL string `yaml:"snapshot_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		SSH: SSHConfig{
			Host:        DefaultSSHHost,
			Port:        DefaultSSHPort,
			HostKeyPath: DefaultHostKeyPath,
		},
		Web: WebConfig{
			Host:           DefaultWebHost,
			Port:           DefaultWebPort,
			SSHDisplayHost: "your-server.com",
		},
		Game: GameConfig{
			Difficulty: DefaultDifficulty,
			TimeLimit:  DefaultTimeLimit,
			BallsLimit: DefaultBallsLimit,
			Reference:  DefaultReference,
		},
		Detector: DetectorConfig{
			Timeout: DefaultDetectorTimeout,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Load reads and parses the YAML file at path over Default.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be repaired later. Game limits
// are deliberately not range-checked here: out-of-range limits are replaced
// by defaults with a user-visible notice when a session starts.
func Validate(cfg *Config) error {
	if cfg.SSH.Port < 0 || cfg.SSH.Port > 65535 {
		return ValidationError{Field: "ssh.port", Message: "must be between 0 and 65535"}
	}
	if cfg.Web.Port < 0 || cfg.Web.Port > 65535 {
		return ValidationError{Field: "web.port", Message: "must be between 0 and 65535"}
	}
	switch cfg.Game.Difficulty {
	case "easy", "normal", "hard":
	default:
		return ValidationError{Field: "game.difficulty", Message: "must be one of easy, normal, hard"}
	}
	switch cfg.Game.Reference {
	case "tip", "palm":
	default:
		return ValidationError{Field: "game.reference", Message: "must be tip or palm"}
	}
	if cfg.Detector.Timeout <= 0 {
		return ValidationError{Field: "detector.timeout", Message: "must be positive"}
	}
	// The virtual camera only yields blank frames; a remote detector fed
	// from it would never see a hand.
	if cfg.Detector.Endpoint != "" && cfg.Camera.SnapshotURL == "" {
		return ValidationError{Field: "camera.snapshot_url", Message: "required with detector.endpoint"}
	}
	return nil
}
