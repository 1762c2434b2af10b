package client

import (
	"strconv"
	"time"

	"github.com/tomz197/ballcatch/internal/input"
	"github.com/tomz197/ballcatch/internal/loop"
	"github.com/tomz197/ballcatch/internal/loop/config"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateSettings    GameState = iota // Safety warning, difficulty and limits
	GameStatePlaying                      // Session running
	GameStatePaused                       // Session paused
	GameStateCameraAlert                  // Camera could not be opened
	GameStateResult                       // Session ended, show summary
	GameStateShutdown                     // Server is shutting down
)

// settingsField is the numeric input with keyboard focus.
type settingsField int

const (
	fieldTimeLimit settingsField = iota
	fieldBallsLimit
	numSettingsFields
)

func (f settingsField) configField() config.Field {
	if f == fieldBallsLimit {
		return config.FieldBallsLimit
	}
	return config.FieldTimeLimit
}

// ClientState holds per-player state: the current screen, the settings
// being edited and the last result.
type ClientState struct {
	Input         input.Input
	GameState     GameState // This client's screen
	prevGameState GameState
	Running       bool // Client loop running

	Settings config.Settings
	fields   [numSettingsFields]string // Raw numeric input per field
	focus    settingsField

	Notices     []config.Notice // Replaced settings from the last start
	noticeTimer float64         // Seconds left to show Notices in the HUD
	CameraErr   error
	Result      loop.Result

	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool
}

// NewClientState creates a client state on the settings screen with the
// given defaults filled in.
func NewClientState(defaults config.Settings) *ClientState {
	s := &ClientState{
		GameState: GameStateSettings,
		Running:   true,
		Settings:  defaults,
	}
	s.fields[fieldTimeLimit] = strconv.Itoa(defaults.TimeLimit)
	s.fields[fieldBallsLimit] = strconv.Itoa(defaults.BallsLimit)
	return s
}

// typeDigits appends digits to the focused field, up to the input limit.
func (s *ClientState) typeDigits(digits []byte) {
	f := &s.fields[s.focus]
	for _, d := range digits {
		if len(*f) >= config.MaxNumericInputDigits {
			return
		}
		*f += string(d)
	}
}

// backspace removes the last digit of the focused field.
func (s *ClientState) backspace() {
	f := &s.fields[s.focus]
	if len(*f) > 0 {
		*f = (*f)[:len(*f)-1]
	}
}

// nextField moves focus to the next numeric field.
func (s *ClientState) nextField() {
	s.focus = (s.focus + 1) % numSettingsFields
}

// selectDifficulty applies a difficulty key ('e', 'n' or 'h').
func (s *ClientState) selectDifficulty(key byte) {
	switch key {
	case 'e':
		s.Settings.Difficulty = config.Easy
	case 'n':
		s.Settings.Difficulty = config.Normal
	case 'h':
		s.Settings.Difficulty = config.Hard
	}
}

// parseSettings reads the numeric fields against b. Invalid entries are
// replaced by their defaults, written back into the field and reported.
func (s *ClientState) parseSettings(b config.Bounds) (config.Settings, []config.Notice) {
	settings := s.Settings
	var notices []config.Notice

	for f := settingsField(0); f < numSettingsFields; f++ {
		v, notice := b.ParseLimit(f.configField(), s.fields[f])
		if notice != nil {
			notices = append(notices, *notice)
			s.fields[f] = strconv.Itoa(v)
		}
		if f == fieldTimeLimit {
			settings.TimeLimit = v
		} else {
			settings.BallsLimit = v
		}
	}

	s.Settings = settings
	return settings, notices
}
