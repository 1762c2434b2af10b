// Package config centralizes all tunable game parameters.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Playfield - the logical coordinate space shared by balls, camera frames
// and the hit test. Actual rendering scales to fit terminal size.
const (
	PlayfieldWidth  = 640
	PlayfieldHeight = 480
)

// Balls
const (
	BallRadius    = 20.0
	BaseSpeed     = 2.0 // Pixels per tick before the random part
	SpeedJitter   = 3.0 // Random part is drawn from [0, SpeedJitter)
	SpawnInterval = time.Second
)

// Hit test
const (
	HitTolerance = 10.0 // Added to the ball radius
)

// Scoring
const (
	ScoreBenign  = 1
	ScorePenalty = -5
)

// End reasons
const (
	ReasonLimitReached    = "limit reached"
	ReasonManuallyStopped = "manually stopped"
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
	ShutdownPollInterval   = 200 * time.Millisecond
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Lobby refresh rate (player count and names shown in the HUD)
const (
	LobbyTickRate = 10
	LobbyTickTime = time.Second / LobbyTickRate
)

// Players
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxNumericInputDigits = 3

	// Max render resolution; larger terminals get a centred, bordered
	// area. 160x60 cells is 160x120 sub-pixels, the playfield's 4:3.
	MaxTermWidth  = 160
	MaxTermHeight = 60

	PointerSpeed         = 400.0 // Playfield pixels per second for keyboard play
	NoticeDisplaySeconds = 4.0   // How long replaced-setting notices stay in the HUD
	CameraOpenTimeout    = 5 * time.Second
)

// Difficulty selects ball speed and how often penalty balls appear.
type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
)

// Difficulties lists every level in display order.
var Difficulties = []Difficulty{Easy, Normal, Hard}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty converts a level name (case-insensitive) to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "normal":
		return Normal, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("unknown difficulty %q", s)
	}
}

// DifficultyProfile is what a difficulty level changes.
type DifficultyProfile struct {
	SpeedMultiplier    float64
	PenaltyProbability float64
}

// Profile returns the speed multiplier and penalty probability of d.
// Unknown values behave like Easy.
func Profile(d Difficulty) DifficultyProfile {
	switch d {
	case Normal:
		return DifficultyProfile{SpeedMultiplier: 1.5, PenaltyProbability: 0.4}
	case Hard:
		return DifficultyProfile{SpeedMultiplier: 2.0, PenaltyProbability: 0.6}
	default:
		return DifficultyProfile{SpeedMultiplier: 1.0, PenaltyProbability: 0.2}
	}
}

// Range is an inclusive integer interval with a fallback value.
type Range struct {
	Min, Max, Default int
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds are the accepted ranges for the session limits.
type Bounds struct {
	TimeLimit  Range // Seconds
	BallsLimit Range // Hits
}

// DefaultBounds are the ranges offered to players.
func DefaultBounds() Bounds {
	return Bounds{
		TimeLimit:  Range{Min: 10, Max: 300, Default: 60},
		BallsLimit: Range{Min: 5, Max: 100, Default: 20},
	}
}

// Settings are the per-session choices made on the settings screen.
type Settings struct {
	Difficulty Difficulty
	TimeLimit  int // Seconds
	BallsLimit int
}

// DefaultSettings returns easy difficulty with default limits.
func DefaultSettings() Settings {
	b := DefaultBounds()
	return Settings{
		Difficulty: Easy,
		TimeLimit:  b.TimeLimit.Default,
		BallsLimit: b.BallsLimit.Default,
	}
}

// TimeLimitDuration returns the time limit as a duration.
func (s Settings) TimeLimitDuration() time.Duration {
	return time.Duration(s.TimeLimit) * time.Second
}

// Field names a numeric setting.
type Field string

const (
	FieldTimeLimit  Field = "time limit"
	FieldBallsLimit Field = "balls limit"
)

// Notice tells the player that an input was replaced by its default.
type Notice struct {
	Field   Field
	Default int
}

func (n Notice) String() string {
	return "Invalid input! Setting to default value: " + strconv.Itoa(n.Default)
}

// Validate replaces out-of-range limits with their defaults. One notice is
// returned per replaced value.
func (b Bounds) Validate(s Settings) (Settings, []Notice) {
	var notices []Notice
	if !b.TimeLimit.Contains(s.TimeLimit) {
		s.TimeLimit = b.TimeLimit.Default
		notices = append(notices, Notice{Field: FieldTimeLimit, Default: s.TimeLimit})
	}
	if !b.BallsLimit.Contains(s.BallsLimit) {
		s.BallsLimit = b.BallsLimit.Default
		notices = append(notices, Notice{Field: FieldBallsLimit, Default: s.BallsLimit})
	}
	return s, notices
}

// ParseLimit parses raw numeric input for field. Non-numeric input yields
// the default and a notice, like an out-of-range number does.
func (b Bounds) ParseLimit(field Field, raw string) (int, *Notice) {
	r := b.TimeLimit
	if field == FieldBallsLimit {
		r = b.BallsLimit
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !r.Contains(v) {
		return r.Default, &Notice{Field: field, Default: r.Default}
	}
	return v, nil
}
