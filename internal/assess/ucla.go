// Package assess scores the wellbeing questionnaires offered next to the
// game: the UCLA loneliness scale and a short Big Five personality quiz.
package assess

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncomplete is returned when a questionnaire has unanswered items.
	ErrIncomplete = errors.New("Please complete all the questions")
	// ErrInvalidAnswer is returned for an answer outside the scale.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// UCLAQuestions are the items of the UCLA loneliness scale, in order.
var UCLAQuestions = [...]string{
	"I am unhappy doing so many things alone.",
	"I have nobody to talk to.",
	"I cannot tolerate being so alone.",
	"I lack companionship.",
	"I feel as if nobody really understands me.",
	"I find myself waiting for people to call or write.",
	"There is no one I can turn to.",
	"I am no longer close to anyone.",
	"My interests and ideas are not shared by those around me.",
	"I feel left out.",
	"I feel completely alone.",
	"I am unable to reach out and communicate with those around me.",
	"My social relationships are superficial.",
	"I feel starved for company.",
	"No one really knows me well.",
	"I feel isolated from others.",
	"I am unhappy being so withdrawn.",
	"It is difficult for me to make friends.",
	"I feel shut out and excluded by others.",
	"People are around me but not with me.",
}

// UCLA answer letters: often, sometimes, rarely, never.
var uclaPoints = map[string]int{
	"O": 3,
	"S": 2,
	"R": 1,
	"N": 0,
}

// Level is a banded loneliness score.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Message is the sentence shown with the level.
func (l Level) Message() string {
	switch l {
	case LevelLow:
		return "Low level of loneliness."
	case LevelModerate:
		return "Moderate level of loneliness."
	default:
		return "High level of loneliness."
	}
}

// UCLAResult is a scored UCLA questionnaire.
type UCLAResult struct {
	Score   int    `json:"score"` // 0 to 60
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// LevelFor bands a total score: up to 20 is low, up to 40 moderate.
func LevelFor(score int) Level {
	switch {
	case score <= 20:
		return LevelLow
	case score <= 40:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// ScoreUCLA scores one answer letter (O, S, R or N) per question.
func ScoreUCLA(answers []string) (UCLAResult, error) {
	if len(answers) != len(UCLAQuestions) {
		return UCLAResult{}, ErrIncomplete
	}

	total := 0
	for i, a := range answers {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a == "" {
			return UCLAResult{}, ErrIncomplete
		}
		p, ok := uclaPoints[a]
		if !ok {
			return UCLAResult{}, fmt.Errorf("question %d: %w %q", i+1, ErrInvalidAnswer, a)
		}
		total += p
	}

	level := LevelFor(total)
	return UCLAResult{Score: total, Level: level, Message: level.Message()}, nil
}
