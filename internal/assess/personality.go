package assess

import (
	"fmt"
	"math"
)

// Trait is one of the Big Five personality dimensions.
type Trait string

const (
	Extraversion      Trait = "extraversion"
	Agreeableness     Trait = "agreeableness"
	Conscientiousness Trait = "conscientiousness"
	Neuroticism       Trait = "neuroticism"
	Openness          Trait = "openness"
)

// Traits lists the dimensions in canonical order.
var Traits = []Trait{Extraversion, Agreeableness, Conscientiousness, Neuroticism, Openness}

// Answer scale bounds.
const (
	minAnswer = 1
	maxAnswer = 5
)

// PersonalityResult is a scored personality quiz.
type PersonalityResult struct {
	Scores      map[Trait]int     `json:"scores"`
	Percentages map[Trait]float64 `json:"percentages"` // Share of the total, 2 decimals
	Highest     Trait             `json:"highest"`
}

// ScorePersonality scores two items per trait, keyed "<trait>1" and
// "<trait>2" (e.g. "openness2"). The second item is reverse scored. The
// highest share wins; on a tie the later trait in Traits wins.
func ScorePersonality(answers map[string]int) (PersonalityResult, error) {
	res := PersonalityResult{
		Scores:      make(map[Trait]int, len(Traits)),
		Percentages: make(map[Trait]float64, len(Traits)),
	}

	total := 0
	for _, t := range Traits {
		first, err := item(answers, string(t)+"1")
		if err != nil {
			return PersonalityResult{}, err
		}
		second, err := item(answers, string(t)+"2")
		if err != nil {
			return PersonalityResult{}, err
		}
		score := first + (maxAnswer + 1 - second)
		res.Scores[t] = score
		total += score
	}

	best := -1.0
	for _, t := range Traits {
		pct := math.Round(float64(res.Scores[t])/float64(total)*100*100) / 100
		res.Percentages[t] = pct
		if pct >= best {
			best = pct
			res.Highest = t
		}
	}
	return res, nil
}

func item(answers map[string]int, key string) (int, error) {
	v, ok := answers[key]
	if !ok {
		return 0, ErrIncomplete
	}
	if v < minAnswer || v > maxAnswer {
		return 0, fmt.Errorf("%s: %w %d", key, ErrInvalidAnswer, v)
	}
	return v, nil
}
