package scoring

import (
	"time"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// Thresholds configures the response-quality heuristics.
type Thresholds struct {
	// MinSecondsPerItem flags attempts completed faster than this per item.
	MinSecondsPerItem float64
	// StraightVariance flags attempts whose raw answer variance falls below
	// this bound (near-identical ratings regardless of content).
	StraightVariance float64
}

// DefaultThresholds match the tuning the bot shipped with.
var DefaultThresholds = Thresholds{MinSecondsPerItem: 1.5, StraightVariance: 0.3}

// CheckValidity computes the advisory data-quality flags for a finished
// session. Trap answers are matched through the presentation order against
// the raw answer sequence. Deterministic given its inputs.
func CheckValidity(def *models.SurveyDefinition, s *models.Session, now time.Time, th Thresholds) models.Validity {
	v := models.Validity{}

	for i, a := range s.Answers {
		if i >= len(s.Order) {
			break
		}
		idx := s.Order[i]
		if idx < 0 || idx >= len(def.Items) {
			continue
		}
		if def.Items[idx].IsTrap() && a >= 4 {
			v.Trap = true
		}
	}

	elapsed := now.Sub(s.StartedAt).Seconds()
	v.DurationSeconds = round2(elapsed)
	if elapsed < float64(len(def.Items))*th.MinSecondsPerItem {
		v.TooFast = true
	}

	if variance(s.Answers) < th.StraightVariance {
		v.Straight = true
	}
	return v
}

// variance is the population variance, matching the convention used for the
// reliability math elsewhere in this codebase.
func variance(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += float64(x)
	}
	mean /= float64(len(xs))
	var sum float64
	for _, x := range xs {
		d := float64(x) - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}
