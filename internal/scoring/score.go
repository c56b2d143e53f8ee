package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

const scalePoints = 5

var (
	// ErrAnswerCount is returned when the answer sequence does not cover the
	// definition's items exactly.
	ErrAnswerCount = errors.New("answer count does not match item count")
	// ErrEmptyBucket is returned when a trait ends up with no scorable items.
	// The catalog validator makes this unreachable for loaded definitions.
	ErrEmptyBucket = errors.New("trait has no scorable items")
)

// ReverseScore maps a raw Likert rating onto the inverted scale: on five
// points 1 and 5 swap, 2 and 4 swap, 3 maps to itself. Out-of-range values
// are clamped.
func ReverseScore(raw, points int) int {
	if points < 2 {
		return raw
	}
	if raw < 1 {
		raw = 1
	}
	if raw > points {
		raw = points
	}
	return (points + 1) - raw
}

// Reorder inverse-permutes presentation-order answers back into definition
// order: ordered[order[i]] = answers[i].
func Reorder(order, answers []int) []int {
	ordered := make([]int, len(answers))
	for i, a := range answers {
		ordered[order[i]] = a
	}
	return ordered
}

// Score computes per-trait average scores and the ranked top traits for a
// completed attempt. The answers must be in definition order. Trap items are
// excluded entirely; reverse-scored items are inverted before aggregation.
// Scores are rounded to two decimals. It is a pure function.
func Score(def *models.SurveyDefinition, ordered []int) (map[string]float64, []models.TraitScore, error) {
	if len(ordered) != len(def.Items) {
		return nil, nil, fmt.Errorf("%w: %d answers for %d items", ErrAnswerCount, len(ordered), len(def.Items))
	}

	sums := map[string]int{}
	counts := map[string]int{}
	var traits []string // first-encountered order, for stable tie-breaking
	for i, it := range def.Items {
		if it.IsTrap() {
			continue
		}
		val := ordered[i]
		if it.ReverseScored {
			val = ReverseScore(val, scalePoints)
		}
		if _, seen := counts[it.TraitKey]; !seen {
			traits = append(traits, it.TraitKey)
		}
		sums[it.TraitKey] += val
		counts[it.TraitKey]++
	}

	scores := make(map[string]float64, len(traits))
	ranked := make([]models.TraitScore, 0, len(traits))
	for _, k := range traits {
		if counts[k] == 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrEmptyBucket, k)
		}
		s := round2(float64(sums[k]) / float64(counts[k]))
		scores[k] = s
		ranked = append(ranked, models.TraitScore{Trait: k, Score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return scores, ranked, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
