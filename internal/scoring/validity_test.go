package scoring

import (
	"testing"
	"time"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

func validityDef(n int) *models.SurveyDefinition {
	def := &models.SurveyDefinition{Key: "demo", Scoring: map[string]map[string]string{"a": {"ru": "A"}}}
	for i := 0; i < n; i++ {
		def.Items = append(def.Items, models.Item{TraitKey: "a", Text: map[string]string{"ru": "q"}})
	}
	return def
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func TestCheckValidityTrap(t *testing.T) {
	def := validityDef(3)
	def.Items[1].Trap = true
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := &models.Session{
		Order:     []int{2, 1, 0}, // trap item shown second
		Answers:   []int{3, 5, 2},
		StartedAt: start,
	}
	v := CheckValidity(def, s, start.Add(time.Minute), DefaultThresholds)
	if !v.Trap {
		t.Fatalf("trap answer 5 should flag, got %+v", v)
	}

	s.Answers = []int{3, 1, 2}
	v = CheckValidity(def, s, start.Add(time.Minute), DefaultThresholds)
	if v.Trap {
		t.Fatalf("trap answer 1 should not flag, got %+v", v)
	}
}

func TestCheckValidityTooFast(t *testing.T) {
	def := validityDef(10)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := &models.Session{
		Order:     identityOrder(10),
		Answers:   []int{1, 5, 2, 4, 3, 1, 5, 2, 4, 3},
		StartedAt: start,
	}
	// 10 items at 1.5 s/item needs 15 s.
	v := CheckValidity(def, s, start.Add(10*time.Second), DefaultThresholds)
	if !v.TooFast {
		t.Fatalf("10s over 10 items should flag too_fast, got %+v", v)
	}
	if v.DurationSeconds != 10 {
		t.Fatalf("duration = %v, want 10", v.DurationSeconds)
	}
	v = CheckValidity(def, s, start.Add(20*time.Second), DefaultThresholds)
	if v.TooFast {
		t.Fatalf("20s over 10 items should not flag, got %+v", v)
	}
}

func TestCheckValidityStraight(t *testing.T) {
	def := validityDef(6)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := &models.Session{
		Order:     identityOrder(6),
		Answers:   []int{4, 4, 4, 4, 4, 4},
		StartedAt: start,
	}
	v := CheckValidity(def, s, start.Add(time.Minute), DefaultThresholds)
	if !v.Straight {
		t.Fatalf("constant answers should flag straight, got %+v", v)
	}

	s.Answers = []int{1, 5, 2, 4, 3, 1}
	v = CheckValidity(def, s, start.Add(time.Minute), DefaultThresholds)
	if v.Straight {
		t.Fatalf("varied answers should not flag, got %+v", v)
	}
}

func TestVariance(t *testing.T) {
	if v := variance([]int{3, 3, 3}); v != 0 {
		t.Fatalf("variance of constants = %v, want 0", v)
	}
	if v := variance([]int{1, 5}); v != 4 {
		t.Fatalf("variance([1,5]) = %v, want 4", v)
	}
	if v := variance(nil); v != 0 {
		t.Fatalf("variance(nil) = %v, want 0", v)
	}
}
