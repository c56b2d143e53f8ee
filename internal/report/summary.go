package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hojanyaz/hr-psychobot/internal/models"
	"github.com/hojanyaz/hr-psychobot/internal/utils"
)

// ChartPoint is one axis of the radar chart the transport renders.
type ChartPoint struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Summary renders the human-readable result text in the given locale:
// title, per-trait score lines, the top-traits line, a caution when the
// validity flags fired, interpretation bands and role tips when configured.
func Summary(def *models.SurveyDefinition, res *models.Result, ov *Overlays, role, locale string) string {
	var b strings.Builder
	title := res.SurveyKey
	if def != nil {
		title = localized(def.Title, locale)
	}
	b.WriteString("📊 " + title + "\n")
	for _, trait := range resultTraitOrder(def, res) {
		score, ok := res.Scores[trait]
		if !ok {
			continue
		}
		b.WriteString("• " + traitLabel(def, trait, locale) + ": " + formatScore(score) + "/5\n")
	}

	if len(res.Top) > 0 {
		parts := make([]string, 0, len(res.Top))
		for _, ts := range res.Top {
			parts = append(parts, fmt.Sprintf("%s (%s)", traitLabel(def, ts.Trait, locale), formatScore(ts.Score)))
		}
		b.WriteString(utils.T(locale, "summary.top") + strings.Join(parts, ", ") + "\n")
	}

	if res.Validity.Trap || res.Validity.TooFast || res.Validity.Straight {
		b.WriteString("\n" + utils.T(locale, "summary.caution") + "\n")
	}

	var interp []string
	for _, ts := range res.Top {
		if t := ov.InterpretationFor(ts.Trait, ts.Score, locale); t != "" {
			interp = append(interp, "• "+t)
		}
	}
	if len(interp) > 0 {
		b.WriteString("\n" + strings.Join(interp, "\n") + "\n")
	}

	if tips := ov.TipsFor(role, locale); len(tips) > 0 {
		b.WriteString("\n🧩 " + strings.Join(tips, "\n• "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// CompactHR renders the short report forwarded to HR staff. Matches the
// established format: russian labels, username header, survey version.
// A nil definition (survey removed since completion) falls back to raw keys.
func CompactHR(def *models.SurveyDefinition, res *models.Result, username string) string {
	if username == "" {
		username = strconv.FormatInt(res.UserID, 10)
	}
	var b strings.Builder
	b.WriteString("👤 @" + username + "\n")
	if def != nil {
		b.WriteString(localized(def.Title, "ru"))
	} else {
		b.WriteString(res.SurveyKey)
	}
	if res.SurveyVersion != "" {
		b.WriteString(" v" + res.SurveyVersion)
	}
	b.WriteString("\n")
	for _, trait := range resultTraitOrder(def, res) {
		score, ok := res.Scores[trait]
		if !ok {
			continue
		}
		b.WriteString("• " + traitLabel(def, trait, "ru") + ": " + formatScore(score) + "/5\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// resultTraitOrder prefers the definition's item order, falling back to
// sorted score keys when the definition is gone.
func resultTraitOrder(def *models.SurveyDefinition, res *models.Result) []string {
	if def != nil {
		return traitOrder(def)
	}
	out := make([]string, 0, len(res.Scores))
	for trait := range res.Scores {
		out = append(out, trait)
	}
	sort.Strings(out)
	return out
}

// RadarPoints lists (label, score) pairs in stable trait order for chart
// rendering by the transport.
func RadarPoints(def *models.SurveyDefinition, res *models.Result, locale string) []ChartPoint {
	traits := resultTraitOrder(def, res)
	out := make([]ChartPoint, 0, len(traits))
	for _, trait := range traits {
		score, ok := res.Scores[trait]
		if !ok {
			continue
		}
		out = append(out, ChartPoint{Label: traitLabel(def, trait, locale), Score: score})
	}
	return out
}

// traitOrder derives a stable trait order from the first appearance of each
// non-trap trait in the item list.
func traitOrder(def *models.SurveyDefinition) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, it := range def.Items {
		if it.IsTrap() {
			continue
		}
		if _, ok := seen[it.TraitKey]; ok {
			continue
		}
		seen[it.TraitKey] = struct{}{}
		out = append(out, it.TraitKey)
	}
	return out
}

func traitLabel(def *models.SurveyDefinition, trait, locale string) string {
	if def == nil {
		return trait
	}
	if labels, ok := def.Scoring[trait]; ok {
		if l := localized(labels, locale); l != "" {
			return l
		}
	}
	return trait
}

func localized(m map[string]string, locale string) string {
	if v := m[locale]; v != "" {
		return v
	}
	if v := m["ru"]; v != "" {
		return v
	}
	for _, v := range m {
		return v
	}
	return ""
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
