package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// ResultsCSV renders completed results into a long-format CSV for the admin
// export. Scores and validity cells hold JSON, mirroring how they are stored.
func ResultsCSV(results []*models.Result) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"ts", "user_id", "locale", "survey", "version", "scores", "validity", "shared"})
	for _, r := range results {
		scores, err := json.Marshal(r.Scores)
		if err != nil {
			return nil, err
		}
		validity, err := json.Marshal(r.Validity)
		if err != nil {
			return nil, err
		}
		rec := []string{
			r.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			strconv.FormatInt(r.UserID, 10),
			r.Locale,
			r.SurveyKey,
			r.SurveyVersion,
			string(scores),
			string(validity),
			boolCell(r.SharedWithHR),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// SurveyStats aggregates completed results per survey.
type SurveyStats struct {
	SurveyKey string             `json:"survey_key"`
	Count     int                `json:"count"`
	Shared    int                `json:"shared"`
	Flagged   int                `json:"flagged"`
	AvgScores map[string]float64 `json:"avg_scores"`
}

// Aggregate computes per-survey counts, share/flag totals and average trait
// scores, ordered by survey key.
func Aggregate(results []*models.Result) []SurveyStats {
	type acc struct {
		count, shared, flagged int
		sums                   map[string]float64
		ns                     map[string]int
	}
	byKey := map[string]*acc{}
	for _, r := range results {
		a := byKey[r.SurveyKey]
		if a == nil {
			a = &acc{sums: map[string]float64{}, ns: map[string]int{}}
			byKey[r.SurveyKey] = a
		}
		a.count++
		if r.SharedWithHR {
			a.shared++
		}
		if r.Validity.Trap || r.Validity.TooFast || r.Validity.Straight {
			a.flagged++
		}
		for trait, score := range r.Scores {
			a.sums[trait] += score
			a.ns[trait]++
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]SurveyStats, 0, len(keys))
	for _, k := range keys {
		a := byKey[k]
		avg := make(map[string]float64, len(a.sums))
		for trait, sum := range a.sums {
			avg[trait] = round2(sum / float64(a.ns[trait]))
		}
		out = append(out, SurveyStats{SurveyKey: k, Count: a.count, Shared: a.shared, Flagged: a.flagged, AvgScores: avg})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func boolCell(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
