package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

func TestResultsCSV(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	results := []*models.Result{
		{
			ID: "r1", UserID: 42, SurveyKey: "motivation", SurveyVersion: "2", Locale: "ru",
			Timestamp:    t0,
			Scores:       map[string]float64{"drive": 4.5},
			SharedWithHR: true,
		},
		{
			ID: "r2", UserID: 7, SurveyKey: "stress", Locale: "uz",
			Timestamp: t0.Add(time.Hour),
			Scores:    map[string]float64{"calm": 2.0},
			Validity:  models.Validity{TooFast: true, DurationSeconds: 12},
		},
	}
	data, err := ResultsCSV(results)
	if err != nil {
		t.Fatalf("ResultsCSV: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	header := []string{"ts", "user_id", "locale", "survey", "version", "scores", "validity", "shared"}
	for i, h := range header {
		if rows[0][i] != h {
			t.Fatalf("header = %v", rows[0])
		}
	}
	if rows[1][0] != "2025-06-01T09:30:00Z" || rows[1][1] != "42" || rows[1][7] != "1" {
		t.Fatalf("first row = %v", rows[1])
	}
	if rows[1][5] != `{"drive":4.5}` {
		t.Fatalf("scores cell = %q", rows[1][5])
	}
	if rows[2][3] != "stress" || rows[2][7] != "0" {
		t.Fatalf("second row = %v", rows[2])
	}
}

func TestResultsCSVEmpty(t *testing.T) {
	data, err := ResultsCSV(nil)
	if err != nil {
		t.Fatalf("ResultsCSV: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil || len(rows) != 1 {
		t.Fatalf("empty export rows = %d, %v", len(rows), err)
	}
}

func TestAggregate(t *testing.T) {
	results := []*models.Result{
		{SurveyKey: "motivation", Scores: map[string]float64{"drive": 4.0}, SharedWithHR: true},
		{SurveyKey: "motivation", Scores: map[string]float64{"drive": 3.0}, Validity: models.Validity{Straight: true}},
		{SurveyKey: "stress", Scores: map[string]float64{"calm": 2.0}},
	}
	stats := Aggregate(results)
	if len(stats) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	// Sorted by key: motivation first.
	m := stats[0]
	if m.SurveyKey != "motivation" || m.Count != 2 || m.Shared != 1 || m.Flagged != 1 {
		t.Fatalf("motivation stats = %+v", m)
	}
	if m.AvgScores["drive"] != 3.5 {
		t.Fatalf("avg drive = %v", m.AvgScores["drive"])
	}
	if stats[1].SurveyKey != "stress" || stats[1].Count != 1 {
		t.Fatalf("stress stats = %+v", stats[1])
	}
}

func TestAggregateEmpty(t *testing.T) {
	if stats := Aggregate(nil); len(stats) != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
