package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

const validSurvey = `{
  "key": "motivation",
  "version": "1",
  "status": "active",
  "title": {"ru": "Мотивация", "uz": "Motivatsiya"},
  "items": [
    {"k": "drive", "t": {"ru": "Вопрос 1"}},
    {"k": "drive", "t": {"ru": "Вопрос 2"}, "rev": true}
  ],
  "scoring": {"drive": {"ru": "Драйв"}}
}`

func writeSurvey(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeSurvey(t, dir, "motivation.json", validSurvey)
	writeSurvey(t, dir, "broken.json", `{not json`)
	writeSurvey(t, dir, "draft.json", `{"key":"draft","status":"draft","title":{"ru":"x"},"items":[{"k":"a","t":{"ru":"q"}}],"scoring":{"a":{"ru":"A"}}}`)
	writeSurvey(t, dir, "notes.txt", "ignored")

	cat, issues, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("catalog has %d surveys, want 1 (keys %v)", cat.Len(), cat.Keys())
	}
	if cat.Get("motivation") == nil {
		t.Fatalf("motivation survey missing")
	}
	// Only the malformed file is an issue; the draft is silently skipped.
	if len(issues) != 1 || issues[0].File != "broken.json" {
		t.Fatalf("issues = %v", issues)
	}
}

func TestLoadMissingDir(t *testing.T) {
	cat, issues, err := Load(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 0 || len(issues) != 0 {
		t.Fatalf("expected empty catalog, got %d surveys, %d issues", cat.Len(), len(issues))
	}
}

func TestValidate(t *testing.T) {
	base := func() *models.SurveyDefinition {
		return &models.SurveyDefinition{
			Key:   "demo",
			Title: map[string]string{"ru": "Демо"},
			Items: []models.Item{
				{TraitKey: "a", Text: map[string]string{"ru": "q1"}},
				{TraitKey: "trap", Text: map[string]string{"ru": "q2"}},
			},
			Scoring: map[string]map[string]string{"a": {"ru": "A"}},
		}
	}

	if err := Validate(base()); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}

	d := base()
	d.Key = " "
	if err := Validate(d); err == nil {
		t.Fatalf("missing key accepted")
	}

	d = base()
	d.Items[0].TraitKey = "unknown"
	if err := Validate(d); err == nil {
		t.Fatalf("undefined trait accepted")
	}

	d = base()
	d.Items = d.Items[1:] // trap only
	if err := Validate(d); err == nil {
		t.Fatalf("trap-only survey accepted")
	}

	d = base()
	d.Items[0].Text = nil
	if err := Validate(d); err == nil {
		t.Fatalf("item without text accepted")
	}
}

func TestStoreSwap(t *testing.T) {
	s := NewStore()
	if s.Current().Len() != 0 {
		t.Fatalf("fresh store should be empty")
	}
	s.Swap(NewCatalog([]*models.SurveyDefinition{{Key: "one"}, {Key: "two"}}))
	got := s.Current()
	if got.Len() != 2 {
		t.Fatalf("swap not visible, len = %d", got.Len())
	}
	keys := got.Keys()
	if keys[0] != "one" || keys[1] != "two" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}
