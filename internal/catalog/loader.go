package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// ErrMalformedSurvey marks a definition that violates the loader invariants.
// Such definitions are skipped at load time and never reach the scoring engine.
var ErrMalformedSurvey = errors.New("malformed survey")

// Issue records why one survey file was rejected.
type Issue struct {
	File string
	Err  error
}

func (i Issue) String() string { return i.File + ": " + i.Err.Error() }

// Load reads every *.json survey definition under dir and returns a catalog
// of the valid, active ones. Invalid or inactive files are reported as
// issues and skipped. A missing directory yields an empty catalog: a bot
// with zero surveys still starts and shows "no tests available".
func Load(dir string) (*Catalog, []Issue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewCatalog(nil), nil, nil
		}
		return nil, nil, fmt.Errorf("read survey dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var issues []Issue
	var defs []*models.SurveyDefinition
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			issues = append(issues, Issue{File: name, Err: err})
			continue
		}
		var def models.SurveyDefinition
		if err := json.Unmarshal(data, &def); err != nil {
			issues = append(issues, Issue{File: name, Err: fmt.Errorf("%w: %v", ErrMalformedSurvey, err)})
			continue
		}
		if status := def.Status; status != "" && status != "active" {
			continue
		}
		if err := Validate(&def); err != nil {
			issues = append(issues, Issue{File: name, Err: err})
			continue
		}
		defs = append(defs, &def)
	}
	return NewCatalog(defs), issues, nil
}

// Validate checks a definition against the loader invariants: a key and a
// title, at least one scorable item, and a scoring entry for every non-trap
// trait.
func Validate(def *models.SurveyDefinition) error {
	if strings.TrimSpace(def.Key) == "" {
		return fmt.Errorf("%w: key required", ErrMalformedSurvey)
	}
	if len(def.Title) == 0 {
		return fmt.Errorf("%w: title required", ErrMalformedSurvey)
	}
	if len(def.Items) == 0 {
		return fmt.Errorf("%w: items required", ErrMalformedSurvey)
	}
	scorable := 0
	for i, it := range def.Items {
		if len(it.Text) == 0 {
			return fmt.Errorf("%w: item %d has no text", ErrMalformedSurvey, i)
		}
		if it.IsTrap() {
			continue
		}
		scorable++
		if strings.TrimSpace(it.TraitKey) == "" {
			return fmt.Errorf("%w: item %d has no trait key", ErrMalformedSurvey, i)
		}
		if _, ok := def.Scoring[it.TraitKey]; !ok {
			return fmt.Errorf("%w: item %d references undefined trait %q", ErrMalformedSurvey, i, it.TraitKey)
		}
	}
	if scorable == 0 {
		return fmt.Errorf("%w: only trap items", ErrMalformedSurvey)
	}
	return nil
}
