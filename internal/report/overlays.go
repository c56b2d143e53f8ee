package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Band is one interpretation range for a trait score.
type Band struct {
	Min  float64           `json:"min"`
	Max  float64           `json:"max"`
	Text map[string]string `json:"text"`
}

// Overlays holds the optional presentation config: per-trait interpretation
// bands and per-role tip lines. Both files are optional.
type Overlays struct {
	Interpretations map[string][]Band              `json:"interpretations"`
	RoleTips        map[string]map[string][]string `json:"role_tips"`
}

// LoadOverlays reads interpretations.json and roles_tips.json from dir.
// Missing files are fine; malformed ones are an error so the operator
// notices at startup or via the validate command.
func LoadOverlays(dir string) (*Overlays, error) {
	ov := &Overlays{
		Interpretations: map[string][]Band{},
		RoleTips:        map[string]map[string][]string{},
	}
	if err := readJSON(filepath.Join(dir, "interpretations.json"), &ov.Interpretations); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "roles_tips.json"), &ov.RoleTips); err != nil {
		return nil, err
	}
	return ov, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// InterpretationFor picks the band text matching score for trait, if any.
func (o *Overlays) InterpretationFor(trait string, score float64, locale string) string {
	if o == nil {
		return ""
	}
	for _, b := range o.Interpretations[trait] {
		if score >= b.Min && score <= b.Max {
			if t := b.Text[locale]; t != "" {
				return t
			}
			return b.Text["ru"]
		}
	}
	return ""
}

// TipsFor returns the tip lines for a role, if any.
func (o *Overlays) TipsFor(role, locale string) []string {
	if o == nil || role == "" {
		return nil
	}
	m := o.RoleTips[role]
	if m == nil {
		return nil
	}
	if tips := m[locale]; len(tips) > 0 {
		return tips
	}
	return m["ru"]
}
