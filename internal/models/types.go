package models

import "time"

// SurveyDefinition is one self-assessment questionnaire. Definitions are
// immutable once loaded into the catalog.
type SurveyDefinition struct {
	Key       string                       `json:"key"`
	Version   string                       `json:"version,omitempty"`
	Status    string                       `json:"status,omitempty"`
	Randomize bool                         `json:"randomize,omitempty"`
	Title     map[string]string            `json:"title"`
	Items     []Item                       `json:"items"`
	Scoring   map[string]map[string]string `json:"scoring"`
}

// Item is a single Likert statement. The JSON field names match the survey
// files: k (trait key), t (localized text), rev (reverse-scored).
type Item struct {
	TraitKey      string            `json:"k"`
	Text          map[string]string `json:"t"`
	ReverseScored bool              `json:"rev,omitempty"`
	Trap          bool              `json:"trap,omitempty"`
}

// IsTrap reports whether the item is an attention trap. Trap items are
// excluded from scoring; survey files mark them either with the flag or
// with the reserved "trap" trait key.
func (it Item) IsTrap() bool {
	return it.Trap || it.TraitKey == "trap"
}

// Session is one in-flight survey attempt. Answers are appended in
// presentation order; Position always equals len(Answers).
type Session struct {
	UserID    int64     `json:"user_id"`
	SurveyKey string    `json:"survey_key"`
	Locale    string    `json:"locale"`
	Order     []int     `json:"order"`
	Answers   []int     `json:"answers"`
	Position  int       `json:"position"`
	StartedAt time.Time `json:"started_at"`
}

// TraitScore pairs a trait key with its averaged score.
type TraitScore struct {
	Trait string  `json:"trait"`
	Score float64 `json:"score"`
}

// Validity carries the advisory data-quality flags computed at completion.
// The flags never block a result; they are surfaced as a caution.
type Validity struct {
	Trap            bool    `json:"trap"`
	TooFast         bool    `json:"too_fast"`
	Straight        bool    `json:"straight"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Result is a completed, scored attempt. Immutable except for the one-way
// SharedWithHR transition.
type Result struct {
	ID            string             `json:"id"`
	UserID        int64              `json:"user_id"`
	SurveyKey     string             `json:"survey_key"`
	SurveyVersion string             `json:"survey_version"`
	Locale        string             `json:"locale"`
	Timestamp     time.Time          `json:"ts"`
	Scores        map[string]float64 `json:"scores"`
	Top           []TraitScore       `json:"top"`
	Validity      Validity           `json:"validity"`
	SharedWithHR  bool               `json:"shared_with_hr"`
}

// UserProfile stores per-user presentation preferences.
type UserProfile struct {
	UserID int64  `json:"user_id"`
	Locale string `json:"locale"`
	Role   string `json:"role,omitempty"`
}
