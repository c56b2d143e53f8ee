package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hojanyaz/hr-psychobot/internal/catalog"
	"github.com/hojanyaz/hr-psychobot/internal/models"
	"github.com/hojanyaz/hr-psychobot/internal/scoring"
	"github.com/hojanyaz/hr-psychobot/internal/store"
)

var (
	// ErrUnknownSurvey is returned when the referenced key is not in the catalog.
	ErrUnknownSurvey = errors.New("unknown survey")
	// ErrConsentRequired is returned when Start is called without an explicit
	// "agreed" signal from the user.
	ErrConsentRequired = errors.New("consent required")
	// ErrSessionExists signals an in-flight attempt for this user; the caller
	// must surface a resume-or-restart choice, never overwrite silently.
	ErrSessionExists = errors.New("session already in progress")
	// ErrNoActiveSession is returned for answer/back events with no live attempt.
	ErrNoActiveSession = errors.New("no active session")
	// ErrNoResumableSession is returned by Resume when no snapshot exists.
	ErrNoResumableSession = errors.New("no resumable session")
	// ErrInvalidAnswer is returned for ratings outside [1,5].
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrSurveyChanged signals that the live session no longer matches the
	// catalog definition (reloaded mid-attempt); the attempt is discarded.
	ErrSurveyChanged = errors.New("survey changed")
)

// Prompt describes the question to show next.
type Prompt struct {
	Position int // zero-based
	Total    int
	Text     string
}

// Step is the outcome of an Answer: either the next prompt or, on the final
// answer, the completed result.
type Step struct {
	Prompt *Prompt
	Result *models.Result
}

// Engine owns the per-user session lifecycle. All transitions for a given
// user are serialized through a per-user lock; independent users proceed
// concurrently. In-memory state is committed only after the snapshot
// persisted, so a store failure leaves the previous state authoritative.
type Engine struct {
	catalog    *catalog.Store
	sessions   store.SessionStore
	results    store.ResultStore
	thresholds scoring.Thresholds

	now   func() time.Time
	perm  func(n int) []int
	newID func() string

	locks  sync.Map // user id -> *sync.Mutex
	liveMu sync.RWMutex
	live   map[int64]*models.Session
}

func NewEngine(cat *catalog.Store, sessions store.SessionStore, results store.ResultStore, th scoring.Thresholds) *Engine {
	return &Engine{
		catalog:    cat,
		sessions:   sessions,
		results:    results,
		thresholds: th,
		now:        func() time.Time { return time.Now().UTC() },
		perm:       rand.Perm,
		newID:      func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
		live:       map[int64]*models.Session{},
	}
}

// Start creates a fresh attempt. It refuses without consent, for unknown
// surveys, and when an in-flight attempt exists (live or persisted).
func (e *Engine) Start(ctx context.Context, userID int64, surveyKey, locale string, consented bool) (*Prompt, error) {
	if !consented {
		return nil, ErrConsentRequired
	}
	mu := e.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	def := e.catalog.Current().Get(surveyKey)
	if def == nil {
		return nil, ErrUnknownSurvey
	}
	if e.liveGet(userID) != nil {
		return nil, ErrSessionExists
	}
	snap, err := e.sessions.GetInProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	if snap != nil {
		return nil, ErrSessionExists
	}
	return e.create(ctx, userID, def, locale)
}

// Restart discards any in-flight attempt and starts over. Only called after
// the user explicitly chose to discard.
func (e *Engine) Restart(ctx context.Context, userID int64, surveyKey, locale string) (*Prompt, error) {
	mu := e.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	def := e.catalog.Current().Get(surveyKey)
	if def == nil {
		return nil, ErrUnknownSurvey
	}
	if err := e.sessions.DeleteInProgress(ctx, userID); err != nil {
		return nil, fmt.Errorf("discard session snapshot: %w", err)
	}
	e.liveDelete(userID)
	return e.create(ctx, userID, def, locale)
}

func (e *Engine) create(ctx context.Context, userID int64, def *models.SurveyDefinition, locale string) (*Prompt, error) {
	n := len(def.Items)
	var order []int
	if def.Randomize {
		order = e.perm(n)
	} else {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}
	s := &models.Session{
		UserID:    userID,
		SurveyKey: def.Key,
		Locale:    locale,
		Order:     order,
		Answers:   []int{},
		Position:  0,
		StartedAt: e.now(),
	}
	if err := e.sessions.PutInProgress(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	e.liveSet(s)
	return e.prompt(def, s), nil
}

// Answer records a rating and advances the cursor. Reaching the last item
// finishes the attempt in the same step.
func (e *Engine) Answer(ctx context.Context, userID int64, rating int) (*Step, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidAnswer
	}
	mu := e.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	s := e.liveGet(userID)
	if s == nil {
		return nil, ErrNoActiveSession
	}
	def := e.catalog.Current().Get(s.SurveyKey)
	if def == nil {
		return nil, ErrUnknownSurvey
	}
	if len(s.Order) != len(def.Items) {
		return nil, e.discardChanged(ctx, userID)
	}
	if s.Position == len(def.Items) {
		// all answers are recorded but an earlier finish failed to persist
		// the result; retry it instead of appending past the end
		return e.finish(ctx, def, s)
	}

	next := *s
	next.Answers = append(append([]int(nil), s.Answers...), rating)
	next.Position = s.Position + 1
	if err := e.sessions.PutInProgress(ctx, &next); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	e.liveSet(&next)

	if next.Position == len(def.Items) {
		return e.finish(ctx, def, &next)
	}
	return &Step{Prompt: e.prompt(def, &next)}, nil
}

// Back steps one question back, dropping the last answer. At position zero
// it reports moved=false and returns the current prompt unchanged.
func (e *Engine) Back(ctx context.Context, userID int64) (*Prompt, bool, error) {
	mu := e.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	s := e.liveGet(userID)
	if s == nil {
		return nil, false, ErrNoActiveSession
	}
	def := e.catalog.Current().Get(s.SurveyKey)
	if def == nil {
		return nil, false, ErrUnknownSurvey
	}
	if len(s.Order) != len(def.Items) {
		return nil, false, e.discardChanged(ctx, userID)
	}
	if s.Position == 0 {
		return e.prompt(def, s), false, nil
	}

	next := *s
	next.Answers = append([]int(nil), s.Answers[:len(s.Answers)-1]...)
	next.Position = s.Position - 1
	if err := e.sessions.PutInProgress(ctx, &next); err != nil {
		return nil, false, fmt.Errorf("persist session: %w", err)
	}
	e.liveSet(&next)
	return e.prompt(def, &next), true, nil
}

// Resume reactivates the last persisted snapshot for the user, including
// its presentation order and start timestamp.
func (e *Engine) Resume(ctx context.Context, userID int64) (*Prompt, error) {
	mu := e.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	if s := e.liveGet(userID); s != nil {
		if def := e.catalog.Current().Get(s.SurveyKey); def != nil &&
			len(s.Order) == len(def.Items) && s.Position < len(def.Items) {
			return e.prompt(def, s), nil
		}
	}
	snap, err := e.sessions.GetInProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	if snap == nil {
		return nil, ErrNoResumableSession
	}
	def := e.catalog.Current().Get(snap.SurveyKey)
	if def == nil {
		return nil, ErrUnknownSurvey
	}
	if len(snap.Order) != len(def.Items) || snap.Position >= len(def.Items) || snap.Position != len(snap.Answers) {
		// snapshot no longer matches the definition; not worth resuming
		if err := e.sessions.DeleteInProgress(ctx, userID); err != nil {
			return nil, fmt.Errorf("discard session snapshot: %w", err)
		}
		e.liveDelete(userID)
		return nil, ErrNoResumableSession
	}
	e.liveSet(snap)
	return e.prompt(def, snap), nil
}

// discardChanged drops a live session whose definition was reloaded out from
// under it and reports ErrSurveyChanged unless the discard itself fails.
func (e *Engine) discardChanged(ctx context.Context, userID int64) error {
	if err := e.sessions.DeleteInProgress(ctx, userID); err != nil {
		return fmt.Errorf("discard session snapshot: %w", err)
	}
	e.liveDelete(userID)
	return ErrSurveyChanged
}

// Abandon drops the user's attempt, live and persisted.
func (e *Engine) Abandon(ctx context.Context, userID int64) error {
	mu := e.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := e.sessions.DeleteInProgress(ctx, userID); err != nil {
		return fmt.Errorf("discard session snapshot: %w", err)
	}
	e.liveDelete(userID)
	return nil
}

// HasActive reports whether the user has a live attempt in this process.
func (e *Engine) HasActive(userID int64) bool {
	return e.liveGet(userID) != nil
}

func (e *Engine) finish(ctx context.Context, def *models.SurveyDefinition, s *models.Session) (*Step, error) {
	ordered := scoring.Reorder(s.Order, s.Answers)
	scores, top, err := scoring.Score(def, ordered)
	if err != nil {
		return nil, err
	}
	now := e.now()
	res := &models.Result{
		ID:            e.newID(),
		UserID:        s.UserID,
		SurveyKey:     def.Key,
		SurveyVersion: def.Version,
		Locale:        s.Locale,
		Timestamp:     now,
		Scores:        scores,
		Top:           top,
		Validity:      scoring.CheckValidity(def, s, now, e.thresholds),
	}
	if err := e.results.PutResult(ctx, res); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}
	if err := e.sessions.DeleteInProgress(ctx, s.UserID); err != nil {
		return nil, fmt.Errorf("delete session snapshot: %w", err)
	}
	e.liveDelete(s.UserID)
	return &Step{Result: res}, nil
}

func (e *Engine) prompt(def *models.SurveyDefinition, s *models.Session) *Prompt {
	idx := s.Order[s.Position]
	return &Prompt{
		Position: s.Position,
		Total:    len(def.Items),
		Text:     itemText(def.Items[idx], s.Locale),
	}
}

func itemText(it models.Item, locale string) string {
	if t := it.Text[locale]; t != "" {
		return t
	}
	if t := it.Text["ru"]; t != "" {
		return t
	}
	for _, t := range it.Text {
		return t
	}
	return ""
}

func (e *Engine) lockFor(userID int64) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (e *Engine) liveGet(userID int64) *models.Session {
	e.liveMu.RLock()
	defer e.liveMu.RUnlock()
	return e.live[userID]
}

func (e *Engine) liveSet(s *models.Session) {
	e.liveMu.Lock()
	e.live[s.UserID] = s
	e.liveMu.Unlock()
}

func (e *Engine) liveDelete(userID int64) {
	e.liveMu.Lock()
	delete(e.live, userID)
	e.liveMu.Unlock()
}
