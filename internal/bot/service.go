package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/hojanyaz/hr-psychobot/internal/catalog"
	"github.com/hojanyaz/hr-psychobot/internal/models"
	"github.com/hojanyaz/hr-psychobot/internal/report"
	"github.com/hojanyaz/hr-psychobot/internal/session"
	"github.com/hojanyaz/hr-psychobot/internal/store"
	"github.com/hojanyaz/hr-psychobot/internal/utils"
)

// Presenter is the chat transport seen from the core: it delivers prompts
// and messages and is expected to eventually route the user's reaction back
// in as another event. The core never depends on how any of this renders.
type Presenter interface {
	AskQuestion(ctx context.Context, userID int64, label, text string, scale int) error
	Notify(ctx context.Context, userID int64, text string) error
	NotifyWithChart(ctx context.Context, userID int64, text string, points []report.ChartPoint) error
}

// Service wires the survey flow together: menu, consent gate, question loop,
// result delivery and the share-with-HR action.
type Service struct {
	engine    *session.Engine
	catalog   *catalog.Store
	results   store.ResultStore
	presenter Presenter
	overlays  *report.Overlays
	admins    []int64

	mu      sync.Mutex
	pending map[int64]string // survey chosen, awaiting consent
}

func NewService(engine *session.Engine, cat *catalog.Store, results store.ResultStore, presenter Presenter, overlays *report.Overlays, admins []int64) *Service {
	return &Service{
		engine:    engine,
		catalog:   cat,
		results:   results,
		presenter: presenter,
		overlays:  overlays,
		admins:    admins,
		pending:   map[int64]string{},
	}
}

// SetLocale stores the user's language choice and shows the survey menu.
func (s *Service) SetLocale(ctx context.Context, userID int64, locale string) error {
	if err := s.results.UpsertProfile(ctx, &models.UserProfile{UserID: userID, Locale: locale}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return s.ShowMenu(ctx, userID)
}

// ShowMenu lists the available surveys in the user's locale.
func (s *Service) ShowMenu(ctx context.Context, userID int64) error {
	locale := s.localeFor(ctx, userID)
	cat := s.catalog.Current()
	if cat.Len() == 0 {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "menu.empty"))
	}
	var b strings.Builder
	b.WriteString(utils.T(locale, "menu.pick_survey"))
	for _, key := range cat.Keys() {
		def := cat.Get(key)
		b.WriteString("\n• " + localizedTitle(def, locale))
	}
	return s.presenter.Notify(ctx, userID, b.String())
}

// ChooseSurvey remembers the pick and shows the consent text. No session is
// created until the user explicitly agrees.
func (s *Service) ChooseSurvey(ctx context.Context, userID int64, surveyKey string) error {
	locale := s.localeFor(ctx, userID)
	if s.catalog.Current().Get(surveyKey) == nil {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.unknown_survey"))
	}
	s.mu.Lock()
	s.pending[userID] = surveyKey
	s.mu.Unlock()
	return s.presenter.Notify(ctx, userID, utils.T(locale, "consent.text"))
}

// Agree is the explicit consent signal: it starts the session. An existing
// in-flight attempt surfaces the resume-or-restart choice instead.
func (s *Service) Agree(ctx context.Context, userID int64) error {
	locale := s.localeFor(ctx, userID)
	s.mu.Lock()
	surveyKey := s.pending[userID]
	s.mu.Unlock()
	if surveyKey == "" {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.no_session"))
	}

	prompt, err := s.engine.Start(ctx, userID, surveyKey, locale, true)
	if errors.Is(err, session.ErrSessionExists) {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "session.exists"))
	}
	if err != nil {
		return s.notifyErr(ctx, userID, locale, err)
	}
	if err := s.presenter.Notify(ctx, userID, utils.T(locale, "scale.legend")); err != nil {
		return err
	}
	return s.ask(ctx, userID, prompt)
}

// ResumeChoice continues the interrupted attempt exactly where it stopped.
func (s *Service) ResumeChoice(ctx context.Context, userID int64) error {
	locale := s.localeFor(ctx, userID)
	prompt, err := s.engine.Resume(ctx, userID)
	if errors.Is(err, session.ErrNoResumableSession) {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.no_resume"))
	}
	if err != nil {
		return s.notifyErr(ctx, userID, locale, err)
	}
	if err := s.presenter.Notify(ctx, userID, utils.T(locale, "session.resumed")); err != nil {
		return err
	}
	return s.ask(ctx, userID, prompt)
}

// RestartChoice discards the in-flight attempt and starts the chosen survey
// over. Requires a pending pick so the discard is always explicit.
func (s *Service) RestartChoice(ctx context.Context, userID int64) error {
	locale := s.localeFor(ctx, userID)
	s.mu.Lock()
	surveyKey := s.pending[userID]
	s.mu.Unlock()
	if surveyKey == "" {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.no_session"))
	}
	prompt, err := s.engine.Restart(ctx, userID, surveyKey, locale)
	if err != nil {
		return s.notifyErr(ctx, userID, locale, err)
	}
	if err := s.presenter.Notify(ctx, userID, utils.T(locale, "scale.legend")); err != nil {
		return err
	}
	return s.ask(ctx, userID, prompt)
}

// HandleAnswer records a rating. On the last item the summary (with radar
// chart data) is delivered in the same step.
func (s *Service) HandleAnswer(ctx context.Context, userID int64, rating int) error {
	locale := s.localeFor(ctx, userID)
	step, err := s.engine.Answer(ctx, userID, rating)
	switch {
	case errors.Is(err, session.ErrInvalidAnswer):
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.bad_rating"))
	case errors.Is(err, session.ErrNoActiveSession):
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.no_session"))
	case err != nil:
		return s.notifyErr(ctx, userID, locale, err)
	}
	if step.Prompt != nil {
		return s.ask(ctx, userID, step.Prompt)
	}
	return s.deliverResult(ctx, userID, step.Result)
}

// HandleBack re-asks the previous question. At the first question it simply
// repeats the prompt.
func (s *Service) HandleBack(ctx context.Context, userID int64) error {
	locale := s.localeFor(ctx, userID)
	prompt, _, err := s.engine.Back(ctx, userID)
	if errors.Is(err, session.ErrNoActiveSession) {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "error.no_session"))
	}
	if err != nil {
		return s.notifyErr(ctx, userID, locale, err)
	}
	return s.ask(ctx, userID, prompt)
}

// ShareHR forwards the user's latest result as a compact report to the
// configured HR chat ids and flips the shared flag exactly once.
func (s *Service) ShareHR(ctx context.Context, userID int64, username string) error {
	locale := s.localeFor(ctx, userID)
	res, err := s.results.GetLatestResult(ctx, userID)
	if err != nil {
		return s.notifyErr(ctx, userID, locale, err)
	}
	if res == nil {
		return s.presenter.Notify(ctx, userID, utils.T(locale, "share.none"))
	}
	if !res.SharedWithHR {
		if err := s.results.MarkShared(ctx, res.ID); err != nil {
			return s.notifyErr(ctx, userID, locale, err)
		}
	}
	def := s.catalog.Current().Get(res.SurveyKey)
	text := report.CompactHR(def, res, username)
	for _, admin := range s.admins {
		if err := s.presenter.Notify(ctx, admin, text); err != nil {
			log.Printf("bot: notify admin %d: %v", admin, err)
		}
	}
	return s.presenter.Notify(ctx, userID, utils.T(locale, "share.done"))
}

func (s *Service) deliverResult(ctx context.Context, userID int64, res *models.Result) error {
	def := s.catalog.Current().Get(res.SurveyKey)
	role := ""
	if p, err := s.results.GetProfile(ctx, userID); err == nil && p != nil {
		role = p.Role
	}
	text := report.Summary(def, res, s.overlays, role, res.Locale)
	points := report.RadarPoints(def, res, res.Locale)
	s.mu.Lock()
	delete(s.pending, userID)
	s.mu.Unlock()
	return s.presenter.NotifyWithChart(ctx, userID, text, points)
}

func (s *Service) ask(ctx context.Context, userID int64, p *session.Prompt) error {
	label := fmt.Sprintf("%d/%d", p.Position+1, p.Total)
	return s.presenter.AskQuestion(ctx, userID, label, p.Text, 5)
}

func (s *Service) localeFor(ctx context.Context, userID int64) string {
	if p, err := s.results.GetProfile(ctx, userID); err == nil && p != nil && p.Locale != "" {
		return p.Locale
	}
	return "ru"
}

func (s *Service) notifyErr(ctx context.Context, userID int64, locale string, err error) error {
	log.Printf("bot: user %d: %v", userID, err)
	key := "error.persistence"
	switch {
	case errors.Is(err, session.ErrUnknownSurvey):
		key = "error.unknown_survey"
	case errors.Is(err, session.ErrConsentRequired):
		key = "consent.text"
	case errors.Is(err, session.ErrSurveyChanged):
		key = "error.survey_changed"
	}
	return s.presenter.Notify(ctx, userID, utils.T(locale, key))
}

func localizedTitle(def *models.SurveyDefinition, locale string) string {
	if v := def.Title[locale]; v != "" {
		return v
	}
	if v := def.Title["ru"]; v != "" {
		return v
	}
	for _, v := range def.Title {
		return v
	}
	return def.Key
}
