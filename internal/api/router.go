package api

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hojanyaz/hr-psychobot/internal/bot"
	"github.com/hojanyaz/hr-psychobot/internal/catalog"
	"github.com/hojanyaz/hr-psychobot/internal/middleware"
	"github.com/hojanyaz/hr-psychobot/internal/report"
	"github.com/hojanyaz/hr-psychobot/internal/store"
)

// ReloadFunc rebuilds the catalog from its backing directory.
type ReloadFunc func() (*catalog.Catalog, []catalog.Issue, error)

// Router exposes the chat event endpoint and the admin surface.
type Router struct {
	results  store.ResultStore
	catalog  *catalog.Store
	bot      *bot.Service
	outbox   *Outbox
	reload   ReloadFunc
	admin    string
	adminPwd []byte // bcrypt hash
	tokenTTL time.Duration
}

func NewRouter(results store.ResultStore, cat *catalog.Store, botSvc *bot.Service, outbox *Outbox, reload ReloadFunc, adminUser string, adminHash []byte) *Router {
	return &Router{
		results:  results,
		catalog:  cat,
		bot:      botSvc,
		outbox:   outbox,
		reload:   reload,
		admin:    adminUser,
		adminPwd: adminHash,
		tokenTTL: 24 * time.Hour,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", rt.handleHealth)            // GET
	mux.HandleFunc("/api/chat/event", rt.handleChatEvent) // POST
	mux.HandleFunc("/api/admin/login", rt.handleLogin)    // POST
	mux.Handle("/api/admin/reload", rt.authed(rt.handleReload))
	mux.Handle("/api/admin/export", rt.authed(rt.handleExport))
	mux.Handle("/api/admin/stats", rt.authed(rt.handleStats))
	mux.Handle("/api/admin/share", rt.authed(rt.handleShare))
}

func (rt *Router) authed(h http.HandlerFunc) http.Handler {
	return middleware.WithAuth(middleware.RequireAuth(h))
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, map[string]any{
		"ok":      true,
		"name":    "hr-psychobot",
		"locale":  locale,
		"surveys": rt.catalog.Current().Len(),
	})
}

type chatEvent struct {
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Locale    string `json:"locale,omitempty"`
	SurveyKey string `json:"survey_key,omitempty"`
	Rating    int    `json:"rating,omitempty"`
	Username  string `json:"username,omitempty"`
}

// POST /api/chat/event: one inbound user event in, the produced messages out.
func (rt *Router) handleChatEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var ev chatEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ev.UserID == 0 {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var err error
	switch ev.Type {
	case "set_locale":
		locale := ev.Locale
		if locale == "" {
			locale = middleware.LocaleFromContext(ctx)
		}
		err = rt.bot.SetLocale(ctx, ev.UserID, locale)
	case "menu":
		err = rt.bot.ShowMenu(ctx, ev.UserID)
	case "choose":
		err = rt.bot.ChooseSurvey(ctx, ev.UserID, ev.SurveyKey)
	case "agree":
		err = rt.bot.Agree(ctx, ev.UserID)
	case "resume":
		err = rt.bot.ResumeChoice(ctx, ev.UserID)
	case "restart":
		err = rt.bot.RestartChoice(ctx, ev.UserID)
	case "answer":
		err = rt.bot.HandleAnswer(ctx, ev.UserID, ev.Rating)
	case "back":
		err = rt.bot.HandleBack(ctx, ev.UserID)
	case "share_hr":
		err = rt.bot.ShareHR(ctx, ev.UserID, ev.Username)
	default:
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"messages": rt.outbox.Drain(ev.UserID)})
}

// POST /api/admin/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username != rt.admin || bcrypt.CompareHashAndPassword(rt.adminPwd, []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := middleware.SignToken(req.Username, rt.tokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"token": token})
}

// POST /api/admin/reload rebuilds and atomically swaps the catalog.
func (rt *Router) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cat, issues, err := rt.reload()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rt.catalog.Swap(cat)
	msgs := make([]string, 0, len(issues))
	for _, is := range issues {
		msgs = append(msgs, is.String())
	}
	writeJSON(w, map[string]any{"ok": true, "surveys": cat.Len(), "issues": msgs})
}

// GET /api/admin/export returns all results as CSV.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	results, err := rt.results.ListResults(r.Context(), store.ResultFilter{
		SurveyKey: r.URL.Query().Get("survey"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := report.ResultsCSV(results)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	_, _ = w.Write(data)
}

// GET /api/admin/stats returns per-survey aggregates.
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	results, err := rt.results.ListResults(r.Context(), store.ResultFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, report.Aggregate(results))
}

// POST /api/admin/share marks a result as HR-shared.
func (rt *Router) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ResultID string `json:"result_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResultID == "" {
		http.Error(w, "result_id required", http.StatusBadRequest)
		return
	}
	if err := rt.results.MarkShared(r.Context(), req.ResultID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
