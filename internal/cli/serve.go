package cli

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/hojanyaz/hr-psychobot/internal/api"
	"github.com/hojanyaz/hr-psychobot/internal/bot"
	"github.com/hojanyaz/hr-psychobot/internal/catalog"
	"github.com/hojanyaz/hr-psychobot/internal/config"
	"github.com/hojanyaz/hr-psychobot/internal/middleware"
	"github.com/hojanyaz/hr-psychobot/internal/report"
	"github.com/hojanyaz/hr-psychobot/internal/session"
	"github.com/hojanyaz/hr-psychobot/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the survey bot server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg *config.Config) error {
	db, err := sql.Open("sqlite3", cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	sqlite, err := store.NewSQLiteStore(db)
	if err != nil {
		return err
	}

	var sessions store.SessionStore = sqlite
	if cfg.RedisURL != "" {
		client, err := store.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = store.NewRedisSessionStore(client)
		log.Printf("serve: in-flight sessions in redis")
	}

	cat, issues, err := catalog.Load(cfg.SurveyDir)
	if err != nil {
		return err
	}
	for _, is := range issues {
		log.Printf("serve: skipping survey %s", is)
	}
	log.Printf("serve: loaded %d surveys from %s", cat.Len(), cfg.SurveyDir)
	catStore := catalog.NewStore()
	catStore.Swap(cat)

	overlays, err := report.LoadOverlays(cfg.ConfigDir)
	if err != nil {
		return err
	}

	engine := session.NewEngine(catStore, sessions, sqlite, cfg.Thresholds)
	outbox := api.NewOutbox()
	botSvc := bot.NewService(engine, catStore, sqlite, outbox, overlays, cfg.AdminChatIDs)

	if cfg.AdminPassword == "" {
		return fmt.Errorf("PSYCHOBOT_ADMIN_PASSWORD is required")
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	reload := func() (*catalog.Catalog, []catalog.Issue, error) {
		return catalog.Load(cfg.SurveyDir)
	}
	mux := http.NewServeMux()
	api.NewRouter(sqlite, catStore, botSvc, outbox, reload, cfg.AdminUser, adminHash).Register(mux)

	handler := middleware.Headers(middleware.Locale(mux))
	log.Printf("psychobot listening on %s", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, handler)
}
