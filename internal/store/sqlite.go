package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS results(
  id TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  survey_key TEXT NOT NULL,
  survey_version TEXT NOT NULL DEFAULT '',
  locale TEXT NOT NULL DEFAULT 'ru',
  ts INTEGER NOT NULL,
  scores TEXT NOT NULL,
  top TEXT NOT NULL,
  validity TEXT NOT NULL,
  shared INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_results_user_ts ON results(user_id, ts DESC);

CREATE TABLE IF NOT EXISTS users(
  user_id INTEGER PRIMARY KEY,
  locale TEXT NOT NULL DEFAULT 'ru',
  role TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS inflight(
  user_id INTEGER PRIMARY KEY,
  snapshot TEXT NOT NULL
);
`

// SQLiteStore is the durable store for results, profiles and (when no redis
// is configured) in-flight session snapshots.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ SessionStore = (*SQLiteStore)(nil)
	_ ResultStore  = (*SQLiteStore)(nil)
)

// NewSQLiteStore applies the usual pragmas and ensures the schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) PutInProgress(ctx context.Context, sess *models.Session) error {
	snap, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO inflight(user_id, snapshot) VALUES(?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET snapshot = excluded.snapshot`,
		sess.UserID, string(snap))
	if err != nil {
		return fmt.Errorf("put in-progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetInProgress(ctx context.Context, userID int64) (*models.Session, error) {
	var snap string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM inflight WHERE user_id = ?`, userID).Scan(&snap)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get in-progress: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(snap), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStore) DeleteInProgress(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM inflight WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete in-progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutResult(ctx context.Context, r *models.Result) error {
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	top, err := json.Marshal(r.Top)
	if err != nil {
		return fmt.Errorf("encode top: %w", err)
	}
	validity, err := json.Marshal(r.Validity)
	if err != nil {
		return fmt.Errorf("encode validity: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results(id, user_id, survey_key, survey_version, locale, ts, scores, top, validity, shared)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.SurveyKey, r.SurveyVersion, r.Locale,
		r.Timestamp.UnixNano(),
		string(scores), string(top), string(validity), boolToInt(r.SharedWithHR))
	if err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLatestResult(ctx context.Context, userID int64) (*models.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, survey_key, survey_version, locale, ts, scores, top, validity, shared
		 FROM results WHERE user_id = ? ORDER BY ts DESC LIMIT 1`, userID)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *SQLiteStore) ListResults(ctx context.Context, f ResultFilter) ([]*models.Result, error) {
	q := `SELECT id, user_id, survey_key, survey_version, locale, ts, scores, top, validity, shared FROM results WHERE 1=1`
	args := []any{}
	if f.SurveyKey != "" {
		q += ` AND survey_key = ?`
		args = append(args, f.SurveyKey)
	}
	if f.UserID != 0 {
		q += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.SharedOnly {
		q += ` AND shared = 1`
	}
	q += ` ORDER BY ts DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []*models.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) MarkShared(ctx context.Context, resultID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE results SET shared = 1 WHERE id = ?`, resultID); err != nil {
		return fmt.Errorf("mark shared: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(user_id, locale, role) VALUES(?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   locale = CASE WHEN excluded.locale <> '' THEN excluded.locale ELSE users.locale END,
		   role   = CASE WHEN excluded.role <> '' THEN excluded.role ELSE users.role END`,
		p.UserID, p.Locale, p.Role)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRowContext(ctx, `SELECT user_id, locale, role FROM users WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Locale, &p.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*models.Result, error) {
	var (
		r        models.Result
		ts       int64
		scores   string
		top      string
		validity string
		shared   int64
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.SurveyKey, &r.SurveyVersion, &r.Locale, &ts, &scores, &top, &validity, &shared); err != nil {
		return nil, err
	}
	r.Timestamp = time.Unix(0, ts).UTC()
	if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	if err := json.Unmarshal([]byte(top), &r.Top); err != nil {
		return nil, fmt.Errorf("decode top: %w", err)
	}
	if err := json.Unmarshal([]byte(validity), &r.Validity); err != nil {
		return nil, fmt.Errorf("decode validity: %w", err)
	}
	r.SharedWithHR = shared != 0
	return &r, nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
