package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// MemoryStore keeps sessions, results and profiles in process memory. It
// backs tests and redis-less single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	inflight map[int64]*models.Session
	results  []*models.Result
	profiles map[int64]*models.UserProfile
}

var (
	_ SessionStore = (*MemoryStore)(nil)
	_ ResultStore  = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inflight: map[int64]*models.Session{},
		profiles: map[int64]*models.UserProfile{},
	}
}

func (m *MemoryStore) PutInProgress(ctx context.Context, s *models.Session) error {
	snap, err := cloneSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight[s.UserID] = snap
	return nil
}

func (m *MemoryStore) GetInProgress(ctx context.Context, userID int64) (*models.Session, error) {
	m.mu.RLock()
	snap := m.inflight[userID]
	m.mu.RUnlock()
	if snap == nil {
		return nil, nil
	}
	return cloneSession(snap)
}

func (m *MemoryStore) DeleteInProgress(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, userID)
	return nil
}

func (m *MemoryStore) PutResult(ctx context.Context, r *models.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.results = append(m.results, &cp)
	return nil
}

func (m *MemoryStore) GetLatestResult(ctx context.Context, userID int64) (*models.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *models.Result
	for _, r := range m.results {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryStore) ListResults(ctx context.Context, f ResultFilter) ([]*models.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Result, 0, len(m.results))
	for _, r := range m.results {
		if f.SurveyKey != "" && r.SurveyKey != f.SurveyKey {
			continue
		}
		if f.UserID != 0 && r.UserID != f.UserID {
			continue
		}
		if f.SharedOnly && !r.SharedWithHR {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *MemoryStore) MarkShared(ctx context.Context, resultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.ID == resultID {
			r.SharedWithHR = true
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if prev := m.profiles[p.UserID]; prev != nil {
		if cp.Locale == "" {
			cp.Locale = prev.Locale
		}
		if cp.Role == "" {
			cp.Role = prev.Role
		}
	}
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := m.profiles[userID]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// cloneSession round-trips through JSON so snapshots carry no aliasing to
// live state and behave exactly like the durable encodings.
func cloneSession(s *models.Session) (*models.Session, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out models.Session
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
