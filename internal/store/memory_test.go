package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

func TestMemoryStoreSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	s := &models.Session{
		UserID:    7,
		SurveyKey: "motivation",
		Locale:    "uz",
		Order:     []int{2, 0, 1},
		Answers:   []int{4, 1},
		Position:  2,
		StartedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := m.PutInProgress(ctx, s); err != nil {
		t.Fatalf("PutInProgress: %v", err)
	}

	// Mutating the original must not leak into the snapshot.
	s.Answers[0] = 99

	got, err := m.GetInProgress(ctx, 7)
	if err != nil {
		t.Fatalf("GetInProgress: %v", err)
	}
	if got == nil || got.Answers[0] != 4 || got.Position != 2 || !got.StartedAt.Equal(s.StartedAt) {
		t.Fatalf("snapshot = %+v", got)
	}
	if !reflect.DeepEqual(got.Order, []int{2, 0, 1}) {
		t.Fatalf("order = %v", got.Order)
	}

	if err := m.DeleteInProgress(ctx, 7); err != nil {
		t.Fatalf("DeleteInProgress: %v", err)
	}
	got, err = m.GetInProgress(ctx, 7)
	if err != nil || got != nil {
		t.Fatalf("after delete: %v, %v", got, err)
	}
}

func TestMemoryStoreResults(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	put := func(id string, uid int64, survey string, ts time.Time) {
		if err := m.PutResult(ctx, &models.Result{ID: id, UserID: uid, SurveyKey: survey, Timestamp: ts}); err != nil {
			t.Fatalf("PutResult: %v", err)
		}
	}
	put("r1", 1, "motivation", t0)
	put("r2", 1, "motivation", t0.Add(time.Hour))
	put("r3", 2, "stress", t0.Add(2*time.Hour))

	latest, err := m.GetLatestResult(ctx, 1)
	if err != nil || latest == nil || latest.ID != "r2" {
		t.Fatalf("latest = %+v, %v", latest, err)
	}

	all, err := m.ListResults(ctx, ResultFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %d, %v", len(all), err)
	}
	if all[0].ID != "r3" {
		t.Fatalf("not sorted newest first: %s", all[0].ID)
	}

	byKey, _ := m.ListResults(ctx, ResultFilter{SurveyKey: "stress"})
	if len(byKey) != 1 || byKey[0].ID != "r3" {
		t.Fatalf("filter by survey: %+v", byKey)
	}

	if err := m.MarkShared(ctx, "r2"); err != nil {
		t.Fatalf("MarkShared: %v", err)
	}
	shared, _ := m.ListResults(ctx, ResultFilter{SharedOnly: true})
	if len(shared) != 1 || shared[0].ID != "r2" {
		t.Fatalf("shared filter: %+v", shared)
	}
}

func TestMemoryStoreProfileUpsert(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.UpsertProfile(ctx, &models.UserProfile{UserID: 5, Locale: "uz", Role: "sales"}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	// A partial update keeps the fields it does not set.
	if err := m.UpsertProfile(ctx, &models.UserProfile{UserID: 5, Locale: "ru"}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	p, err := m.GetProfile(ctx, 5)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Locale != "ru" || p.Role != "sales" {
		t.Fatalf("profile = %+v", p)
	}

	none, err := m.GetProfile(ctx, 6)
	if err != nil || none != nil {
		t.Fatalf("missing profile: %v, %v", none, err)
	}
}
