package testsupport

import (
	"context"
	"testing"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// SeedVideo stores a minimal processed video with the given id.
func SeedVideo(t testing.TB, s *store.Store, id string) *store.Video {
	t.Helper()

	video := &store.Video{
		ID:                  id,
		URL:                 "https://www.youtube.com/watch?v=" + id,
		Title:               "Seeded " + id,
		InfoQualityScore:    5,
		ViewerInterestScore: 5,
	}
	if err := s.Upsert(context.Background(), video); err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return video
}
