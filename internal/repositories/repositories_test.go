package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTrack(id, title, status string) models.Track {
	return models.Track{
		ID:       id,
		Title:    title,
		Artist:   "Artist",
		AudioURL: "https://cdn.example.com/" + id + ".mp3",
		Duration: 180,
		Status:   status,
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "tracks")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for missing sequence table")
	}
}

func TestTrackRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		track := models.NewPersistedTrack(0, sampleTrack("cat-1", "Song", models.StatusLive))

		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}
		if track.ID() == "" {
			t.Error("track ID should be set after creation")
		}
		if track.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", track.Sequence())
		}

		retrieved, err := repo.Get(track.ID())
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if retrieved.Track() != track.Track() {
			t.Errorf("expected %+v, got %+v", track.Track(), retrieved.Track())
		}
	})

	t.Run("Create Rejects Invalid Track", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		if err := repo.Create(models.NewPersistedTrack(0, models.Track{ID: "x"})); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("GetByCatalogID Not Found", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		_, err := repo.GetByCatalogID("nope")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		track := models.NewPersistedTrack(0, sampleTrack("cat-1", "Song", models.StatusReady))
		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		updated := track.Track()
		updated.Title = "Renamed"
		updated.Explicit = true
		track.SetTrack(updated)
		if err := repo.Update(track); err != nil {
			t.Fatalf("failed to update track: %v", err)
		}

		retrieved, err := repo.GetByCatalogID("cat-1")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if retrieved.Track().Title != "Renamed" || !retrieved.Track().Explicit {
			t.Errorf("expected updated fields, got %+v", retrieved.Track())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		track := models.NewPersistedTrack(0, sampleTrack("cat-1", "Song", models.StatusLive))
		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		if err := repo.Delete(track.ID()); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}
		if _, err := repo.Get(track.ID()); err == nil {
			t.Error("expected error when getting deleted track")
		}
		if err := repo.Delete(track.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("List With Criteria", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		for _, tr := range []models.Track{
			sampleTrack("a", "A", models.StatusLive),
			sampleTrack("b", "B", models.StatusReady),
			sampleTrack("c", "C", "draft"),
		} {
			if err := repo.Create(models.NewPersistedTrack(0, tr)); err != nil {
				t.Fatalf("failed to create track: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(all))
		}

		live, err := repo.List(map[string]any{"status": models.StatusLive})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(live) != 1 || live[0].CatalogID() != "a" {
			t.Errorf("expected only track a, got %d tracks", len(live))
		}

		playable, err := repo.List(map[string]any{"status": []string{models.StatusReady, models.StatusLive}})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(playable) != 2 {
			t.Errorf("expected 2 playable tracks, got %d", len(playable))
		}
	})

	t.Run("GetTracks Preserves Order And Skips Unknown", func(t *testing.T) {
		repo := NewTrackRepository(setupTestDB(t))
		for _, id := range []string{"a", "b", "c"} {
			if err := repo.Create(models.NewPersistedTrack(0, sampleTrack(id, id, models.StatusLive))); err != nil {
				t.Fatalf("failed to create track: %v", err)
			}
		}

		tracks, err := repo.GetTracks(context.Background(), []string{"c", "missing", "a"})
		if err != nil {
			t.Fatalf("failed to resolve tracks: %v", err)
		}
		if len(tracks) != 2 || tracks[0].ID != "c" || tracks[1].ID != "a" {
			t.Errorf("expected [c a], got %+v", tracks)
		}
	})
}

func TestTrackCacheAdapter(t *testing.T) {
	repo := NewTrackRepository(setupTestDB(t))
	cache := NewTrackCacheAdapter(repo)

	inserted, err := cache.CacheTrack(sampleTrack("cat-1", "Song", models.StatusReady))
	if err != nil {
		t.Fatalf("failed to cache track: %v", err)
	}
	if !inserted {
		t.Error("expected first cache to insert")
	}

	inserted, err = cache.CacheTrack(sampleTrack("cat-1", "Song (Remaster)", models.StatusLive))
	if err != nil {
		t.Fatalf("failed to refresh track: %v", err)
	}
	if inserted {
		t.Error("expected second cache to refresh")
	}

	tracks, err := repo.List(nil)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected a single cached row, got %d", len(tracks))
	}
	if tracks[0].Track().Title != "Song (Remaster)" || tracks[0].Track().Status != models.StatusLive {
		t.Errorf("expected refreshed metadata, got %+v", tracks[0].Track())
	}
}

func TestLikeRepository(t *testing.T) {
	t.Run("Toggle On And Off", func(t *testing.T) {
		repo := NewLikeRepository(setupTestDB(t))

		liked, err := repo.Toggle("a")
		if err != nil {
			t.Fatalf("failed to toggle: %v", err)
		}
		if !liked {
			t.Error("expected track to be liked")
		}

		liked, err = repo.Toggle("a")
		if err != nil {
			t.Fatalf("failed to toggle: %v", err)
		}
		if liked {
			t.Error("expected track to be unliked")
		}

		likes, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if len(likes) != 0 {
			t.Errorf("expected empty set, got %v", likes)
		}
	})

	t.Run("Load Survives Reopen Of Repository", func(t *testing.T) {
		db := setupTestDB(t)
		for _, id := range []string{"b", "a", "c"} {
			if _, err := NewLikeRepository(db).Toggle(id); err != nil {
				t.Fatalf("failed to toggle: %v", err)
			}
		}

		ids, err := NewLikeRepository(db).List()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
			t.Errorf("expected sorted [a b c], got %v", ids)
		}
	})

	t.Run("Toggle Keeps Other Likes And Their Timestamps", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLikeRepository(db)
		if _, err := repo.Toggle("a"); err != nil {
			t.Fatal(err)
		}
		var before time.Time
		if err := db.QueryRow(`SELECT created_at FROM likes WHERE track_id = 'a'`).Scan(&before); err != nil {
			t.Fatal(err)
		}

		time.Sleep(5 * time.Millisecond)
		for _, id := range []string{"b", "c", "b"} {
			if _, err := repo.Toggle(id); err != nil {
				t.Fatal(err)
			}
		}

		var after time.Time
		if err := db.QueryRow(`SELECT created_at FROM likes WHERE track_id = 'a'`).Scan(&after); err != nil {
			t.Fatal(err)
		}
		if !after.Equal(before) {
			t.Errorf("created_at of a changed from %v to %v", before, after)
		}
		ids, err := repo.List()
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(ids, ",") != "a,c" {
			t.Errorf("expected [a c], got %v", ids)
		}
	})

	t.Run("Concurrent Toggles Are Not Lost", func(t *testing.T) {
		db := setupTestDB(t)
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := NewLikeRepository(db).Toggle(fmt.Sprintf("t%02d", i)); err != nil {
					t.Errorf("toggle: %v", err)
				}
			}()
		}
		wg.Wait()

		likes, err := NewLikeRepository(db).Load()
		if err != nil {
			t.Fatal(err)
		}
		if len(likes) != 20 {
			t.Errorf("expected 20 likes, got %d", len(likes))
		}
	})

	t.Run("Toggle Requires ID", func(t *testing.T) {
		repo := NewLikeRepository(setupTestDB(t))
		if _, err := repo.Toggle(""); err == nil {
			t.Error("expected error for empty id")
		}
	})
}

func TestPurchaseRepository(t *testing.T) {
	t.Run("Record Is Idempotent", func(t *testing.T) {
		repo := NewPurchaseRepository(setupTestDB(t))

		first := models.NewPurchase(0, models.ProviderStripe, "cs_123", "GBP", 99, models.PurchasePending)
		if err := repo.Record(first); err != nil {
			t.Fatalf("failed to record: %v", err)
		}

		second := models.NewPurchase(0, models.ProviderStripe, "cs_123", "GBP", 99, models.PurchaseCompleted)
		if err := repo.Record(second); err != nil {
			t.Fatalf("failed to record again: %v", err)
		}

		if second.ID() != first.ID() {
			t.Errorf("expected same row id, got %s and %s", first.ID(), second.ID())
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 1 || all[0].Status() != models.PurchaseCompleted {
			t.Errorf("expected one completed purchase, got %d", len(all))
		}
	})

	t.Run("Completed Is Terminal", func(t *testing.T) {
		repo := NewPurchaseRepository(setupTestDB(t))
		for _, status := range []string{models.PurchasePending, models.PurchaseCompleted, models.PurchasePending, models.PurchaseFailed} {
			p := models.NewPurchase(0, models.ProviderStripe, "cs_9", "GBP", 99, status)
			if err := repo.Record(p); err != nil {
				t.Fatalf("failed to record %s: %v", status, err)
			}
		}

		got, err := repo.GetByExternalID(models.ProviderStripe, "cs_9")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status() != models.PurchaseCompleted {
			t.Errorf("expected completed to survive later events, got %s", got.Status())
		}
	})

	t.Run("Pending Can Fail", func(t *testing.T) {
		repo := NewPurchaseRepository(setupTestDB(t))
		for _, status := range []string{models.PurchasePending, models.PurchaseFailed} {
			if err := repo.Record(models.NewPurchase(0, models.ProviderPayPal, "ORDER-9", "EUR", 119, status)); err != nil {
				t.Fatal(err)
			}
		}
		got, err := repo.GetByExternalID(models.ProviderPayPal, "ORDER-9")
		if err != nil {
			t.Fatal(err)
		}
		if got.Status() != models.PurchaseFailed {
			t.Errorf("expected failed, got %s", got.Status())
		}
	})

	t.Run("List By Provider", func(t *testing.T) {
		repo := NewPurchaseRepository(setupTestDB(t))
		for _, p := range []*models.Purchase{
			models.NewPurchase(0, models.ProviderStripe, "cs_1", "USD", 129, models.PurchaseCompleted),
			models.NewPurchase(0, models.ProviderPayPal, "ORDER-1", "EUR", 119, models.PurchaseCompleted),
		} {
			if err := repo.Create(p); err != nil {
				t.Fatalf("failed to create: %v", err)
			}
		}

		paypal, err := repo.List(map[string]any{"provider": models.ProviderPayPal})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(paypal) != 1 || paypal[0].Currency() != "EUR" {
			t.Errorf("expected one EUR paypal purchase, got %d", len(paypal))
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewPurchaseRepository(setupTestDB(t))
		if _, err := repo.Get("missing"); !errors.Is(err, ErrPurchaseNotFound) {
			t.Errorf("expected ErrPurchaseNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewPurchaseRepository(setupTestDB(t))
		p := models.NewPurchase(0, models.ProviderStripe, "cs_1", "USD", 129, models.PurchasePending)
		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := repo.Delete(p.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete(p.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})
}
