package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/email"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/repository"
)

func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("app_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

type fakeEntryCache struct {
	entries     map[uint][]model.Entry
	invalidated []uint
}

func newFakeEntryCache() *fakeEntryCache {
	return &fakeEntryCache{entries: make(map[uint][]model.Entry)}
}

func (c *fakeEntryCache) GetEntries(_ context.Context, userID uint) ([]model.Entry, bool, error) {
	entries, ok := c.entries[userID]
	return entries, ok, nil
}

func (c *fakeEntryCache) SetEntries(_ context.Context, userID uint, entries []model.Entry) error {
	c.entries[userID] = entries
	return nil
}

func (c *fakeEntryCache) Invalidate(_ context.Context, userID uint) error {
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func newJournalService(t *testing.T) (*JournalService, *fakeEntryCache, *gorm.DB) {
	t.Helper()

	db := newTestDB(t, &model.Entry{})
	cache := newFakeEntryCache()
	svc := NewJournalService(
		repository.NewEntryRepository(db),
		cache,
		email.NewClient(email.Config{}),
		zerolog.Nop(),
	)
	return svc, cache, db
}

func TestCreateEntryDayNumberCycles(t *testing.T) {
	svc, _, _ := newJournalService(t)
	user := &model.User{ID: 1}

	for i := 0; i < 16; i++ {
		entry, err := svc.CreateEntry(CreateEntryInput{
			User:    user,
			Content: fmt.Sprintf("day %d", i),
			Date:    time.Date(2025, time.January, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		})
		if err != nil {
			t.Fatalf("create entry %d failed: %v", i, err)
		}
		want := i%7 + 1
		if entry.DayNumber != want {
			t.Fatalf("entry %d: day number = %d, want %d", i, entry.DayNumber, want)
		}
	}
}

func TestCreateEntrySanitizesAndValidates(t *testing.T) {
	svc, _, _ := newJournalService(t)
	user := &model.User{ID: 1}

	entry, err := svc.CreateEntry(CreateEntryInput{
		User:    user,
		Title:   "<b>Morning</b>",
		Content: "<script>alert(1)</script>Slept well.",
	})
	if err != nil {
		t.Fatalf("create entry failed: %v", err)
	}
	if entry.Title != "Morning" {
		t.Fatalf("title = %q, want tags stripped", entry.Title)
	}
	if entry.Content != "alert(1)Slept well." {
		t.Fatalf("content = %q, want tags stripped", entry.Content)
	}
	if entry.Date != time.Now().UTC().Format("2006-01-02") {
		t.Fatalf("date = %q, want today's UTC date", entry.Date)
	}

	if _, err := svc.CreateEntry(CreateEntryInput{User: user, Content: "<p></p>"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("tag-only content: err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateEntry(CreateEntryInput{User: user, Content: "x", Date: "03/09/2025"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad date: err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateEntryInvalidatesCache(t *testing.T) {
	svc, cache, _ := newJournalService(t)
	user := &model.User{ID: 3}

	cache.entries[user.ID] = []model.Entry{{ID: 99}}

	if _, err := svc.CreateEntry(CreateEntryInput{User: user, Content: "fresh"}); err != nil {
		t.Fatalf("create entry failed: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != user.ID {
		t.Fatalf("cache invalidations = %v, want [3]", cache.invalidated)
	}
}

func TestListEntriesServesCacheWhenWarm(t *testing.T) {
	svc, cache, _ := newJournalService(t)

	cached := []model.Entry{{ID: 42, UserID: 5, Content: "cached"}}
	cache.entries[5] = cached

	entries, err := svc.ListEntries(5)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != 42 {
		t.Fatalf("entries = %+v, want cached copy", entries)
	}
}

func TestListEntriesNewestFirstAndWarmsCache(t *testing.T) {
	svc, cache, _ := newJournalService(t)
	user := &model.User{ID: 5}

	dates := []string{"2025-01-01", "2025-01-03", "2025-01-02"}
	for _, d := range dates {
		if _, err := svc.CreateEntry(CreateEntryInput{User: user, Content: "c", Date: d}); err != nil {
			t.Fatalf("create entry failed: %v", err)
		}
	}

	entries, err := svc.ListEntries(user.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Date != "2025-01-03" || entries[2].Date != "2025-01-01" {
		t.Fatalf("entries not newest first: %s, %s, %s", entries[0].Date, entries[1].Date, entries[2].Date)
	}
	if _, ok := cache.entries[user.ID]; !ok {
		t.Fatal("list should warm the cache")
	}
}

func TestEntryOwnershipChecks(t *testing.T) {
	svc, _, _ := newJournalService(t)

	owner := &model.User{ID: 1}
	entry, err := svc.CreateEntry(CreateEntryInput{User: owner, Content: "mine"})
	if err != nil {
		t.Fatalf("create entry failed: %v", err)
	}

	if _, err := svc.GetEntry(2, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("foreign get: err = %v, want ErrEntryNotFound", err)
	}
	if _, err := svc.UpdateEntry(2, entry.ID, "", "theirs"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("foreign update: err = %v, want ErrEntryNotFound", err)
	}
	if err := svc.DeleteEntry(2, entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("foreign delete: err = %v, want ErrEntryNotFound", err)
	}

	got, err := svc.GetEntry(owner.ID, entry.ID)
	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if got.Content != "mine" {
		t.Fatalf("content = %q, want %q", got.Content, "mine")
	}
}
