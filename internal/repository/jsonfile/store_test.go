package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/model"
)

// stepClock returns a time one second later on every call so that
// createdAt/updatedAt changes are observable.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := newStore(t.TempDir(), logger, clock.now)
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	return s
}

func createTestMessage(t *testing.T, s *Store, content string) *model.Message {
	t.Helper()
	m := &model.Message{Content: content, Tags: []string{"tag-1"}, Author: "Jean"}
	if err := s.Messages.Create(context.Background(), m); err != nil {
		t.Fatalf("failed to create test message: %v", err)
	}
	return m
}

// =========================================================================
// BOOTSTRAP
// =========================================================================

func TestList_CreatesMissingFile(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.Messages.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("List() returned %d messages, want 0", len(msgs))
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), messagesFile))
	if err != nil {
		t.Fatalf("messages.json not created: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("messages.json = %q, want %q", data, "[]")
	}
}

func TestList_CorruptFileIsQuarantined(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), tagsFile)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	tags, err := s.Tags.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("List() returned %d tags, want 0", len(tags))
	}

	moved, err := os.ReadFile(path + ".corrupt")
	if err != nil {
		t.Fatalf("corrupt file not kept aside: %v", err)
	}
	if string(moved) != "{not json" {
		t.Errorf("quarantined content = %q", moved)
	}
}

func TestList_NormalizesNullSlices(t *testing.T) {
	s := newTestStore(t)
	raw := `[{"id":"m1","content":"hello world!","tags":["t"],"attachments":null,"author":"a","likes":null,"comments":null}]`
	if err := os.WriteFile(filepath.Join(s.Dir(), messagesFile), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.Messages.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if msgs[0].Likes == nil || msgs[0].Comments == nil || msgs[0].Attachments == nil {
		t.Errorf("slices not normalized: %+v", msgs[0])
	}
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	s := newTestStore(t)
	m := createTestMessage(t, s, "first message")

	if m.ID == "" {
		t.Error("Create() did not set ID")
	}
	if m.CreatedAt.IsZero() || !m.CreatedAt.Equal(m.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want equal and non-zero", m.CreatedAt, m.UpdatedAt)
	}
	if m.Likes == nil || m.Comments == nil || m.Attachments == nil {
		t.Error("Create() did not normalize slices")
	}
}

func TestCreate_MessagesArePrepended(t *testing.T) {
	s := newTestStore(t)
	first := createTestMessage(t, s, "first message")
	second := createTestMessage(t, s, "second message")

	msgs, err := s.Messages.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].ID != second.ID || msgs[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first [%s %s]", msgs[0].ID, msgs[1].ID, second.ID, first.ID)
	}
}

func TestCreate_TagsAreAppended(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta"} {
		if err := s.Tags.Create(ctx, &model.Tag{Name: name, Color: "#000000"}); err != nil {
			t.Fatal(err)
		}
	}

	tags, _ := s.Tags.List(ctx)
	if tags[0].Name != "alpha" || tags[1].Name != "beta" {
		t.Errorf("tags = %v, want insertion order", tags)
	}
}

func TestCreate_KeepsGivenID(t *testing.T) {
	s := newTestStore(t)
	p := &model.Prenom{ID: "prenom-x", Name: "Zoé", Active: true}
	if err := s.Prenoms.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if p.ID != "prenom-x" {
		t.Errorf("ID = %q, want preset id kept", p.ID)
	}
}

// =========================================================================
// GET / UPDATE / DELETE
// =========================================================================

func TestGetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Messages.GetByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_StampsUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	m := createTestMessage(t, s, "to be edited")

	updated, err := s.Messages.Update(context.Background(), m.ID, func(msg *model.Message) error {
		msg.Content = "edited content"
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "edited content" {
		t.Errorf("Content = %q", updated.Content)
	}
	if !updated.UpdatedAt.After(m.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, m.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(m.CreatedAt) {
		t.Error("CreatedAt changed on update")
	}

	stored, _ := s.Messages.GetByID(context.Background(), m.ID)
	if stored.Content != "edited content" {
		t.Error("update not persisted")
	}
}

func TestUpdate_MutateErrorWritesNothing(t *testing.T) {
	s := newTestStore(t)
	m := createTestMessage(t, s, "unchanged content")
	boom := errors.New("boom")

	_, err := s.Messages.Update(context.Background(), m.ID, func(msg *model.Message) error {
		msg.Content = "should not stick"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}

	stored, _ := s.Messages.GetByID(context.Background(), m.ID)
	if stored.Content != "unchanged content" {
		t.Errorf("Content = %q, want original", stored.Content)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Tags.Update(context.Background(), "missing", func(*model.Tag) error { return nil })
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	m := createTestMessage(t, s, "short lived message")

	if err := s.Messages.Delete(context.Background(), m.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Messages.GetByID(context.Background(), m.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
	if err := s.Messages.Delete(context.Background(), m.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second delete: error = %v, want ErrNotFound", err)
	}
}

func TestReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestMessage(t, s, "will be replaced")

	if err := s.Messages.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	msgs, _ := s.Messages.List(ctx)
	if len(msgs) != 0 {
		t.Errorf("len = %d, want 0", len(msgs))
	}
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Messages.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}

// =========================================================================
// CONCURRENCY
// =========================================================================

// Every goroutine appends one like through Update. With the collection lock
// no write is lost.
func TestUpdate_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	s := newTestStore(t)
	m := createTestMessage(t, s, "popular message")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Messages.Update(context.Background(), m.ID, func(msg *model.Message) error {
				msg.Likes = append(msg.Likes, model.Like{ID: fmt.Sprintf("l%d", i), PrenomID: fmt.Sprintf("p%d", i)})
				return nil
			})
			if err != nil {
				t.Errorf("Update() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	stored, _ := s.Messages.GetByID(context.Background(), m.ID)
	if len(stored.Likes) != writers {
		t.Errorf("likes = %d, want %d", len(stored.Likes), writers)
	}
}

// =========================================================================
// CONFIG & SEED
// =========================================================================

func TestGetConfig_Default(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if cfg.PublishPassword != model.PlaceholderPasswordHash {
		t.Errorf("PublishPassword = %q, want placeholder", cfg.PublishPassword)
	}
	if cfg.AppName != "GameHome" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), configFile)); err != nil {
		t.Errorf("config.json not created: %v", err)
	}
}

func TestSaveConfig(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg, _ := s.GetConfig(ctx)
	cfg.PublishPassword = "$2a$04$something"
	if err := s.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, _ := s.GetConfig(ctx)
	if got.PublishPassword != "$2a$04$something" {
		t.Errorf("PublishPassword = %q", got.PublishPassword)
	}
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	tags, _ := s.Tags.List(ctx)
	if len(tags) != 4 {
		t.Fatalf("tags = %d, want 4", len(tags))
	}
	for i, tag := range tags {
		if tag.Order != i {
			t.Errorf("tags[%d].Order = %d", i, tag.Order)
		}
	}
	prenoms, _ := s.Prenoms.List(ctx)
	if len(prenoms) != 3 || !prenoms[0].Active {
		t.Errorf("prenoms = %+v, want 3 active", prenoms)
	}

	// Second run leaves existing data alone.
	if err := s.Tags.Delete(ctx, "tag-4"); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	tags, _ = s.Tags.List(ctx)
	if len(tags) != 3 {
		t.Errorf("tags after reseed = %d, want 3", len(tags))
	}
}
