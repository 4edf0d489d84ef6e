package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RebotePadel/GameHome/internal/attachment"
	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository/jsonfile"
)

// =========================================================================
// TEST DOUBLES
// =========================================================================
//
// Services run against a real jsonfile.Store in t.TempDir(); the files are
// tiny and this exercises the same code paths as production. Hand-written
// fakes are only used where a failure has to be injected.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder is an events.Publisher that remembers what was published.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// fakeAttachments records calls and can be told to fail SaveFile.
type fakeAttachments struct {
	mu        sync.Mutex
	failAfter int // SaveFile fails once this many files were saved; -1 never
	saved     int
	deleted   []string
	discarded []*attachment.Upload
}

func newFakeAttachments() *fakeAttachments {
	return &fakeAttachments{failAfter: -1}
}

func (f *fakeAttachments) SaveFile(_ context.Context, up *attachment.Upload) (*model.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.saved >= f.failAfter {
		return nil, errors.New("disk full")
	}
	f.saved++
	return &model.Attachment{
		ID:       up.Filename,
		Filename: up.Filename,
		Filepath: "2024-03-09/" + up.Filename,
		Mimetype: up.Mimetype,
		Size:     up.Size,
		Type:     model.TypeFromMIME(up.Mimetype),
	}, nil
}

func (f *fakeAttachments) DeleteFiles(rels []string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rels...)
	return len(rels)
}

func (f *fakeAttachments) Discard(uploads []*attachment.Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discarded = append(f.discarded, uploads...)
}

// failingMessages wraps a real repository and fails Create.
type failingMessages struct {
	*jsonfile.Collection[model.Message]
}

func (failingMessages) Create(context.Context, *model.Message) error {
	return errors.New("write failed")
}

// =========================================================================
// FIXTURES
// =========================================================================

type fixture struct {
	store *jsonfile.Store
	pub   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := jsonfile.New(t.TempDir(), testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Seed(context.Background()))
	return &fixture{store: store, pub: &recorder{}}
}

// postMessage stores a message directly, bypassing MessageService.
func (f *fixture) postMessage(t *testing.T, content string, tags ...string) *model.Message {
	t.Helper()
	m := &model.Message{Content: content, Author: "Jean", Tags: tags}
	require.NoError(t, f.store.Messages.Create(context.Background(), m))
	return m
}

func stageUpload(t *testing.T, s *attachment.Store, name, mime, body string) *attachment.Upload {
	t.Helper()
	up, err := s.Stage(strings.NewReader(body), name, mime)
	require.NoError(t, err)
	return up
}
