package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RebotePadel/GameHome/internal/attachment"
	"github.com/RebotePadel/GameHome/internal/auth"
	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/handler"
	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository/jsonfile"
	"github.com/RebotePadel/GameHome/internal/service"
	"github.com/RebotePadel/GameHome/internal/validate"
)

// =========================================================================
// TEST ENVIRONMENT
// =========================================================================

type env struct {
	router *chi.Mux
	store  *jsonfile.Store
	files  *attachment.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	store, err := jsonfile.New(t.TempDir(), logger)
	require.NoError(t, err)
	require.NoError(t, store.Seed(ctx))

	files, err := attachment.NewStore(t.TempDir(), logger)
	require.NoError(t, err)

	gate := auth.NewGate(store, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger)
	_, err = gate.Initialize(ctx)
	require.NoError(t, err)

	pub := events.Nop{}
	rs := handler.NewResponder(logger, validate.New(), false)

	messages := handler.NewMessageHandler(
		service.NewMessageService(store.Messages, files, pub, logger), files, attachment.DefaultPolicy(), rs)
	tags := handler.NewTagHandler(service.NewTagService(store.Tags, store.Messages, pub, logger), rs)
	prenoms := handler.NewPrenomHandler(service.NewPrenomService(store.Prenoms, pub, logger), rs)
	likes := handler.NewLikeHandler(service.NewLikeService(store.Messages, store.Prenoms, pub, logger), rs)
	comments := handler.NewCommentHandler(service.NewCommentService(store.Messages, store.Prenoms, pub, logger), rs)
	authH := handler.NewAuthHandler(gate, rs)
	gated := auth.RequirePublishSecret(gate)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/messages", messages.HandleList)
		r.Get("/messages/by-tag/{tagId}", messages.HandleListByTag)
		r.Get("/messages/{id}", messages.HandleGet)
		r.With(gated).Post("/messages", messages.HandleCreate)
		r.With(gated).Delete("/messages/{id}", messages.HandleDelete)

		r.Get("/tags", tags.HandleList)
		r.Post("/tags", tags.HandleCreate)
		r.Post("/tags/reorder", tags.HandleReorder)
		r.Get("/tags/{id}", tags.HandleGet)
		r.Put("/tags/{id}", tags.HandleUpdate)
		r.Delete("/tags/{id}", tags.HandleDelete)

		r.Get("/prenoms", prenoms.HandleList)
		r.Get("/prenoms/active", prenoms.HandleListActive)
		r.Post("/prenoms", prenoms.HandleCreate)
		r.Get("/prenoms/{id}", prenoms.HandleGet)
		r.Put("/prenoms/{id}", prenoms.HandleUpdate)
		r.Delete("/prenoms/{id}", prenoms.HandleDelete)

		r.Post("/likes", likes.HandleCreate)
		r.Post("/likes/bulk", likes.HandleBulk)
		r.Delete("/likes/{messageId}/{prenomId}", likes.HandleDelete)

		r.Post("/comments", comments.HandleCreate)
		r.Get("/comments/{messageId}", comments.HandleList)
		r.Delete("/comments/{messageId}/{commentId}", comments.HandleDelete)

		r.Post("/auth/verify", authH.HandleVerify)
	})

	return &env{router: r, store: store, files: files}
}

func (e *env) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) doJSON(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptestJSON(method, target, body))
}

func httptestJSON(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *env) tempFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.files.Root(), "temp"))
	require.NoError(t, err)
	return entries
}

func (e *env) seedMessage(t *testing.T, tags ...string) *model.Message {
	t.Helper()
	m := &model.Message{Content: "message de test assez long", Author: "Jean", Tags: tags}
	require.NoError(t, e.store.Messages.Create(context.Background(), m))
	return m
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// =========================================================================
// MULTIPART BUILDER
// =========================================================================

type filePart struct {
	name, mime, body string
}

func multipartRequest(t *testing.T, fields map[string][]string, files []filePart, password string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		h.Set("Content-Type", f.mime)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(w, f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/messages", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if password != "" {
		req.Header.Set(auth.HeaderPublishPassword, password)
	}
	return req
}

func validFields() map[string][]string {
	return map[string][]string{
		"content": {"Porte du local technique restée ouverte"},
		"author":  {"Marie"},
		"tagIds":  {"tag-1", "tag-2"},
	}
}
