// Package handler contains the HTTP handlers of the GameHome API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path values, JSON or multipart body)
//  2. Validate the body against its schema (validate tags on the request struct)
//  3. Call the service
//  4. Write the JSON response, or map the error through the Responder
//
// Handlers hold no business rules; those live in internal/service.
package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/attachment"
	"github.com/RebotePadel/GameHome/internal/service"
)

// maxFieldSize caps one text field of the message form.
const maxFieldSize = 64 << 10

// createMessageRequest is the multipart form of POST /api/messages.
type createMessageRequest struct {
	Content string   `json:"content" validate:"min=10"`
	TagIDs  []string `json:"tagIds" validate:"min=1,dive,required"`
	Author  string   `json:"author" validate:"min=1"`
}

// MessageHandler serves /api/messages.
type MessageHandler struct {
	svc    *service.MessageService
	files  *attachment.Store
	policy attachment.Policy
	rs     *Responder
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *service.MessageService, files *attachment.Store, policy attachment.Policy, rs *Responder) *MessageHandler {
	return &MessageHandler{svc: svc, files: files, policy: policy, rs: rs}
}

// HandleList serves GET /api/messages.
func (h *MessageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, messages)
}

// HandleGet serves GET /api/messages/{id}.
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, msg)
}

// HandleListByTag serves GET /api/messages/by-tag/{tagId}.
func (h *MessageHandler) HandleListByTag(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.ListByTag(r.Context(), r.PathValue("tagId"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, messages)
}

// HandleCreate serves POST /api/messages (multipart/form-data).
//
// Fields: content, author, tagIds (repeated) and up to 10 files. The body
// is read part by part: each file is checked against the upload policy
// and streamed into the temp area as it arrives, so a rejected file stops
// the request before the rest of the body is read. Anything staged before
// a failure is discarded.
func (h *MessageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		h.rs.Error(w, r, apperror.ValidationFailed("body", "expected a multipart/form-data body"))
		return
	}

	var (
		req     createMessageRequest
		uploads []*attachment.Upload
	)
	fail := func(err error) {
		h.files.Discard(uploads)
		h.rs.Error(w, r, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fail(apperror.ValidationFailed("body", "malformed multipart body"))
			return
		}

		if part.FileName() == "" {
			if err := readField(part, &req); err != nil {
				fail(err)
				return
			}
			continue
		}

		up, err := h.stage(part, len(uploads)+1)
		if err != nil {
			fail(err)
			return
		}
		uploads = append(uploads, up)
	}

	if err := h.rs.validator.Struct(&req); err != nil {
		fail(err)
		return
	}

	msg, err := h.svc.Create(r.Context(), service.CreateMessageInput{
		Content: req.Content,
		Author:  req.Author,
		TagIDs:  req.TagIDs,
	}, uploads)
	if err != nil {
		// The service has already cleaned up the uploads.
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusCreated, msg)
}

// stage checks the n-th file part against the policy and streams it to disk.
func (h *MessageHandler) stage(part *multipart.Part, n int) (*attachment.Upload, error) {
	defer part.Close()

	if name := part.FormName(); name != "files" {
		return nil, apperror.ValidationFailed("files", fmt.Sprintf("unexpected file field %q", name))
	}
	if err := h.policy.CheckCount(n); err != nil {
		return nil, err
	}
	mimetype := part.Header.Get("Content-Type")
	if err := h.policy.CheckType(part.FileName(), mimetype); err != nil {
		return nil, err
	}

	up, err := h.files.Stage(part, part.FileName(), mimetype)
	if err != nil {
		return nil, err
	}
	h.rs.logger.Debug("upload staged",
		slog.String("filename", up.Filename),
		slog.Int64("size", up.Size),
	)
	return up, nil
}

// readField copies one text part into req. Unknown fields are ignored.
func readField(part *multipart.Part, req *createMessageRequest) error {
	defer part.Close()

	b, err := io.ReadAll(io.LimitReader(part, maxFieldSize+1))
	if err != nil {
		return apperror.ValidationFailed("body", "malformed multipart body")
	}
	if len(b) > maxFieldSize {
		return apperror.TooLarge(part.FormName(), fmt.Sprintf("field %s is too large", part.FormName()))
	}

	value := string(b)
	switch part.FormName() {
	case "content":
		req.Content = value
	case "author":
		req.Author = value
	case "tagIds", "tagIds[]":
		req.TagIDs = append(req.TagIDs, value)
	}
	return nil
}

// HandleDelete serves DELETE /api/messages/{id}.
func (h *MessageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}
