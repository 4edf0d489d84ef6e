// Package service contains the business rules of the board.
//
// THE LAYERS:
//
//	Handler (HTTP layer)     → parses requests, validates the body schema
//	Service (business layer) → cross-entity checks, cascades, events
//	Repository (data layer)  → JSON files on disk
//
// Services never see an *http.Request. They take plain values and return
// apperror values, which the handler package maps to status codes.
//
// Every service depends on repository interfaces, not on jsonfile directly,
// so tests can substitute a failing repository where a real one on a temp
// dir is not enough.
//
// After each successful write a service publishes an events.Event so other
// open tabs can refresh. Publishing never blocks the request.
package service

import (
	"context"

	"github.com/RebotePadel/GameHome/internal/attachment"
	"github.com/RebotePadel/GameHome/internal/model"
)

// AttachmentStore is the part of attachment.Store the services use.
type AttachmentStore interface {
	SaveFile(ctx context.Context, up *attachment.Upload) (*model.Attachment, error)
	DeleteFiles(rels []string) int
	Discard(uploads []*attachment.Upload)
}

var _ AttachmentStore = (*attachment.Store)(nil)
