package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/RebotePadel/GameHome/internal/attachment"
	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository"
)

// CreateMessageInput is a validated message body.
type CreateMessageInput struct {
	Content string
	Author  string
	TagIDs  []string
}

// MessageService handles posting and removing messages.
type MessageService struct {
	repo        repository.MessageRepository
	attachments AttachmentStore
	events      events.Publisher
	logger      *slog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(repo repository.MessageRepository, attachments AttachmentStore, pub events.Publisher, logger *slog.Logger) *MessageService {
	return &MessageService{
		repo:        repo,
		attachments: attachments,
		events:      pub,
		logger:      logger,
	}
}

// List returns every message, newest first.
func (s *MessageService) List(ctx context.Context) ([]model.Message, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

// Get returns one message or apperror.ErrNotFound.
func (s *MessageService) Get(ctx context.Context, id string) (*model.Message, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByTag returns the messages carrying tagID. An unknown tag simply
// matches nothing.
func (s *MessageService) ListByTag(ctx context.Context, tagID string) ([]model.Message, error) {
	messages, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(messages, func(m model.Message) bool {
		return !m.HasTag(tagID)
	}), nil
}

// Create moves the staged uploads into permanent storage and prepends the
// new message.
//
// Tag ids are stored as given; they are not checked against the tag
// collection.
//
// If anything fails, files already moved are deleted and the remaining
// staged uploads are discarded, so a failed post leaves nothing behind.
func (s *MessageService) Create(ctx context.Context, in CreateMessageInput, uploads []*attachment.Upload) (*model.Message, error) {
	saved := make([]model.Attachment, 0, len(uploads))
	rollback := func(pending []*attachment.Upload) {
		s.attachments.Discard(pending)
		if len(saved) > 0 {
			paths := make([]string, len(saved))
			for i, a := range saved {
				paths[i] = a.Filepath
			}
			s.attachments.DeleteFiles(paths)
		}
	}

	for i, up := range uploads {
		att, err := s.attachments.SaveFile(ctx, up)
		if err != nil {
			rollback(uploads[i:])
			s.logger.Error("failed to save attachment",
				slog.String("filename", up.Filename),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("saving attachment %s: %w", up.Filename, err)
		}
		saved = append(saved, *att)
	}

	msg := &model.Message{
		Content:     in.Content,
		Author:      in.Author,
		Tags:        slices.Clone(in.TagIDs),
		Attachments: saved,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		rollback(nil)
		s.logger.Error("failed to create message", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating message: %w", err)
	}

	s.logger.Info("message created",
		slog.String("id", msg.ID),
		slog.String("author", msg.Author),
		slog.Int("attachments", len(msg.Attachments)),
	)
	s.events.Publish(events.Event{Type: events.MessageCreated, ID: msg.ID})

	return msg, nil
}

// Delete removes a message and, best-effort, its attachment files. Files
// that cannot be removed are logged and do not fail the request.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if paths := msg.AttachmentPaths(); len(paths) > 0 {
		removed := s.attachments.DeleteFiles(paths)
		if removed < len(paths) {
			s.logger.Warn("some attachment files were not removed",
				slog.String("message_id", id),
				slog.Int("expected", len(paths)),
				slog.Int("removed", removed),
			)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting message %s: %w", id, err)
	}

	s.logger.Info("message deleted", slog.String("id", id))
	s.events.Publish(events.Event{Type: events.MessageDeleted, ID: id})
	return nil
}
