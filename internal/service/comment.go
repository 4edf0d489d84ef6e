package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository"
)

// CommentService adds and removes comments. Comments cannot be edited.
type CommentService struct {
	messages repository.MessageRepository
	prenoms  repository.PrenomRepository
	events   events.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewCommentService(messages repository.MessageRepository, prenoms repository.PrenomRepository, pub events.Publisher, logger *slog.Logger) *CommentService {
	return &CommentService{
		messages: messages,
		prenoms:  prenoms,
		events:   pub,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the comments of one message in posting order.
func (s *CommentService) List(ctx context.Context, messageID string) ([]model.Comment, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return m.Comments, nil
}

// Create appends a comment by prenomID under messageID.
func (s *CommentService) Create(ctx context.Context, messageID, prenomID, content string) (*model.Comment, error) {
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content must not be empty")
	}
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return nil, err
	}
	if _, err := s.prenoms.GetByID(ctx, prenomID); err != nil {
		return nil, err
	}

	c := model.Comment{
		ID:        xid.New().String(),
		MessageID: messageID,
		PrenomID:  prenomID,
		Content:   content,
		CreatedAt: s.now(),
	}
	_, err := s.messages.Update(ctx, messageID, func(m *model.Message) error {
		m.Comments = append(m.Comments, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added", slog.String("id", c.ID), slog.String("message_id", messageID))
	s.events.Publish(events.Event{Type: events.CommentAdded, ID: c.ID, MessageID: messageID})
	return &c, nil
}

// Delete removes commentID from messageID.
func (s *CommentService) Delete(ctx context.Context, messageID, commentID string) error {
	_, err := s.messages.Update(ctx, messageID, func(m *model.Message) error {
		for i, c := range m.Comments {
			if c.ID == commentID {
				m.Comments = append(m.Comments[:i], m.Comments[i+1:]...)
				return nil
			}
		}
		return apperror.NotFound("comment", commentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment deleted", slog.String("id", commentID), slog.String("message_id", messageID))
	s.events.Publish(events.Event{Type: events.CommentDeleted, ID: commentID, MessageID: messageID})
	return nil
}
