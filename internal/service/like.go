package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository"
)

// Reasons reported per message by BulkLike.
const (
	ReasonMessageNotFound = "message not found"
	ReasonAlreadyLiked    = "already liked"
)

// BulkLikeResult is the outcome for one message of a bulk like.
type BulkLikeResult struct {
	MessageID string      `json:"messageId"`
	Success   bool        `json:"success"`
	Reason    string      `json:"reason,omitempty"`
	Like      *model.Like `json:"like,omitempty"`
}

// LikeService adds and removes likes. Likes live inside their message
// record; at most one like per (message, prénom).
type LikeService struct {
	messages repository.MessageRepository
	prenoms  repository.PrenomRepository
	events   events.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewLikeService(messages repository.MessageRepository, prenoms repository.PrenomRepository, pub events.Publisher, logger *slog.Logger) *LikeService {
	return &LikeService{
		messages: messages,
		prenoms:  prenoms,
		events:   pub,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *LikeService) newLike(messageID, prenomID string) model.Like {
	return model.Like{
		ID:        xid.New().String(),
		PrenomID:  prenomID,
		MessageID: messageID,
		CreatedAt: s.now(),
	}
}

func errAlreadyLiked() error {
	return apperror.Conflict(ReasonAlreadyLiked, "this prénom already liked this message")
}

// Create records that prenomID likes messageID.
func (s *LikeService) Create(ctx context.Context, messageID, prenomID string) (*model.Like, error) {
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return nil, err
	}
	if _, err := s.prenoms.GetByID(ctx, prenomID); err != nil {
		return nil, err
	}

	like := s.newLike(messageID, prenomID)
	_, err := s.messages.Update(ctx, messageID, func(m *model.Message) error {
		// Checked under the collection lock so two concurrent likes from the
		// same prénom cannot both succeed.
		if m.LikedBy(prenomID) {
			return errAlreadyLiked()
		}
		m.Likes = append(m.Likes, like)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("like added", slog.String("message_id", messageID), slog.String("prenom_id", prenomID))
	s.events.Publish(events.Event{Type: events.LikeAdded, ID: like.ID, MessageID: messageID})
	return &like, nil
}

// Delete removes prenomID's like from messageID.
func (s *LikeService) Delete(ctx context.Context, messageID, prenomID string) error {
	var removed model.Like
	_, err := s.messages.Update(ctx, messageID, func(m *model.Message) error {
		for i, l := range m.Likes {
			if l.PrenomID == prenomID {
				removed = l
				m.Likes = append(m.Likes[:i], m.Likes[i+1:]...)
				return nil
			}
		}
		return apperror.NotFound("like", prenomID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("like removed", slog.String("message_id", messageID), slog.String("prenom_id", prenomID))
	s.events.Publish(events.Event{Type: events.LikeRemoved, ID: removed.ID, MessageID: messageID})
	return nil
}

// Bulk likes every message in messageIDs on behalf of prenomID. Each
// message gets its own result; all new likes are written in one pass.
func (s *LikeService) Bulk(ctx context.Context, messageIDs []string, prenomID string) ([]BulkLikeResult, error) {
	if len(messageIDs) == 0 {
		return nil, apperror.ValidationFailed("messageIds", "messageIds must be a non-empty list")
	}
	if prenomID == "" {
		return nil, apperror.ValidationFailed("prenomId", "prenomId is required")
	}
	if _, err := s.prenoms.GetByID(ctx, prenomID); err != nil {
		return nil, err
	}

	results := make([]BulkLikeResult, 0, len(messageIDs))
	err := s.messages.Mutate(ctx, func(messages []model.Message) ([]model.Message, error) {
		index := make(map[string]int, len(messages))
		for i := range messages {
			index[messages[i].ID] = i
		}

		now := s.now()
		for _, id := range messageIDs {
			i, ok := index[id]
			if !ok {
				results = append(results, BulkLikeResult{MessageID: id, Reason: ReasonMessageNotFound})
				continue
			}
			m := &messages[i]
			if m.LikedBy(prenomID) {
				results = append(results, BulkLikeResult{MessageID: id, Reason: ReasonAlreadyLiked})
				continue
			}
			like := s.newLike(id, prenomID)
			m.Likes = append(m.Likes, like)
			m.UpdatedAt = now
			results = append(results, BulkLikeResult{MessageID: id, Success: true, Like: &like})
		}
		return messages, nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk like: %w", err)
	}

	added := 0
	for _, r := range results {
		if r.Success {
			added++
			s.events.Publish(events.Event{Type: events.LikeAdded, ID: r.Like.ID, MessageID: r.MessageID})
		}
	}
	s.logger.Info("bulk like",
		slog.String("prenom_id", prenomID),
		slog.Int("requested", len(messageIDs)),
		slog.Int("added", added),
	)
	return results, nil
}
