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

// UpdateTagInput carries a partial tag update. Nil fields are left as is.
type UpdateTagInput struct {
	Name  *string
	Color *string
	Order *int
}

// TagService manages the categories messages are filed under.
type TagService struct {
	tags     repository.TagRepository
	messages repository.MessageRepository
	events   events.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewTagService creates a new TagService. The message repository is needed
// to refuse deleting a tag that is still in use.
func NewTagService(tags repository.TagRepository, messages repository.MessageRepository, pub events.Publisher, logger *slog.Logger) *TagService {
	return &TagService{
		tags:     tags,
		messages: messages,
		events:   pub,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns all tags sorted by Order.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	model.SortTags(tags)
	return tags, nil
}

// Get returns one tag or apperror.ErrNotFound.
func (s *TagService) Get(ctx context.Context, id string) (*model.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

// Create appends a tag at the end of the display order. The order is
// computed under the collection lock so concurrent creates never share one.
func (s *TagService) Create(ctx context.Context, name, color string) (*model.Tag, error) {
	var tag model.Tag
	err := s.tags.Mutate(ctx, func(tags []model.Tag) ([]model.Tag, error) {
		now := s.now()
		tag = model.Tag{
			ID:        xid.New().String(),
			Name:      name,
			Color:     color,
			Order:     len(tags),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return append(tags, tag), nil
	})
	if err != nil {
		s.logger.Error("failed to create tag", slog.String("name", name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	s.logger.Info("tag created", slog.String("id", tag.ID), slog.String("name", tag.Name))
	s.events.Publish(events.Event{Type: events.TagsChanged, ID: tag.ID})
	return &tag, nil
}

// Update applies a partial update.
func (s *TagService) Update(ctx context.Context, id string, in UpdateTagInput) (*model.Tag, error) {
	tag, err := s.tags.Update(ctx, id, func(t *model.Tag) error {
		if in.Name != nil {
			t.Name = *in.Name
		}
		if in.Color != nil {
			t.Color = *in.Color
		}
		if in.Order != nil {
			if *in.Order < 0 {
				return apperror.ValidationFailed("order", "order must be greater than or equal to 0")
			}
			t.Order = *in.Order
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.TagsChanged, ID: tag.ID})
	return tag, nil
}

// Delete removes a tag unless a message still references it, in which case
// it returns a conflict whose reason counts the referencing messages.
func (s *TagService) Delete(ctx context.Context, id string) error {
	messages, err := s.messages.List(ctx)
	if err != nil {
		return fmt.Errorf("listing messages: %w", err)
	}

	inUse := 0
	for i := range messages {
		if messages[i].HasTag(id) {
			inUse++
		}
	}
	if inUse > 0 {
		return apperror.Conflict("cannot delete tag", fmt.Sprintf("%d message(s) use this tag", inUse))
	}

	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("tag deleted", slog.String("id", id))
	s.events.Publish(events.Event{Type: events.TagsChanged, ID: id})
	return nil
}

// Reorder sets Order to the position of each id in ids and returns the
// full list in its new order.
//
// Unknown ids and repeated ids are skipped. Tags missing from ids are kept
// and placed after the listed ones, in their previous relative order.
func (s *TagService) Reorder(ctx context.Context, ids []string) ([]model.Tag, error) {
	var result []model.Tag
	now := s.now()

	err := s.tags.Mutate(ctx, func(tags []model.Tag) ([]model.Tag, error) {
		model.SortTags(tags)

		byID := make(map[string]int, len(tags))
		for i, t := range tags {
			byID[t.ID] = i
		}

		placed := make(map[string]bool, len(tags))
		ordered := make([]model.Tag, 0, len(tags))
		for _, id := range ids {
			i, ok := byID[id]
			if !ok || placed[id] {
				continue
			}
			placed[id] = true
			ordered = append(ordered, tags[i])
		}
		for _, t := range tags {
			if !placed[t.ID] {
				ordered = append(ordered, t)
			}
		}

		for i := range ordered {
			if ordered[i].Order != i {
				ordered[i].Order = i
				ordered[i].UpdatedAt = now
			}
		}

		result = ordered
		return ordered, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reordering tags: %w", err)
	}

	s.events.Publish(events.Event{Type: events.TagsChanged})
	return result, nil
}
