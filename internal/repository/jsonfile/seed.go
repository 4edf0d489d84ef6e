package jsonfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RebotePadel/GameHome/internal/model"
)

var defaultTags = []struct {
	id, name, color string
}{
	{"tag-1", "Sécurité", "#EF4444"},
	{"tag-2", "Maintenance", "#3B82F6"},
	{"tag-3", "Événements", "#10B981"},
	{"tag-4", "RH", "#F59E0B"},
}

var defaultPrenoms = []struct {
	id, name string
}{
	{"prenom-1", "Jean"},
	{"prenom-2", "Marie"},
	{"prenom-3", "Pierre"},
}

// Seed fills the tag and prénom collections with the starter set when they
// are empty. Collections that already hold records are left alone.
func (s *Store) Seed(ctx context.Context) error {
	now := s.now()

	err := s.Tags.Mutate(ctx, func(tags []model.Tag) ([]model.Tag, error) {
		if len(tags) > 0 {
			return tags, nil
		}
		for i, d := range defaultTags {
			tags = append(tags, model.Tag{
				ID:        d.id,
				Name:      d.name,
				Color:     d.color,
				Order:     i,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		s.logger.Info("default tags created", slog.Int("count", len(tags)))
		return tags, nil
	})
	if err != nil {
		return fmt.Errorf("seeding tags: %w", err)
	}

	err = s.Prenoms.Mutate(ctx, func(prenoms []model.Prenom) ([]model.Prenom, error) {
		if len(prenoms) > 0 {
			return prenoms, nil
		}
		for _, d := range defaultPrenoms {
			prenoms = append(prenoms, model.Prenom{
				ID:        d.id,
				Name:      d.name,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		s.logger.Info("default prenoms created", slog.Int("count", len(prenoms)))
		return prenoms, nil
	})
	if err != nil {
		return fmt.Errorf("seeding prenoms: %w", err)
	}

	return nil
}
