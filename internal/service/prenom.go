package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/RebotePadel/GameHome/internal/events"
	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository"
)

// UpdatePrenomInput carries a partial prénom update. Nil fields are left as is.
type UpdatePrenomInput struct {
	Name   *string
	Active *bool
}

// PrenomService manages participants. A prénom is never hard-deleted:
// likes and comments keep pointing at it.
type PrenomService struct {
	repo   repository.PrenomRepository
	events events.Publisher
	logger *slog.Logger
}

func NewPrenomService(repo repository.PrenomRepository, pub events.Publisher, logger *slog.Logger) *PrenomService {
	return &PrenomService{repo: repo, events: pub, logger: logger}
}

func (s *PrenomService) List(ctx context.Context) ([]model.Prenom, error) {
	prenoms, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing prenoms: %w", err)
	}
	return prenoms, nil
}

// ListActive returns only prénoms that can still like and comment.
func (s *PrenomService) ListActive(ctx context.Context) ([]model.Prenom, error) {
	prenoms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(prenoms, func(p model.Prenom) bool { return !p.Active }), nil
}

func (s *PrenomService) Get(ctx context.Context, id string) (*model.Prenom, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an active prénom.
func (s *PrenomService) Create(ctx context.Context, name string) (*model.Prenom, error) {
	p := &model.Prenom{Name: name, Active: true}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create prenom", slog.String("name", name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating prenom: %w", err)
	}

	s.logger.Info("prenom created", slog.String("id", p.ID), slog.String("name", p.Name))
	s.events.Publish(events.Event{Type: events.PrenomsChanged, ID: p.ID})
	return p, nil
}

func (s *PrenomService) Update(ctx context.Context, id string, in UpdatePrenomInput) (*model.Prenom, error) {
	p, err := s.repo.Update(ctx, id, func(p *model.Prenom) error {
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{Type: events.PrenomsChanged, ID: p.ID})
	return p, nil
}

// Deactivate is the DELETE operation: it clears Active and keeps the record.
func (s *PrenomService) Deactivate(ctx context.Context, id string) (*model.Prenom, error) {
	inactive := false
	p, err := s.Update(ctx, id, UpdatePrenomInput{Active: &inactive})
	if err != nil {
		return nil, err
	}
	s.logger.Info("prenom deactivated", slog.String("id", id))
	return p, nil
}
