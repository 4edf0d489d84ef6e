// Package repository declares the persistence contracts the services depend on.
//
// Every collection is small (hundreds of records), so each call is a full
// round-trip over the collection: List returns everything, and writes
// replace the whole backing file. Update and Mutate take a callback that runs
// while the collection is locked, which gives callers an atomic
// read-modify-write inside one process.
package repository

import (
	"context"

	"github.com/RebotePadel/GameHome/internal/model"
)

// MessageRepository stores messages newest first.
type MessageRepository interface {
	List(ctx context.Context) ([]model.Message, error)
	GetByID(ctx context.Context, id string) (*model.Message, error)
	Create(ctx context.Context, message *model.Message) error
	Update(ctx context.Context, id string, mutate func(*model.Message) error) (*model.Message, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, messages []model.Message) error
	Mutate(ctx context.Context, mutate func([]model.Message) ([]model.Message, error)) error
}

// TagRepository stores tags in insertion order. Display order is Tag.Order.
type TagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) error
	Update(ctx context.Context, id string, mutate func(*model.Tag) error) (*model.Tag, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, tags []model.Tag) error
	Mutate(ctx context.Context, mutate func([]model.Tag) ([]model.Tag, error)) error
}

// PrenomRepository stores prénoms in insertion order.
type PrenomRepository interface {
	List(ctx context.Context) ([]model.Prenom, error)
	GetByID(ctx context.Context, id string) (*model.Prenom, error)
	Create(ctx context.Context, prenom *model.Prenom) error
	Update(ctx context.Context, id string, mutate func(*model.Prenom) error) (*model.Prenom, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, prenoms []model.Prenom) error
	Mutate(ctx context.Context, mutate func([]model.Prenom) ([]model.Prenom, error)) error
}

// ConfigRepository reads and writes the singleton settings record.
type ConfigRepository interface {
	GetConfig(ctx context.Context) (*model.Config, error)
	SaveConfig(ctx context.Context, cfg *model.Config) error
}
