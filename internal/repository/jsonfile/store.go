// Package jsonfile implements the repository interfaces on flat JSON files.
//
// LAYOUT:
//
//	<dataDir>/
//	  messages.json   []model.Message, newest first
//	  tags.json       []model.Tag
//	  prenoms.json    []model.Prenom
//	  config.json     model.Config
//
// Each file is created with its default value the first time it is read.
// A file that cannot be decoded is renamed to <name>.corrupt and replaced
// by the default, and a warning is logged.
//
// One Store should exist per process: the per-collection locks only
// coordinate goroutines that share it.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/repository"
)

const (
	messagesFile = "messages.json"
	tagsFile     = "tags.json"
	prenomsFile  = "prenoms.json"
	configFile   = "config.json"
)

var (
	_ repository.MessageRepository = (*Collection[model.Message])(nil)
	_ repository.TagRepository     = (*Collection[model.Tag])(nil)
	_ repository.PrenomRepository  = (*Collection[model.Prenom])(nil)
	_ repository.ConfigRepository  = (*Store)(nil)
)

// Store owns the data directory and the three record collections.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	Messages *Collection[model.Message]
	Tags     *Collection[model.Tag]
	Prenoms  *Collection[model.Prenom]

	configMu sync.Mutex
}

// New creates the data directory if needed and returns a Store rooted there.
func New(dir string, logger *slog.Logger) (*Store, error) {
	return newStore(dir, logger, time.Now)
}

func newStore(dir string, logger *slog.Logger, now func() time.Time) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data directory: %w", err)
	}

	s := &Store{dir: dir, logger: logger, now: now}

	s.Messages = newCollection(filepath.Join(dir, messagesFile), schema[model.Message]{
		resource: "message",
		prepend:  true,
		id:       func(m *model.Message) string { return m.ID },
		create: func(m *model.Message, id string, t time.Time) {
			if m.ID == "" {
				m.ID = id
			}
			m.CreatedAt, m.UpdatedAt = t, t
			m.Normalize()
		},
		touch:     func(m *model.Message, t time.Time) { m.UpdatedAt = t },
		normalize: func(m *model.Message) { m.Normalize() },
	}, logger, now)

	s.Tags = newCollection(filepath.Join(dir, tagsFile), schema[model.Tag]{
		resource: "tag",
		id:       func(t *model.Tag) string { return t.ID },
		create: func(tag *model.Tag, id string, t time.Time) {
			if tag.ID == "" {
				tag.ID = id
			}
			tag.CreatedAt, tag.UpdatedAt = t, t
		},
		touch: func(tag *model.Tag, t time.Time) { tag.UpdatedAt = t },
	}, logger, now)

	s.Prenoms = newCollection(filepath.Join(dir, prenomsFile), schema[model.Prenom]{
		resource: "prenom",
		id:       func(p *model.Prenom) string { return p.ID },
		create: func(p *model.Prenom, id string, t time.Time) {
			if p.ID == "" {
				p.ID = id
			}
			p.CreatedAt, p.UpdatedAt = t, t
		},
		touch: func(p *model.Prenom, t time.Time) { p.UpdatedAt = t },
	}, logger, now)

	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// GetConfig returns the settings record, writing the default one first if
// config.json is missing or unreadable.
func (s *Store) GetConfig(ctx context.Context) (*model.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()

	path := filepath.Join(s.dir, configFile)

	var cfg model.Config
	found, err := readJSON(path, &cfg)
	switch {
	case err == nil && found:
		return &cfg, nil
	case errors.Is(err, errCorrupt):
		moved, qerr := quarantine(path)
		if qerr != nil {
			return nil, fmt.Errorf("jsonfile: quarantining %s: %w", path, qerr)
		}
		s.logger.Warn("config file unreadable, restoring defaults",
			slog.String("moved_to", moved),
			slog.String("error", err.Error()),
		)
	case err != nil:
		return nil, fmt.Errorf("jsonfile: loading config: %w", err)
	}

	cfg = model.DefaultConfig()
	if err := writeJSON(path, cfg); err != nil {
		return nil, fmt.Errorf("jsonfile: creating config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig overwrites config.json.
func (s *Store) SaveConfig(ctx context.Context, cfg *model.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()

	if err := writeJSON(filepath.Join(s.dir, configFile), cfg); err != nil {
		return fmt.Errorf("jsonfile: saving config: %w", err)
	}
	return nil
}
