package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/RebotePadel/GameHome/internal/apperror"
)

// schema tells a Collection how to handle one record type.
type schema[T any] struct {
	resource string // used in NotFound messages: "message", "tag", ...
	prepend  bool   // new records go first (messages are newest first)

	id        func(*T) string
	create    func(*T, string, time.Time) // sets id (when empty) and both timestamps
	touch     func(*T, time.Time)         // refreshes updatedAt
	normalize func(*T)                    // optional fixup after decoding
}

// Collection is one JSON array file.
//
// All access goes through mu, so two requests mutating the same collection
// in this process cannot lose each other's writes. Other processes writing
// the same file are not coordinated: last write wins.
type Collection[T any] struct {
	mu     sync.Mutex
	path   string
	schema schema[T]
	logger *slog.Logger
	now    func() time.Time
}

func newCollection[T any](path string, s schema[T], logger *slog.Logger, now func() time.Time) *Collection[T] {
	return &Collection[T]{
		path:   path,
		schema: s,
		logger: logger,
		now:    now,
	}
}

// load reads the file, creating it with an empty array when missing or corrupt.
// Caller must hold mu.
func (c *Collection[T]) load() ([]T, error) {
	var items []T
	found, err := readJSON(c.path, &items)
	switch {
	case err == nil && found:
		if items == nil {
			items = []T{}
		}
		if c.schema.normalize != nil {
			for i := range items {
				c.schema.normalize(&items[i])
			}
		}
		return items, nil

	case errors.Is(err, errCorrupt):
		moved, qerr := quarantine(c.path)
		if qerr != nil {
			return nil, fmt.Errorf("jsonfile: quarantining %s: %w", c.path, qerr)
		}
		c.logger.Warn("collection file unreadable, starting empty",
			slog.String("file", c.path),
			slog.String("moved_to", moved),
			slog.String("error", err.Error()),
		)

	case err != nil:
		return nil, fmt.Errorf("jsonfile: loading %ss: %w", c.schema.resource, err)
	}

	items = []T{}
	if err := writeJSON(c.path, items); err != nil {
		return nil, fmt.Errorf("jsonfile: creating %s: %w", c.path, err)
	}
	return items, nil
}

// save persists the whole collection. Caller must hold mu.
func (c *Collection[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := writeJSON(c.path, items); err != nil {
		return fmt.Errorf("jsonfile: saving %ss: %w", c.schema.resource, err)
	}
	return nil
}

func (c *Collection[T]) indexOf(items []T, id string) int {
	for i := range items {
		if c.schema.id(&items[i]) == id {
			return i
		}
	}
	return -1
}

// List returns the full collection in stored order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// GetByID returns a copy of the record with the given id.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return nil, err
	}
	i := c.indexOf(items, id)
	if i < 0 {
		return nil, apperror.NotFound(c.schema.resource, id)
	}
	item := items[i]
	return &item, nil
}

// Create assigns an id (xid) when none is set, stamps createdAt/updatedAt and
// inserts the record. The caller's value is updated in place.
func (c *Collection[T]) Create(ctx context.Context, item *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}

	c.schema.create(item, xid.New().String(), c.now())

	if c.schema.prepend {
		items = append([]T{*item}, items...)
	} else {
		items = append(items, *item)
	}
	return c.save(items)
}

// Update applies mutate to the record with the given id, refreshes updatedAt
// and persists. If mutate returns an error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return nil, err
	}
	i := c.indexOf(items, id)
	if i < 0 {
		return nil, apperror.NotFound(c.schema.resource, id)
	}

	updated := items[i]
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	c.schema.touch(&updated, c.now())
	items[i] = updated

	if err := c.save(items); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}
	i := c.indexOf(items, id)
	if i < 0 {
		return apperror.NotFound(c.schema.resource, id)
	}
	items = append(items[:i], items[i+1:]...)
	return c.save(items)
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(items)
}

// Mutate hands the whole collection to mutate and persists what it returns.
// Used for multi-record changes (bulk likes, tag reorder) that must be
// written once.
func (c *Collection[T]) Mutate(ctx context.Context, mutate func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}
	out, err := mutate(items)
	if err != nil {
		return err
	}
	return c.save(out)
}
