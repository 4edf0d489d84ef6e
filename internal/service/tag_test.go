package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RebotePadel/GameHome/internal/apperror"
	"github.com/RebotePadel/GameHome/internal/model"
)

func tagIDs(tags []model.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func newTagService(f *fixture) *TagService {
	return NewTagService(f.store.Tags, f.store.Messages, f.pub, testLogger())
}

func TestTagService_ListSortedByOrder(t *testing.T) {
	f := newFixture(t)
	svc := newTagService(f)
	ctx := context.Background()

	order := 0
	_, err := svc.Update(ctx, "tag-4", UpdateTagInput{Order: &order})
	require.NoError(t, err)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	// tag-1 and tag-4 share order 0; stored sequence breaks the tie.
	assert.Equal(t, []string{"tag-1", "tag-4", "tag-2", "tag-3"}, tagIDs(tags))
}

func TestTagService_CreateAppendsAtEnd(t *testing.T) {
	f := newFixture(t)
	svc := newTagService(f)

	tag, err := svc.Create(context.Background(), "Travaux", "#123abc")
	require.NoError(t, err)

	assert.Equal(t, 4, tag.Order)
	assert.Equal(t, "#123abc", tag.Color)
	assert.NotEmpty(t, tag.ID)
	assert.False(t, tag.CreatedAt.IsZero())
}

func TestTagService_ConcurrentCreatesGetDistinctOrders(t *testing.T) {
	f := newFixture(t)
	svc := newTagService(f)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := range n {
		wg.Go(func() {
			_, err := svc.Create(ctx, fmt.Sprintf("Tag %d", i), "#123abc")
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 4+n)
	seen := make(map[int]bool)
	for _, tag := range tags {
		assert.False(t, seen[tag.Order], "order %d assigned twice", tag.Order)
		seen[tag.Order] = true
	}
}

func TestTagService_UpdatePartial(t *testing.T) {
	f := newFixture(t)
	svc := newTagService(f)
	ctx := context.Background()

	name := "Sûreté"
	tag, err := svc.Update(ctx, "tag-1", UpdateTagInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Sûreté", tag.Name)
	assert.Equal(t, "#EF4444", tag.Color, "color untouched")

	negative := -1
	_, err = svc.Update(ctx, "tag-1", UpdateTagInput{Order: &negative})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.Update(ctx, "missing", UpdateTagInput{Name: &name})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestTagService_DeleteInUse(t *testing.T) {
	f := newFixture(t)
	svc := newTagService(f)
	ctx := context.Background()

	f.postMessage(t, "ronde de nuit terminée", "tag-1")
	f.postMessage(t, "badge perdu à l'accueil", "tag-1", "tag-4")

	err := svc.Delete(ctx, "tag-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "cannot delete tag", appErr.Message)
	assert.Equal(t, "2 message(s) use this tag", appErr.Reason)

	_, err = svc.Get(ctx, "tag-1")
	assert.NoError(t, err, "tag must still exist")
}

func TestTagService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := newTagService(f)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "tag-3"))

	err := svc.Delete(ctx, "tag-3")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestTagService_Reorder(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "full permutation",
			ids:  []string{"tag-4", "tag-3", "tag-2", "tag-1"},
			want: []string{"tag-4", "tag-3", "tag-2", "tag-1"},
		},
		{
			name: "unlisted tags are kept after listed ones",
			ids:  []string{"tag-3", "tag-1"},
			want: []string{"tag-3", "tag-1", "tag-2", "tag-4"},
		},
		{
			name: "unknown and repeated ids are skipped",
			ids:  []string{"ghost", "tag-2", "tag-2", "tag-1"},
			want: []string{"tag-2", "tag-1", "tag-3", "tag-4"},
		},
		{
			name: "empty list keeps current order",
			ids:  nil,
			want: []string{"tag-1", "tag-2", "tag-3", "tag-4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newTagService(f)
			ctx := context.Background()

			got, err := svc.Reorder(ctx, tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tagIDs(got))
			for i, tag := range got {
				assert.Equal(t, i, tag.Order)
			}

			listed, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tagIDs(listed), "order is persisted")
		})
	}
}
