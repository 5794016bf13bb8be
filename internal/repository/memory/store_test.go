package memory

import (
	"cmp"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Tags []string
}

func newItemStore() *Store[*item] {
	return New(
		func(i *item) string { return i.ID },
		func(i *item) *item {
			cp := *i
			cp.Tags = append([]string(nil), i.Tags...)
			return &cp
		},
	)
}

func TestStore_SetGetIsolated(t *testing.T) {
	s := newItemStore()
	ctx := context.Background()

	in := &item{ID: "a", Tags: []string{"x"}}
	require.NoError(t, s.Set(ctx, in))
	in.Tags[0] = "mutated"

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)

	got.Tags[0] = "also mutated"
	again, _ := s.Get(ctx, "a")
	assert.Equal(t, []string{"x"}, again.Tags)
}

func TestStore_ReplaceAndDeleteMissing(t *testing.T) {
	s := newItemStore()
	ctx := context.Background()

	assert.ErrorIs(t, s.Replace(ctx, &item{ID: "ghost"}), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "ghost"), ErrNotFound)
	_, err := s.Get(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, &item{ID: "a"}))
	require.NoError(t, s.Replace(ctx, &item{ID: "a", Tags: []string{"new"}}))
	got, _ := s.Get(ctx, "a")
	assert.Equal(t, []string{"new"}, got.Tags)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_FilterSorted(t *testing.T) {
	s := newItemStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b", "skip"} {
		require.NoError(t, s.Set(ctx, &item{ID: id}))
	}

	out := s.Filter(ctx,
		func(i *item) bool { return i.ID != "skip" },
		func(a, b *item) int { return cmp.Compare(a.ID, b.ID) },
	)
	ids := make([]string, len(out))
	for i, v := range out {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Len(t, s.Filter(ctx, nil, nil), 4)
}

func TestStore_NilCloneStoresAsGiven(t *testing.T) {
	s := New(func(v string) string { return v }, nil)
	require.NoError(t, s.Set(context.Background(), "k"))
	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "k", got)
}
