package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory slug table keyed by slug -> owning post id.
type memStore struct {
	slugs map[string]int64
}

func newMemStore(slugs map[string]int64) *memStore {
	if slugs == nil {
		slugs = make(map[string]int64)
	}
	return &memStore{slugs: slugs}
}

func (s *memStore) SlugExists(_ context.Context, candidate string, excludeID int64) (bool, error) {
	owner, ok := s.slugs[candidate]
	if !ok {
		return false, nil
	}
	if excludeID != 0 && owner == excludeID {
		return false, nil
	}
	return true, nil
}

func TestResolver_FreeBase(t *testing.T) {
	r := NewResolver(newMemStore(nil))

	got, err := r.Resolve(context.Background(), "breaking-update", 0)
	require.NoError(t, err)
	assert.Equal(t, "breaking-update", got)
}

func TestResolver_NumericSuffixes(t *testing.T) {
	store := newMemStore(map[string]int64{
		"foo":   1,
		"foo-1": 2,
		"foo-2": 3,
	})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "foo", 0)
	require.NoError(t, err)
	assert.Equal(t, "foo-3", got)
}

func TestResolver_SelfExclusion(t *testing.T) {
	store := newMemStore(map[string]int64{"foo": 5})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "foo", 5)
	require.NoError(t, err)
	assert.Equal(t, "foo", got, "re-saving a post under its own slug must not collide")

	got, err = r.Resolve(context.Background(), "foo", 9)
	require.NoError(t, err)
	assert.Equal(t, "foo-1", got)
}

func TestResolver_EmptyBaseFallback(t *testing.T) {
	r := NewResolver(newMemStore(nil))

	got, err := r.Resolve(context.Background(), "", 42)
	require.NoError(t, err)
	assert.Equal(t, "post-42", got)
}

func TestResolver_Idempotent(t *testing.T) {
	store := newMemStore(map[string]int64{"foo": 1, "foo-1": 2})
	r := NewResolver(store)

	first, err := r.Resolve(context.Background(), "foo", 0)
	require.NoError(t, err)

	second, err := r.Resolve(context.Background(), "foo", 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "foo-2", first)
}

func TestResolver_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewResolver(StoreFunc(func(context.Context, string, int64) (bool, error) {
		return false, boom
	}))

	_, err := r.Resolve(context.Background(), "foo", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestResolver_CapFallsBackToRandomSuffix(t *testing.T) {
	// Everything is taken: the probing loop gives up at the cap and
	// appends a random suffix instead of spinning.
	r := NewResolverWithCap(StoreFunc(func(context.Context, string, int64) (bool, error) {
		return true, nil
	}), 10)

	got, err := r.Resolve(context.Background(), "foo", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "foo-"), "got %q", got)
	assert.NotEqual(t, "foo", got)
	assert.Greater(t, len(got), len("foo-9"))
}
