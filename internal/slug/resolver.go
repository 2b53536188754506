package slug

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultMaxAttempts bounds the numeric-suffix probing loop. The repair
// job over a real dataset never gets anywhere near it; it exists so a
// pathological store cannot spin the resolver forever. Past the cap a
// random suffix is used instead.
const DefaultMaxAttempts = 1000

// Store is the storage capability the resolver needs: does a candidate
// slug already belong to a post other than excludeID. excludeID 0 means
// no exclusion.
type Store interface {
	SlugExists(ctx context.Context, candidate string, excludeID int64) (bool, error)
}

// StoreFunc adapts a plain function to Store.
type StoreFunc func(ctx context.Context, candidate string, excludeID int64) (bool, error)

func (f StoreFunc) SlugExists(ctx context.Context, candidate string, excludeID int64) (bool, error) {
	return f(ctx, candidate, excludeID)
}

type Resolver struct {
	store       Store
	maxAttempts int
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, maxAttempts: DefaultMaxAttempts}
}

// NewResolverWithCap overrides the probing cap, mainly for tests.
func NewResolverWithCap(store Store, maxAttempts int) *Resolver {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Resolver{store: store, maxAttempts: maxAttempts}
}

// Resolve turns base into a slug free at resolution time, excluding
// postID from the collision check so a post re-saved under its own slug
// does not collide with itself.
//
// An empty base falls back to "post-<id>". Collisions are resolved by
// appending -1, -2, ... until a free candidate is found; exhaustion of
// the cap switches to a random hex suffix.
func (r *Resolver) Resolve(ctx context.Context, base string, postID int64) (string, error) {
	if base == "" {
		base = fmt.Sprintf("post-%d", postID)
	}

	candidate := base
	for n := 1; n <= r.maxAttempts; n++ {
		taken, err := r.store.SlugExists(ctx, candidate, postID)
		if err != nil {
			return "", fmt.Errorf("slug exists check: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}

	return randomSuffix(base), nil
}

func randomSuffix(base string) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand not failing is a platform assumption; fall back
		// to a fixed marker rather than panicking mid-request.
		return base + "-x"
	}
	return base + "-" + hex.EncodeToString(buf)
}
