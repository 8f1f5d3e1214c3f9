package imagehash

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/corona10/goimagehash"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// Store is the read side of the archive the search engine ranks over.
// *database.ArchiveDB satisfies it; tests substitute an in-memory fake.
type Store interface {
	// AllContent returns every archived post and reply.
	AllContent(ctx context.Context) ([]model.Content, error)

	// AllUsers returns every archived user.
	AllUsers(ctx context.Context) ([]model.User, error)
}

// Engine ranks archived images by perceptual distance to a query image.
//
// Design decision: Each search is an O(N) linear scan over the full corpus
// with no index structure. The corpus is bounded by a single-platform crawl
// target, so at the sizes involved an index (e.g., LSH buckets) would cost
// more in complexity than it buys in latency. Revisit if the archive ever
// outgrows a few hundred thousand images.
type Engine struct {
	// store supplies the full corpus per query.
	store Store

	// limit is the number of nearest neighbors returned.
	limit int
}

// NewEngine creates a search engine over the given store.
func NewEngine(store Store, limit int) *Engine {
	return &Engine{store: store, limit: limit}
}

// SearchContent ranks all archived posts and replies by perceptual distance
// to the query image and returns the closest matches with their Distance
// populated. Records with no image hash rank last at WorstDistance.
func (e *Engine) SearchContent(ctx context.Context, query io.Reader) ([]model.Content, error) {
	qh, err := parseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to hash query image: %w", err)
	}
	return e.rankContent(ctx, qh)
}

func (e *Engine) rankContent(ctx context.Context, qh *goimagehash.ImageHash) ([]model.Content, error) {
	all, err := e.store.AllContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load content corpus: %w", err)
	}

	for i := range all {
		all[i].Distance = Distance(all[i].ImageHash, qh)
	}

	// Stable sort keeps store order among equal distances deterministic.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})

	if len(all) > e.limit {
		all = all[:e.limit]
	}
	return all, nil
}

// SearchUsers ranks all archived users by perceptual distance between their
// Mii avatar hash and the query image.
func (e *Engine) SearchUsers(ctx context.Context, query io.Reader) ([]model.User, error) {
	qh, err := parseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to hash query image: %w", err)
	}
	return e.rankUsers(ctx, qh)
}

func (e *Engine) rankUsers(ctx context.Context, qh *goimagehash.ImageHash) ([]model.User, error) {
	all, err := e.store.AllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user corpus: %w", err)
	}

	for i := range all {
		all[i].Distance = Distance(all[i].MiiHash, qh)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})

	if len(all) > e.limit {
		all = all[:e.limit]
	}
	return all, nil
}
