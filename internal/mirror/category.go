package mirror

import (
	"context"
	"log/slog"
	"sync"

	"github.com/baely/mirror/internal/up"
)

// CategoryLister fetches the full category listing from the source API
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]up.CategoryResource, error)
}

// CategoryResolver resolves Up category IDs to display names through a
// lazily populated, process-lifetime cache. Entries never expire. The lock
// guards the map only; concurrent misses may both trigger a listing fetch,
// which is tolerated because repopulation is an idempotent overwrite.
type CategoryResolver struct {
	mu     sync.RWMutex
	names  map[string]string
	lister CategoryLister
	logger *slog.Logger
}

// NewCategoryResolver creates a CategoryResolver backed by the given lister
func NewCategoryResolver(lister CategoryLister, logger *slog.Logger) *CategoryResolver {
	return &CategoryResolver{
		names:  make(map[string]string),
		lister: lister,
		logger: logger,
	}
}

// Resolve returns the display name for a category ID. On a cache miss it
// refetches the full listing once and re-checks; an ID still absent after
// that, or a failed fetch, falls back to the raw ID. Category naming is
// cosmetic, so Resolve never fails.
func (r *CategoryResolver) Resolve(ctx context.Context, categoryID string) string {
	if name, ok := r.lookup(categoryID); ok {
		return name
	}

	categories, err := r.lister.ListCategories(ctx)
	if err != nil {
		r.logger.Warn("Failed to fetch category listing", "error", err)
		return categoryID
	}

	r.mu.Lock()
	for _, category := range categories {
		r.names[category.ID] = category.Attributes.Name
	}
	r.mu.Unlock()

	if name, ok := r.lookup(categoryID); ok {
		return name
	}

	r.logger.Warn("Category not present in listing", "id", categoryID)
	return categoryID
}

func (r *CategoryResolver) lookup(categoryID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[categoryID]
	return name, ok
}
