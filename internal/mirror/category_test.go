package mirror_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/baely/mirror/internal/common/errors"
	"github.com/baely/mirror/internal/mirror"
	"github.com/baely/mirror/internal/up"
)

type fakeLister struct {
	mu         sync.Mutex
	categories []up.CategoryResource
	err        error
	calls      int
}

func (f *fakeLister) ListCategories(context.Context) ([]up.CategoryResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.categories, f.err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func category(id, name string) up.CategoryResource {
	c := up.CategoryResource{Type: "categories", ID: id}
	c.Attributes.Name = name
	return c
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCategoryResolver_MissFetchesOnce(t *testing.T) {
	lister := &fakeLister{
		categories: []up.CategoryResource{
			category("booze", "Booze"),
			category("takeaway", "Takeaway"),
		},
	}
	resolver := mirror.NewCategoryResolver(lister, discardLogger())

	if got := resolver.Resolve(context.Background(), "booze"); got != "Booze" {
		t.Errorf("expected Booze, got %s", got)
	}
	if got := resolver.Resolve(context.Background(), "booze"); got != "Booze" {
		t.Errorf("expected Booze on second resolve, got %s", got)
	}
	if got := resolver.Resolve(context.Background(), "takeaway"); got != "Takeaway" {
		t.Errorf("expected Takeaway, got %s", got)
	}

	// The first miss populates the whole cache; later resolutions hit it.
	if got := lister.callCount(); got != 1 {
		t.Errorf("expected 1 listing fetch, got %d", got)
	}
}

func TestCategoryResolver_UnknownFallsBackToRawID(t *testing.T) {
	lister := &fakeLister{
		categories: []up.CategoryResource{category("booze", "Booze")},
	}
	resolver := mirror.NewCategoryResolver(lister, discardLogger())

	if got := resolver.Resolve(context.Background(), "mystery"); got != "mystery" {
		t.Errorf("expected raw ID fallback, got %s", got)
	}
}

func TestCategoryResolver_FetchFailureFallsBackToRawID(t *testing.T) {
	lister := &fakeLister{err: errors.ErrUpstream}
	resolver := mirror.NewCategoryResolver(lister, discardLogger())

	if got := resolver.Resolve(context.Background(), "booze"); got != "booze" {
		t.Errorf("expected raw ID fallback on fetch failure, got %s", got)
	}
}

func TestCategoryResolver_ConcurrentResolves(t *testing.T) {
	lister := &fakeLister{
		categories: []up.CategoryResource{category("booze", "Booze")},
	}
	resolver := mirror.NewCategoryResolver(lister, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := resolver.Resolve(context.Background(), "booze"); got != "Booze" {
				t.Errorf("expected Booze, got %s", got)
			}
		}()
	}
	wg.Wait()
}
