package provider

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

// Provider is the capability a stock-media service must offer. Adding or
// removing a service means adding or removing an adapter; calling code
// never branches on provider identity.
type Provider interface {
	Name() model.MediaSource
	IsConfigured() bool
	Search(ctx context.Context, keyword string, perPage int) ([]model.MediaItem, error)
}

// MultiSearcher fans one keyword out to every configured provider
type MultiSearcher struct {
	providers []Provider
}

func NewMultiSearcher(providers ...Provider) *MultiSearcher {
	return &MultiSearcher{providers: providers}
}

// Search queries all configured providers concurrently and concatenates
// their results in provider order. A failing provider contributes nothing;
// it never aborts the others, so the overall call always succeeds.
func (m *MultiSearcher) Search(ctx context.Context, keyword string, perPage int) []model.MediaItem {
	results := make([][]model.MediaItem, len(m.providers))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range m.providers {
		if !p.IsConfigured() {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			items, err := p.Search(ctx, keyword, perPage)
			if err != nil {
				log.Printf("[search] %s failed for %q: %v", p.Name(), keyword, err)
				return nil
			}
			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var all []model.MediaItem
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}
