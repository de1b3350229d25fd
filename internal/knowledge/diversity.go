package knowledge

import (
	"context"

	"github.com/hyperjump/chishiki/internal/models"
)

// DefaultOverFetch is the candidate over-fetch multiplier for diversity
// retrieval: 3*k candidates are pulled before interleaving.
const DefaultOverFetch = 3

// DiversityRetriever interleaves results across metadata sources so that one
// dominant source cannot fill every result slot. Output order is the
// round-robin draw order, not global similarity order; diversity is
// deliberately prioritized over strict ranking in the final list.
type DiversityRetriever struct {
	store     *Store
	overFetch int
}

// NewDiversityRetriever wraps store. overFetch <= 0 selects DefaultOverFetch.
func NewDiversityRetriever(store *Store, overFetch int) *DiversityRetriever {
	if overFetch <= 0 {
		overFetch = DefaultOverFetch
	}
	return &DiversityRetriever{store: store, overFetch: overFetch}
}

// Retrieve returns up to k results drawn round-robin across sources.
// Candidates come from an overFetch*k top-k search; each source group keeps
// its internal similarity order, and groups are visited in order of first
// appearance in the candidate list. With a single source this degenerates to
// plain top-k search.
func (r *DiversityRetriever) Retrieve(ctx context.Context, query []float32, k int) ([]*models.SearchResult, error) {
	if k <= 0 {
		return []*models.SearchResult{}, nil
	}
	candidates, err := r.store.Search(ctx, query, r.overFetch*k)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*models.SearchResult)
	order := make([]string, 0)
	for _, c := range candidates {
		src := c.Metadata.Source
		if _, ok := groups[src]; !ok {
			order = append(order, src)
		}
		groups[src] = append(groups[src], c)
	}

	diverse := make([]*models.SearchResult, 0, k)
	cursor := make(map[string]int, len(order))
	for len(diverse) < k {
		advanced := false
		for _, src := range order {
			idx := cursor[src]
			if idx >= len(groups[src]) {
				continue
			}
			diverse = append(diverse, groups[src][idx])
			cursor[src] = idx + 1
			advanced = true
			if len(diverse) >= k {
				break
			}
		}
		if !advanced {
			break
		}
	}
	return diverse, nil
}
