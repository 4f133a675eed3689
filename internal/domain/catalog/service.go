package catalog

import (
	"context"
	"sort"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Active(ctx context.Context) ([]Competency, error) {
	return s.store.ListCompetencies(ctx, true)
}

func (s *Service) All(ctx context.Context) ([]Competency, error) {
	return s.store.ListCompetencies(ctx, false)
}

// GroupByCategory buckets competencies in display order, dropping empty
// categories.
func GroupByCategory(comps []Competency) []CategoryGroup {
	buckets := map[string][]Competency{}
	for _, c := range comps {
		buckets[c.Category] = append(buckets[c.Category], c)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := CategoryRank(keys[i]), CategoryRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	groups := make([]CategoryGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, CategoryGroup{Category: k, Label: CategoryLabels[k], Competencies: buckets[k]})
	}
	return groups
}

type CategoryGroup struct {
	Category     string       `json:"category"`
	Label        string       `json:"label"`
	Competencies []Competency `json:"competencies"`
}
