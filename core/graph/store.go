package graph

import (
	"context"
	"sort"
)

// EdgeStore persists directed typed edges and answers one hop neighbor
// lookups. Implementations must list neighbors ordered by neighbor URN and
// then relationship type, without duplicates, so that pagination is stable.
//
//go:generate mockery --name=EdgeStore -r --case underscore --with-expecter --structname=EdgeStore --filename=edge_store.go --output=./mocks
type EdgeStore interface {
	// UpsertEdge inserts the edge or replaces the properties of the edge
	// with the same triple.
	UpsertEdge(ctx context.Context, edge Edge) error
	// RemoveEdge is a no-op when the edge does not exist.
	RemoveEdge(ctx context.Context, key EdgeKey) error
	// RemoveEdgesFromNode removes every edge incident to node that matches
	// filter and returns how many were removed.
	RemoveEdgesFromNode(ctx context.Context, node URN, filter RelationshipFilter) (int, error)
	FindNeighbors(ctx context.Context, query NeighborQuery) (NeighborPage, error)
}

//go:generate mockery --name=EntityChecker -r --case underscore --with-expecter --structname=EntityChecker --filename=entity_checker.go --output=./mocks
type EntityChecker interface {
	Exists(ctx context.Context, urn URN) (bool, error)
}

// NeighborQuery describes a one hop lookup around Node. SourceTypes and
// DestinationTypes constrain the entity type of the edge endpoints; an
// empty list does not constrain. A Limit of 0 returns every neighbor.
type NeighborQuery struct {
	Node             URN
	Filter           RelationshipFilter
	SourceTypes      []string
	DestinationTypes []string
	Offset           int
	Limit            int
}

type NeighborPage struct {
	Entities []RelatedEntity
	Total    int
}

// Match reports whether the edge satisfies the query and, if it does,
// returns the neighbor it reaches.
func (q NeighborQuery) Match(e Edge) (RelatedEntity, bool) {
	if !q.Filter.Matches(e, q.Node) {
		return RelatedEntity{}, false
	}
	if !containsEntityType(q.SourceTypes, e.Source.EntityType()) ||
		!containsEntityType(q.DestinationTypes, e.Destination.EntityType()) {
		return RelatedEntity{}, false
	}

	neighbor := e.Destination
	switch q.Filter.Direction {
	case DirectionIncoming:
		neighbor = e.Source
	case DirectionUndirected:
		if e.Source != q.Node {
			neighbor = e.Source
		}
	}

	return RelatedEntity{Type: e.Type, URN: neighbor}, true
}

// NewNeighborPage sorts and deduplicates entities and returns the window
// selected by offset and limit.
func NewNeighborPage(entities []RelatedEntity, offset, limit int) NeighborPage {
	all := SortRelatedEntities(entities)
	return NeighborPage{
		Entities: paginate(all, offset, limit),
		Total:    len(all),
	}
}

// SortRelatedEntities orders entities by URN and relationship type and
// drops duplicates. The given slice is reused.
func SortRelatedEntities(entities []RelatedEntity) []RelatedEntity {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Less(entities[j])
	})

	out := entities[:0]
	for _, e := range entities {
		if len(out) > 0 && e == out[len(out)-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]T, end-offset)
	copy(page, items[offset:end])
	return page
}

func containsEntityType(types []string, entityType string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == entityType {
			return true
		}
	}
	return false
}
