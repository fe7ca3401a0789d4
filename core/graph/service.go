package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goto/lineage/core/validator"
	"github.com/goto/lineage/pkg/statsd"
	"github.com/goto/salt/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Service is the entry point for edge mutations and lineage queries.
// Traversals read the store while mutations may be in flight, so a
// traversal can observe a partially applied set of mutations.
type Service struct {
	store          EdgeStore
	entities       EntityChecker
	traverser      *Traverser
	maxHops        int
	logger         log.Logger
	statsdReporter *statsd.Reporter

	opCounter         metric.Int64Counter
	traversalDuration metric.Float64Histogram
	traversalVisited  metric.Int64Histogram
}

type ServiceDeps struct {
	Store EdgeStore
	// Entities is optional. When set, queries reject unknown origins
	// with a NotFoundError.
	Entities    EntityChecker
	Registry    LineageRegistry
	Concurrency int
	// MaxHops bounds the hop count a caller may request. 0 disables the
	// bound.
	MaxHops int
	Logger  log.Logger
}

type ServiceOption func(*Service)

func ServiceWithStatsDReporter(reporter *statsd.Reporter) ServiceOption {
	return func(s *Service) {
		s.statsdReporter = reporter
	}
}

func NewService(deps ServiceDeps, opts ...ServiceOption) (*Service, error) {
	if deps.Store == nil {
		return nil, ErrNilEdgeStore
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.NewNoop()
	}

	meter := otel.Meter("github.com/goto/lineage/core/graph")
	opCounter, err := meter.Int64Counter("lineage.graph.operation")
	if err != nil {
		otel.Handle(err)
	}
	traversalDuration, err := meter.Float64Histogram("lineage.traversal.duration", metric.WithUnit("ms"))
	if err != nil {
		otel.Handle(err)
	}
	traversalVisited, err := meter.Int64Histogram("lineage.traversal.visited")
	if err != nil {
		otel.Handle(err)
	}

	s := &Service{
		store:     deps.Store,
		entities:  deps.Entities,
		traverser: NewTraverser(deps.Store, deps.Registry, deps.Concurrency),
		maxHops:   deps.MaxHops,
		logger:    logger,

		opCounter:         opCounter,
		traversalDuration: traversalDuration,
		traversalVisited:  traversalVisited,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) UpsertEdge(ctx context.Context, edge Edge) (err error) {
	defer s.instrumentOp(ctx, "UpsertEdge", time.Now(), &err)

	if err := validator.ValidateStruct(edge); err != nil {
		return invalidArgument("upsert edge", err)
	}

	key := edge.Key()
	if err := s.store.UpsertEdge(ctx, edge); err != nil {
		return translateStoreError(ctx, "upsert edge", "", &key, err)
	}
	return nil
}

func (s *Service) RemoveEdge(ctx context.Context, key EdgeKey) (err error) {
	defer s.instrumentOp(ctx, "RemoveEdge", time.Now(), &err)

	if err := validator.ValidateStruct(key); err != nil {
		return invalidArgument("remove edge", err)
	}

	if err := s.store.RemoveEdge(ctx, key); err != nil {
		return translateStoreError(ctx, "remove edge", "", &key, err)
	}
	return nil
}

// RemoveNode removes every edge incident to node, in either direction,
// whose type is in types. An empty type set is rejected because its scope
// is ambiguous; pass RelationshipTypeAll to remove every type.
func (s *Service) RemoveNode(ctx context.Context, node URN, types []RelationshipType) (int, error) {
	return s.RemoveEdgesFromNode(ctx, node, NewRelationshipFilter(DirectionUndirected, types...))
}

// RemoveEdgesFromNode removes the edges incident to node that match the
// filter. The filter must name at least one type.
func (s *Service) RemoveEdgesFromNode(ctx context.Context, node URN, filter RelationshipFilter) (removed int, err error) {
	defer s.instrumentOp(ctx, "RemoveEdgesFromNode", time.Now(), &err)

	if node == "" {
		return 0, invalidArgument("remove node", errors.New("urn cannot be empty"))
	}
	if len(filter.Types) == 0 {
		return 0, invalidArgument("remove node", errors.New("relationship types cannot be empty"))
	}
	if err := validator.ValidateStruct(filter); err != nil {
		return 0, invalidArgument("remove node", err)
	}

	removed, err = s.store.RemoveEdgesFromNode(ctx, node, filter)
	if err != nil {
		return removed, translateStoreError(ctx, "remove node", node, nil, err)
	}

	s.logger.Debug("removed edges from node", "urn", node, "direction", filter.Direction, "removed", removed)
	return removed, nil
}

type RelatedEntitiesQuery struct {
	Filter           RelationshipFilter `json:"filter"`
	SourceTypes      []string           `json:"source_types,omitempty"`
	DestinationTypes []string           `json:"destination_types,omitempty"`
	Offset           int                `json:"offset" validate:"gte=0"`
	Count            int                `json:"count" validate:"gte=0"`
}

// FindRelatedEntities lists the one hop neighbors of node. A Count of 0
// returns every neighbor starting at Offset.
func (s *Service) FindRelatedEntities(ctx context.Context, node URN, q RelatedEntitiesQuery) (result RelatedEntitiesResult, err error) {
	defer s.instrumentOp(ctx, "FindRelatedEntities", time.Now(), &err)

	if node == "" {
		return RelatedEntitiesResult{}, invalidArgument("find related entities", errors.New("urn cannot be empty"))
	}
	if err := validator.ValidateStruct(q); err != nil {
		return RelatedEntitiesResult{}, invalidArgument("find related entities", err)
	}
	if err := s.checkExists(ctx, node); err != nil {
		return RelatedEntitiesResult{}, err
	}

	page, err := s.store.FindNeighbors(ctx, NeighborQuery{
		Node: node,
		Filter: RelationshipFilter{
			Types:     uniqueTypes(q.Filter.Types),
			Direction: q.Filter.Direction,
		},
		SourceTypes:      uniqueEntityTypes(q.SourceTypes),
		DestinationTypes: uniqueEntityTypes(q.DestinationTypes),
		Offset:           q.Offset,
		Limit:            q.Count,
	})
	if err != nil {
		return RelatedEntitiesResult{}, translateStoreError(ctx, "find related entities", node, nil, err)
	}

	entities := page.Entities
	if entities == nil {
		entities = []RelatedEntity{}
	}
	return RelatedEntitiesResult{
		Start:    q.Offset,
		Count:    len(entities),
		Total:    page.Total,
		Entities: entities,
	}, nil
}

func (s *Service) GetLineage(ctx context.Context, origin URN, q LineageQuery) (result EntityLineageResult, err error) {
	start := time.Now()
	defer s.instrumentOp(ctx, "GetLineage", start, &err)

	if origin == "" {
		return EntityLineageResult{}, invalidArgument("get lineage", errors.New("urn cannot be empty"))
	}
	if err := validator.ValidateStruct(q); err != nil {
		return EntityLineageResult{}, invalidArgument("get lineage", err)
	}
	if s.maxHops > 0 && q.MaxHops > s.maxHops {
		return EntityLineageResult{}, invalidArgument("get lineage",
			fmt.Errorf("max_hops cannot be greater than %d", s.maxHops))
	}
	if err := s.checkExists(ctx, origin); err != nil {
		return EntityLineageResult{}, err
	}

	result, err = s.traverser.ComputeLineage(ctx, origin, q)
	if err != nil {
		s.logger.Warn("lineage traversal failed", "urn", origin, "direction", q.Direction, "err", err)
		return EntityLineageResult{}, fmt.Errorf("get lineage: %w", err)
	}

	attrs := metric.WithAttributes(attribute.String("lineage.direction", string(q.Direction)))
	if s.traversalDuration != nil {
		s.traversalDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	}
	if s.traversalVisited != nil {
		s.traversalVisited.Record(ctx, int64(result.Total), attrs)
	}
	return result, nil
}

func (s *Service) checkExists(ctx context.Context, urn URN) error {
	if s.entities == nil {
		return nil
	}

	exists, err := s.entities.Exists(ctx, urn)
	if err != nil {
		return translateStoreError(ctx, "check entity", urn, nil, err)
	}
	if !exists {
		return NotFoundError{URN: urn}
	}
	return nil
}

func (s *Service) instrumentOp(ctx context.Context, op string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}

	if s.opCounter != nil {
		s.opCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("lineage.graph_operation", op),
			attribute.Bool("operation.success", err == nil),
		))
	}

	if s.statsdReporter != nil {
		s.statsdReporter.Timing("graph_operation", time.Since(start)).
			Tag("operation", op).
			Failure(err).
			Publish()
	}
}
