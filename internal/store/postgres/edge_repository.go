package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/lineage/core/graph"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// EdgeRepository stores edges in a single table keyed by the
// (source, destination, relationship_type) triple. The entity type of both
// endpoints is denormalised into columns so type constraints are plain
// predicates.
type EdgeRepository struct {
	client *Client
}

func NewEdgeRepository(client *Client) (*EdgeRepository, error) {
	if client == nil {
		return nil, errNilPostgresClient
	}
	return &EdgeRepository{
		client: client,
	}, nil
}

// UpsertEdge writes the edge and registers both endpoints in the entities
// table within one transaction, so every entity taking part in an edge is
// known to the existence check.
func (r *EdgeRepository) UpsertEdge(ctx context.Context, edge graph.Edge) error {
	m := newEdgeModel(edge)
	query, args, err := sq.Insert(edgesTable).
		Columns("source", "destination", "relationship_type", "source_type", "destination_type", "properties", "created_at", "updated_at").
		Values(m.Source, m.Destination, m.RelationshipType, m.SourceType, m.DestinationType, m.Properties, sq.Expr("now()"), sq.Expr("now()")).
		Suffix("ON CONFLICT (source, destination, relationship_type) DO UPDATE SET properties = EXCLUDED.properties, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert edge query: %w", err)
	}

	// endpoints are inserted in key order so concurrent upserts of (a, b)
	// and (b, a) take the row locks in the same order
	first, second := []interface{}{m.Source, m.SourceType}, []interface{}{m.Destination, m.DestinationType}
	if m.Destination < m.Source {
		first, second = second, first
	}
	entitiesQuery, entitiesArgs, err := sq.Insert(entitiesTable).
		Columns("urn", "type").
		Values(first...).
		Values(second...).
		Suffix("ON CONFLICT (urn) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build register endpoints query: %w", err)
	}

	return r.client.RunWithinTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert edge: %w", checkPostgresError(err))
		}
		if _, err := tx.ExecContext(ctx, entitiesQuery, entitiesArgs...); err != nil {
			return fmt.Errorf("register edge endpoints: %w", checkPostgresError(err))
		}
		return nil
	})
}

func (r *EdgeRepository) RemoveEdge(ctx context.Context, key graph.EdgeKey) error {
	query, args, err := sq.Delete(edgesTable).
		Where(sq.Eq{
			"source":            string(key.Source),
			"destination":       string(key.Destination),
			"relationship_type": string(key.Type),
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove edge query: %w", err)
	}

	if _, err := r.client.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove edge: %w", checkPostgresError(err))
	}
	return nil
}

// RemoveEdgesFromNode locks the matching edges in key order and deletes
// them in one transaction. When the delete fails the locked edges are
// reported.
func (r *EdgeRepository) RemoveEdgesFromNode(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) (int, error) {
	where, err := incidentEdgesPredicate(node, filter)
	if err != nil {
		return 0, err
	}

	var removed int
	err = r.client.RunWithinTx(ctx, func(tx *sqlx.Tx) error {
		selectQuery, args, err := sq.Select("source", "destination", "relationship_type").
			From(edgesTable).
			Where(where).
			OrderBy(`source COLLATE "C"`, `destination COLLATE "C"`, `relationship_type COLLATE "C"`).
			Suffix("FOR UPDATE").
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("build select incident edges query: %w", err)
		}

		var matched []EdgeModel
		if err := tx.SelectContext(ctx, &matched, selectQuery, args...); err != nil {
			return fmt.Errorf("select incident edges: %w", checkPostgresError(err))
		}
		if len(matched) == 0 {
			return nil
		}

		deleteQuery, args, err := sq.Delete(edgesTable).
			Where(where).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete incident edges query: %w", err)
		}

		res, err := tx.ExecContext(ctx, deleteQuery, args...)
		if err != nil {
			return &graph.RemoveNodeError{
				Node:   node,
				Failed: edgeKeys(matched),
				Err:    checkPostgresError(err),
			}
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete incident edges: check rows affected: %w", err)
		}
		removed = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *EdgeRepository) FindNeighbors(ctx context.Context, q graph.NeighborQuery) (graph.NeighborPage, error) {
	neighbors, err := neighborsQuery(q)
	if err != nil {
		return graph.NeighborPage{}, err
	}

	countQuery, countArgs, err := sq.Select("COUNT(*)").
		FromSelect(neighbors, "neighbors").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return graph.NeighborPage{}, fmt.Errorf("build count neighbors query: %w", err)
	}

	var total int
	if err := r.client.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return graph.NeighborPage{}, fmt.Errorf("count neighbors: %w", checkPostgresError(err))
	}
	if total == 0 || q.Offset >= total {
		return graph.NeighborPage{Entities: []graph.RelatedEntity{}, Total: total}, nil
	}

	page := sq.Select("urn", "relationship_type").
		FromSelect(neighbors, "neighbors").
		OrderBy(`urn COLLATE "C"`, `relationship_type COLLATE "C"`).
		Offset(uint64(q.Offset))
	if q.Limit > 0 {
		page = page.Limit(uint64(q.Limit))
	}

	pageQuery, pageArgs, err := page.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return graph.NeighborPage{}, fmt.Errorf("build find neighbors query: %w", err)
	}

	var models NeighborModels
	if err := r.client.db.SelectContext(ctx, &models, pageQuery, pageArgs...); err != nil {
		return graph.NeighborPage{}, fmt.Errorf("find neighbors: %w", checkPostgresError(err))
	}

	return graph.NeighborPage{
		Entities: models.toRelatedEntities(),
		Total:    total,
	}, nil
}

// getEdge returns the stored edge with its properties.
func (r *EdgeRepository) getEdge(ctx context.Context, key graph.EdgeKey) (graph.Edge, error) {
	query, args, err := sq.Select("source", "destination", "relationship_type", "source_type",
		"destination_type", "properties", "created_at", "updated_at").
		From(edgesTable).
		Where(sq.Eq{
			"source":            string(key.Source),
			"destination":       string(key.Destination),
			"relationship_type": string(key.Type),
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return graph.Edge{}, fmt.Errorf("build get edge query: %w", err)
	}

	var m EdgeModel
	if err := r.client.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.Edge{}, graph.NotFoundError{Edge: &key}
		}
		return graph.Edge{}, fmt.Errorf("get edge: %w", checkPostgresError(err))
	}
	return m.toEdge(), nil
}

// neighborsQuery selects the distinct (neighbor, relationship type) pairs
// around the query node. It uses ? placeholders so it can be nested.
func neighborsQuery(q graph.NeighborQuery) (sq.SelectBuilder, error) {
	node := string(q.Node)

	var neighbor sq.Sqlizer
	switch q.Filter.Direction {
	case graph.DirectionOutgoing:
		neighbor = sq.Expr("destination")
	case graph.DirectionIncoming:
		neighbor = sq.Expr("source")
	case graph.DirectionUndirected:
		neighbor = sq.Expr("CASE WHEN source = ? THEN destination ELSE source END", node)
	default:
		return sq.SelectBuilder{}, invalidDirection(q.Filter.Direction)
	}

	where, err := incidentEdgesPredicate(q.Node, q.Filter)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	builder := sq.Select().
		Distinct().
		Column(sq.Alias(neighbor, "urn")).
		Column("relationship_type").
		From(edgesTable).
		Where(where)
	if len(q.SourceTypes) > 0 {
		builder = builder.Where(sq.Expr("source_type = ANY(?)", pq.Array(q.SourceTypes)))
	}
	if len(q.DestinationTypes) > 0 {
		builder = builder.Where(sq.Expr("destination_type = ANY(?)", pq.Array(q.DestinationTypes)))
	}
	return builder, nil
}

func incidentEdgesPredicate(node graph.URN, filter graph.RelationshipFilter) (sq.Sqlizer, error) {
	urn := string(node)

	pred := sq.And{}
	switch filter.Direction {
	case graph.DirectionOutgoing:
		pred = append(pred, sq.Eq{"source": urn})
	case graph.DirectionIncoming:
		pred = append(pred, sq.Eq{"destination": urn})
	case graph.DirectionUndirected:
		pred = append(pred, sq.Or{sq.Eq{"source": urn}, sq.Eq{"destination": urn}})
	default:
		return nil, invalidDirection(filter.Direction)
	}

	if types := filter.ConcreteTypes(); len(types) > 0 {
		pred = append(pred, sq.Expr("relationship_type = ANY(?)", pq.Array(typeStrings(types))))
	}
	return pred, nil
}

func invalidDirection(dir graph.RelationshipDirection) error {
	return graph.InvalidArgumentError{
		Op:  "relationship filter",
		Err: fmt.Errorf("unknown direction %q", dir),
	}
}

func typeStrings(types []graph.RelationshipType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func edgeKeys(models []EdgeModel) []graph.EdgeKey {
	keys := make([]graph.EdgeKey, 0, len(models))
	for _, m := range models {
		keys = append(keys, m.toEdge().Key())
	}
	return keys
}
