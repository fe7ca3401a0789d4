package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/lineage/core/graph"
)

// EntityRepository is the registry of known entities. It backs the
// existence check performed before lineage queries.
type EntityRepository struct {
	client *Client
}

func NewEntityRepository(client *Client) (*EntityRepository, error) {
	if client == nil {
		return nil, errNilPostgresClient
	}
	return &EntityRepository{
		client: client,
	}, nil
}

func (r *EntityRepository) Exists(ctx context.Context, urn graph.URN) (bool, error) {
	query, args, err := sq.Select("1").
		Prefix("SELECT EXISTS (").
		From(entitiesTable).
		Where(sq.Eq{"urn": string(urn)}).
		Suffix(")").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build entity exists query: %w", err)
	}

	var exists bool
	if err := r.client.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check entity exists: %w", checkPostgresError(err))
	}
	return exists, nil
}

// Upsert registers the entity or replaces its attributes. The entity type
// is taken from the URN when not set.
func (r *EntityRepository) Upsert(ctx context.Context, ent graph.Entity) error {
	if ent.URN == "" {
		return graph.InvalidArgumentError{Op: "upsert entity", Err: errors.New("urn cannot be empty")}
	}

	typ := ent.Type
	if typ == "" {
		typ = ent.URN.EntityType()
	}
	attrs := JSONMap(ent.Attributes)
	if attrs == nil {
		attrs = JSONMap{}
	}

	query, args, err := sq.Insert(entitiesTable).
		Columns("urn", "type", "attributes", "created_at", "updated_at").
		Values(string(ent.URN), typ, attrs, sq.Expr("now()"), sq.Expr("now()")).
		Suffix("ON CONFLICT (urn) DO UPDATE SET type = EXCLUDED.type, attributes = EXCLUDED.attributes, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert entity query: %w", err)
	}

	if _, err := r.client.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert entity: %w", checkPostgresError(err))
	}
	return nil
}

func (r *EntityRepository) Get(ctx context.Context, urn graph.URN) (graph.Entity, error) {
	query, args, err := sq.Select("urn", "type", "attributes", "created_at", "updated_at").
		From(entitiesTable).
		Where(sq.Eq{"urn": string(urn)}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return graph.Entity{}, fmt.Errorf("build get entity query: %w", err)
	}

	var m EntityModel
	if err := r.client.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.Entity{}, graph.NotFoundError{URN: urn}
		}
		return graph.Entity{}, fmt.Errorf("get entity: %w", checkPostgresError(err))
	}
	return m.toEntity(), nil
}

// Delete removes the entity record only. Incident edges are removed
// through the graph service.
func (r *EntityRepository) Delete(ctx context.Context, urn graph.URN) error {
	query, args, err := sq.Delete(entitiesTable).
		Where(sq.Eq{"urn": string(urn)}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete entity query: %w", err)
	}

	res, err := r.client.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete entity: %w", checkPostgresError(err))
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return graph.NotFoundError{URN: urn}
	}
	return nil
}
