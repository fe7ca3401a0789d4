package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goto/lineage/core/graph"
)

type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	ba, err := m.MarshalJSON()
	return string(ba), err
}

func (m *JSONMap) Scan(value interface{}) error {
	var ba []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
	t := map[string]interface{}{}
	err := json.Unmarshal(ba, &t)
	*m = JSONMap(t)
	return err
}

// MarshalJSON to output non base64 encoded []byte
func (m JSONMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	t := (map[string]interface{})(m)
	return json.Marshal(t)
}

// UnmarshalJSON to deserialize []byte
func (m *JSONMap) UnmarshalJSON(b []byte) error {
	t := map[string]interface{}{}
	err := json.Unmarshal(b, &t)
	*m = JSONMap(t)
	return err
}

type EdgeModel struct {
	Source           string    `db:"source"`
	Destination      string    `db:"destination"`
	RelationshipType string    `db:"relationship_type"`
	SourceType       string    `db:"source_type"`
	DestinationType  string    `db:"destination_type"`
	Properties       JSONMap   `db:"properties"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func newEdgeModel(e graph.Edge) EdgeModel {
	return EdgeModel{
		Source:           string(e.Source),
		Destination:      string(e.Destination),
		RelationshipType: string(e.Type),
		SourceType:       e.Source.EntityType(),
		DestinationType:  e.Destination.EntityType(),
		Properties:       JSONMap(e.Properties),
	}
}

func (m EdgeModel) toEdge() graph.Edge {
	return graph.Edge{
		Source:      graph.URN(m.Source),
		Destination: graph.URN(m.Destination),
		Type:        graph.RelationshipType(m.RelationshipType),
		Properties:  m.Properties,
	}
}

type NeighborModel struct {
	URN              string `db:"urn"`
	RelationshipType string `db:"relationship_type"`
}

type NeighborModels []NeighborModel

func (ms NeighborModels) toRelatedEntities() []graph.RelatedEntity {
	related := make([]graph.RelatedEntity, 0, len(ms))
	for _, m := range ms {
		related = append(related, graph.RelatedEntity{
			Type: graph.RelationshipType(m.RelationshipType),
			URN:  graph.URN(m.URN),
		})
	}
	return related
}

type EntityModel struct {
	URN        string    `db:"urn"`
	Type       string    `db:"type"`
	Attributes JSONMap   `db:"attributes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m EntityModel) toEntity() graph.Entity {
	return graph.Entity{
		URN:        graph.URN(m.URN),
		Type:       m.Type,
		Attributes: m.Attributes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
