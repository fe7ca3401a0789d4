package graph

type RelationshipType string

// RelationshipTypeAll explicitly selects every relationship type. It is
// distinct from an empty type set, which means the caller did not narrow
// the types at all.
const RelationshipTypeAll RelationshipType = "*"

func (t RelationshipType) String() string {
	return string(t)
}

// Edge is a directed, typed relationship between two entities. A store
// keeps at most one edge per (Source, Destination, Type) triple.
type Edge struct {
	Source      URN                    `json:"source" validate:"required"`
	Destination URN                    `json:"destination" validate:"required"`
	Type        RelationshipType       `json:"relationship_type" validate:"required"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

func (e Edge) Key() EdgeKey {
	return EdgeKey{
		Source:      e.Source,
		Destination: e.Destination,
		Type:        e.Type,
	}
}

// EdgeKey is the identity of an edge.
type EdgeKey struct {
	Source      URN              `json:"source" validate:"required"`
	Destination URN              `json:"destination" validate:"required"`
	Type        RelationshipType `json:"relationship_type" validate:"required"`
}

// Less orders keys by source, destination and then type.
func (k EdgeKey) Less(other EdgeKey) bool {
	if k.Source != other.Source {
		return k.Source < other.Source
	}
	if k.Destination != other.Destination {
		return k.Destination < other.Destination
	}
	return k.Type < other.Type
}

// RelatedEntity is an entity reached in a single hop, together with the
// type of the edge that reached it.
type RelatedEntity struct {
	Type RelationshipType `json:"relationship_type"`
	URN  URN              `json:"urn"`
}

// Less orders related entities by URN and then relationship type. Every
// store lists neighbors in this order.
func (r RelatedEntity) Less(other RelatedEntity) bool {
	if r.URN != other.URN {
		return r.URN < other.URN
	}
	return r.Type < other.Type
}

type RelatedEntitiesResult struct {
	Start    int             `json:"start"`
	Count    int             `json:"count"`
	Total    int             `json:"total"`
	Entities []RelatedEntity `json:"entities"`
}
