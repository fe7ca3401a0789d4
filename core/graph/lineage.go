package graph

type LineageDirection string

const (
	LineageDirectionUpstream   LineageDirection = "UPSTREAM"
	LineageDirectionDownstream LineageDirection = "DOWNSTREAM"
)

func (dir LineageDirection) IsValid() bool {
	switch dir {
	case LineageDirectionUpstream, LineageDirectionDownstream:
		return true
	default:
		return false
	}
}

// EdgeDirection is the direction, relative to the current node, of the
// lineage edges followed when walking in dir.
func (dir LineageDirection) EdgeDirection() RelationshipDirection {
	if dir == LineageDirectionUpstream {
		return DirectionIncoming
	}
	return DirectionOutgoing
}

type LineageQuery struct {
	Direction LineageDirection `json:"direction" validate:"required,oneof=UPSTREAM DOWNSTREAM"`
	Offset    int              `json:"offset" validate:"gte=0"`
	// Count is the page size. The page is the window [Offset, Offset+Count)
	// of the discovery order, so a Count of 0 yields no relationships while
	// Total still reports every reached entity.
	Count   int `json:"count" validate:"gte=0"`
	MaxHops int `json:"max_hops" validate:"gte=0"`

	// RelationshipTypes narrows the lineage bearing types. Empty keeps all.
	RelationshipTypes []RelationshipType `json:"relationship_types,omitempty"`
	// EntityTypes restricts the entities reached at every hop.
	EntityTypes []string `json:"entity_types,omitempty"`
}

type LineageRelationship struct {
	URN    URN              `json:"urn"`
	Type   RelationshipType `json:"relationship_type"`
	Degree int              `json:"degree"`
	// Path holds the intermediate entities between the origin and URN.
	Path []URN `json:"path"`
}

type EntityLineageResult struct {
	Start         int                   `json:"start"`
	Count         int                   `json:"count"`
	Total         int                   `json:"total"`
	Relationships []LineageRelationship `json:"relationships"`
}

// LineageSpec declares a lineage bearing relationship type. An inverted
// type points against the flow of data, e.g. job Consumes dataset.
type LineageSpec struct {
	Type     RelationshipType `json:"type" yaml:"type" mapstructure:"type"`
	Inverted bool             `json:"inverted" yaml:"inverted" mapstructure:"inverted"`
}

// LineageRegistry knows which relationship types carry lineage. An empty
// registry treats every relationship type as lineage bearing.
type LineageRegistry struct {
	forward  []RelationshipType
	inverted []RelationshipType
}

func NewLineageRegistry(specs ...LineageSpec) LineageRegistry {
	var r LineageRegistry
	for _, spec := range specs {
		if spec.Type == "" {
			continue
		}
		if spec.Inverted {
			r.inverted = append(r.inverted, spec.Type)
		} else {
			r.forward = append(r.forward, spec.Type)
		}
	}
	r.forward = uniqueTypes(r.forward)
	r.inverted = uniqueTypes(r.inverted)
	return r
}

func (r LineageRegistry) IsEmpty() bool {
	return len(r.forward) == 0 && len(r.inverted) == 0
}

// lineageHop is a single neighbor lookup issued for every frontier node.
type lineageHop struct {
	filter      RelationshipFilter
	entityTypes []string
}

func (h lineageHop) query(node URN) NeighborQuery {
	q := NeighborQuery{Node: node, Filter: h.filter}
	if h.filter.Direction == DirectionIncoming {
		q.SourceTypes = h.entityTypes
	} else {
		q.DestinationTypes = h.entityTypes
	}
	return q
}

// hops plans the lookups needed to walk one level in dir. A nil result
// means no relationship type can carry lineage for the given narrowing.
func (r LineageRegistry) hops(dir LineageDirection, narrow []RelationshipType, entityTypes []string) []lineageHop {
	narrowing := NewRelationshipFilter(dir.EdgeDirection(), narrow...)
	entityTypes = uniqueEntityTypes(entityTypes)

	if r.IsEmpty() {
		return []lineageHop{{
			filter:      RelationshipFilter{Types: narrowing.ConcreteTypes(), Direction: dir.EdgeDirection()},
			entityTypes: entityTypes,
		}}
	}

	var hops []lineageHop
	if forward := intersectTypes(r.forward, narrowing); len(forward) > 0 {
		hops = append(hops, lineageHop{
			filter:      RelationshipFilter{Types: forward, Direction: dir.EdgeDirection()},
			entityTypes: entityTypes,
		})
	}
	if inverted := intersectTypes(r.inverted, narrowing); len(inverted) > 0 {
		hops = append(hops, lineageHop{
			filter:      RelationshipFilter{Types: inverted, Direction: dir.EdgeDirection().Opposite()},
			entityTypes: entityTypes,
		})
	}
	return hops
}

func intersectTypes(types []RelationshipType, narrowing RelationshipFilter) []RelationshipType {
	var out []RelationshipType
	for _, t := range types {
		if narrowing.MatchesType(t) {
			out = append(out, t)
		}
	}
	return out
}
