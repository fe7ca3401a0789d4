package graph

type RelationshipDirection string

const (
	DirectionIncoming   RelationshipDirection = "INCOMING"
	DirectionOutgoing   RelationshipDirection = "OUTGOING"
	DirectionUndirected RelationshipDirection = "UNDIRECTED"
)

func (dir RelationshipDirection) IsValid() bool {
	switch dir {
	case DirectionIncoming, DirectionOutgoing, DirectionUndirected:
		return true
	default:
		return false
	}
}

// Opposite swaps INCOMING and OUTGOING. UNDIRECTED stays as is.
func (dir RelationshipDirection) Opposite() RelationshipDirection {
	switch dir {
	case DirectionIncoming:
		return DirectionOutgoing
	case DirectionOutgoing:
		return DirectionIncoming
	default:
		return dir
	}
}

// RelationshipFilter selects edges by direction relative to a perspective
// node and by relationship type.
type RelationshipFilter struct {
	Types     []RelationshipType    `json:"relationship_types"`
	Direction RelationshipDirection `json:"direction" validate:"required,oneof=INCOMING OUTGOING UNDIRECTED"`
}

func NewRelationshipFilter(dir RelationshipDirection, types ...RelationshipType) RelationshipFilter {
	return RelationshipFilter{
		Types:     uniqueTypes(types),
		Direction: dir,
	}
}

// AnyType reports whether the filter accepts every relationship type,
// either because no type was given or because RelationshipTypeAll was.
func (f RelationshipFilter) AnyType() bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == RelationshipTypeAll {
			return true
		}
	}
	return false
}

func (f RelationshipFilter) MatchesType(t RelationshipType) bool {
	if f.AnyType() {
		return true
	}
	for _, ft := range f.Types {
		if ft == t {
			return true
		}
	}
	return false
}

func (f RelationshipFilter) MatchesDirection(e Edge, perspective URN) bool {
	switch f.Direction {
	case DirectionOutgoing:
		return e.Source == perspective
	case DirectionIncoming:
		return e.Destination == perspective
	case DirectionUndirected:
		return e.Source == perspective || e.Destination == perspective
	default:
		return false
	}
}

// Matches reports whether the edge passes both the direction and the type
// condition when viewed from perspective.
func (f RelationshipFilter) Matches(e Edge, perspective URN) bool {
	return f.MatchesDirection(e, perspective) && f.MatchesType(e.Type)
}

// ConcreteTypes returns the explicit types of the filter, or nil when the
// filter accepts any type.
func (f RelationshipFilter) ConcreteTypes() []RelationshipType {
	if f.AnyType() {
		return nil
	}
	return f.Types
}
