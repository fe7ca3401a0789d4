package graph

import "strings"

// URN identifies an entity. It is opaque and case-sensitive; the only
// structure the graph relies on is the entity type segment in
// urn:<namespace>:<entityType>:<key>.
type URN string

func (u URN) String() string {
	return string(u)
}

// EntityType returns the type segment of the URN or an empty string when
// the URN does not follow the urn:<namespace>:<entityType>:<key> layout.
func (u URN) EntityType() string {
	parts := strings.SplitN(string(u), ":", 4)
	if len(parts) < 4 || parts[0] != "urn" {
		return ""
	}

	return parts[2]
}
