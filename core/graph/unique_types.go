package graph

type uniqueURNs struct {
	m map[URN]struct{}
	l []URN
}

func newUniqueURNs(cap int) uniqueURNs {
	return uniqueURNs{
		m: make(map[URN]struct{}, cap),
		l: make([]URN, 0, cap),
	}
}

// add returns false when every given URN was already present.
func (u *uniqueURNs) add(urns ...URN) bool {
	added := false
	for _, urn := range urns {
		if _, ok := u.m[urn]; ok {
			continue
		}

		u.m[urn] = struct{}{}
		u.l = append(u.l, urn)
		added = true
	}
	return added
}

func (u *uniqueURNs) has(urn URN) bool {
	_, ok := u.m[urn]
	return ok
}

func (u *uniqueURNs) len() int {
	return len(u.l)
}

func uniqueTypes(types []RelationshipType) []RelationshipType {
	if len(types) == 0 {
		return nil
	}

	seen := make(map[RelationshipType]struct{}, len(types))
	l := make([]RelationshipType, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		l = append(l, t)
	}
	return l
}

func uniqueEntityTypes(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(types))
	l := make([]string, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		l = append(l, t)
	}
	return l
}
