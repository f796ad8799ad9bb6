package version

// bound is one end of a version interval.
type bound struct {
	version   string
	inclusive bool
}

// Range is the set of versions accepted by a group of constraints.
// A nil bound is unbounded on that side.
type Range struct {
	lower *bound
	upper *bound
	empty bool
}

// Intersect computes the range accepted by all deps. Empty reports whether
// no version can satisfy them together.
func Intersect(deps ...Dependency) Range {
	var r Range
	for _, d := range deps {
		r = r.with(d)
	}
	return r
}

// Empty reports whether the range admits no version.
func (r Range) Empty() bool { return r.empty }

// Contains reports whether v lies within the range.
func (r Range) Contains(v string) bool {
	if r.empty {
		return false
	}
	if r.lower != nil {
		c := Compare(v, r.lower.version)
		if c < 0 || (c == 0 && !r.lower.inclusive) {
			return false
		}
	}
	if r.upper != nil {
		c := Compare(v, r.upper.version)
		if c > 0 || (c == 0 && !r.upper.inclusive) {
			return false
		}
	}
	return true
}

func (r Range) with(d Dependency) Range {
	if r.empty {
		return r
	}
	switch d.Op {
	case OpAny:
		return r
	case OpEQ:
		r.lower = tighterLower(r.lower, &bound{d.Version, true})
		r.upper = tighterUpper(r.upper, &bound{d.Version, true})
	case OpGE, OpGT:
		r.lower = tighterLower(r.lower, &bound{d.Version, d.Op == OpGE})
	case OpLE, OpLT:
		r.upper = tighterUpper(r.upper, &bound{d.Version, d.Op == OpLE})
	}
	if r.lower != nil && r.upper != nil {
		c := Compare(r.lower.version, r.upper.version)
		if c > 0 || (c == 0 && !(r.lower.inclusive && r.upper.inclusive)) {
			r.empty = true
		}
	}
	return r
}

func tighterLower(cur, next *bound) *bound {
	if cur == nil {
		return next
	}
	switch c := Compare(next.version, cur.version); {
	case c > 0:
		return next
	case c == 0 && !next.inclusive:
		return next
	}
	return cur
}

func tighterUpper(cur, next *bound) *bound {
	if cur == nil {
		return next
	}
	switch c := Compare(next.version, cur.version); {
	case c < 0:
		return next
	case c == 0 && !next.inclusive:
		return next
	}
	return cur
}
