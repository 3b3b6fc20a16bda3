package transfer

import "fmt"

// GapPolicy decides what happens to an interval whose endpoints both land
// in the same target-side deletion.
type GapPolicy uint8

const (
	// GapDrop removes the interval (and the feature, if it was the last one).
	GapDrop GapPolicy = iota

	// GapPoint degenerates the interval to the single base upstream of the
	// deletion.
	GapPoint
)

// ParseGapPolicy reads the policy from its flag/config spelling.
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch s {
	case "", "drop":
		return GapDrop, nil
	case "point":
		return GapPoint, nil
	}
	return GapDrop, fmt.Errorf("unknown gap-policy %q (expected drop or point)", s)
}

// Options adjusts the transfer engine's edge-case behavior. The zero value
// is the default behavior: clip partial features at assembly boundaries,
// drop fully deleted intervals, honor fuzzy markers, keep all qualifiers.
type Options struct {
	// DropPartial drops features partly out of the target's bounds instead
	// of clipping them to the boundary with a fuzzy marker.
	DropPartial bool

	// GapPolicy for intervals wholly inside a target-side deletion.
	GapPolicy GapPolicy

	// IgnoreAmbigEdge treats "<"/">" in the reference table as exact.
	IgnoreAmbigEdge bool

	// ExcludeQualifiers lists qualifier keys omitted from the output.
	ExcludeQualifiers []string
}

func (o Options) excluded(key string) bool {
	for _, k := range o.ExcludeQualifiers {
		if k == key {
			return true
		}
	}
	return false
}
