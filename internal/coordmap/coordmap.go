// Package coordmap translates base positions between two sequences through
// their gapped pairwise alignment.
package coordmap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAlignment is returned when a sequence name isn't part of the mapper.
	ErrNoAlignment = errors.New("no alignment for sequence")

	// ErrOutOfRange is returned for positions outside a sequence's length.
	ErrOutOfRange = errors.New("position out of range")
)

// Mapped is the translation of one position into the paired sequence.
//
// When the source base aligns to a gap in the destination, Gap is true and
// Pos is the nearest destination base upstream of the gap. Mapping gaps to
// the closest upstream base is a deliberate policy so that annotation
// boundaries degrade gracefully instead of vanishing; callers that need the
// other direction must handle it themselves from OffStart/OffEnd.
type Mapped struct {
	// Pos is the 1-based position in the destination sequence. Zero when no
	// upstream base exists (the gap run reaches the first column).
	Pos int

	// Gap is whether the source base falls in a destination gap.
	Gap bool

	// OffStart is whether the gap run extends to the first alignment column:
	// the position falls before the first destination base.
	OffStart bool

	// OffEnd is whether the gap run extends past the last destination base:
	// the position falls beyond the end of the destination sequence.
	OffEnd bool
}

// side is one sequence's view of the alignment.
type side struct {
	name string

	// colOf[p-1] is the 0-based alignment column of ungapped position p
	colOf []int

	// posAt[c] is the 1-based ungapped position of the base in column c,
	// 0 where the column is a gap in this sequence
	posAt []int

	// upstream[c] is the 1-based position of the nearest base at or before
	// column c, 0 if none
	upstream []int

	// lastCol is the column of this sequence's final base
	lastCol int
}

// Mapper owns one immutable pairwise alignment. Built once, read-only
// afterward, and safe for concurrent lookups. Neither side is privileged:
// mapping works A to B and B to A from the same Mapper.
type Mapper struct {
	a, b side
}

// NewPair builds a Mapper from two equal-length gapped sequence strings.
// A column gapped in both sequences is a degenerate alignment and is
// rejected; use NewPairFromMSA for rows projected out of a multi-alignment.
func NewPair(nameA, alignedA, nameB, alignedB string) (*Mapper, error) {
	if nameA == "" || nameB == "" || nameA == nameB {
		return nil, fmt.Errorf("alignment needs two distinct sequence names, got %q and %q", nameA, nameB)
	}
	if len(alignedA) == 0 {
		return nil, errors.New("alignment is empty")
	}
	if len(alignedA) != len(alignedB) {
		return nil, fmt.Errorf(
			"aligned sequences differ in length: %s is %d, %s is %d",
			nameA, len(alignedA), nameB, len(alignedB),
		)
	}

	m := &Mapper{
		a: side{name: nameA, lastCol: -1},
		b: side{name: nameB, lastCol: -1},
	}
	for c := 0; c < len(alignedA); c++ {
		gapA := isGap(alignedA[c])
		gapB := isGap(alignedB[c])
		if gapA && gapB {
			return nil, fmt.Errorf("degenerate alignment: column %d is a gap in both sequences", c+1)
		}
		m.a.add(c, gapA)
		m.b.add(c, gapB)
	}
	if len(m.a.colOf) == 0 || len(m.b.colOf) == 0 {
		return nil, errors.New("alignment has a sequence with no bases")
	}

	return m, nil
}

// NewPairFromMSA builds a Mapper from two rows of a larger multi-alignment,
// first dropping the columns gapped in both rows (artifacts of the removed
// rows).
func NewPairFromMSA(nameA, rowA, nameB, rowB string) (*Mapper, error) {
	if len(rowA) != len(rowB) {
		return nil, fmt.Errorf(
			"aligned sequences differ in length: %s is %d, %s is %d",
			nameA, len(rowA), nameB, len(rowB),
		)
	}

	keptA := make([]byte, 0, len(rowA))
	keptB := make([]byte, 0, len(rowB))
	for c := 0; c < len(rowA); c++ {
		if isGap(rowA[c]) && isGap(rowB[c]) {
			continue
		}
		keptA = append(keptA, rowA[c])
		keptB = append(keptB, rowB[c])
	}

	return NewPair(nameA, string(keptA), nameB, string(keptB))
}

func (s *side) add(col int, gap bool) {
	if gap {
		s.posAt = append(s.posAt, 0)
	} else {
		s.colOf = append(s.colOf, col)
		s.posAt = append(s.posAt, len(s.colOf))
		s.lastCol = col
	}
	s.upstream = append(s.upstream, len(s.colOf))
}

// isGap reports whether the alignment character is a gap. Both "-" and "."
// forms are accepted.
func isGap(b byte) bool {
	return b == '-' || b == '.'
}

// Names returns the two sequence names of the alignment.
func (m *Mapper) Names() (string, string) {
	return m.a.name, m.b.name
}

// Len returns the ungapped length of the named sequence.
func (m *Mapper) Len(name string) (int, error) {
	src, _, err := m.sides(name)
	if err != nil {
		return 0, err
	}
	return len(src.colOf), nil
}

// MapPoint translates a 1-based position in the named sequence to the
// corresponding position in the paired sequence. A position aligned to a
// destination gap maps to the nearest upstream destination base with
// Gap set; see Mapped.
func (m *Mapper) MapPoint(name string, pos int) (Mapped, error) {
	src, dst, err := m.sides(name)
	if err != nil {
		return Mapped{}, err
	}
	if pos < 1 || pos > len(src.colOf) {
		return Mapped{}, fmt.Errorf("%w: %s position %d (length %d)", ErrOutOfRange, name, pos, len(src.colOf))
	}

	col := src.colOf[pos-1]
	if p := dst.posAt[col]; p != 0 {
		return Mapped{Pos: p}, nil
	}

	up := dst.upstream[col]
	return Mapped{
		Pos:      up,
		Gap:      true,
		OffStart: up == 0,
		OffEnd:   col > dst.lastCol,
	}, nil
}

// MapSpan translates both endpoints of an interval. A zero or reduced
// destination length is a valid outcome, not an error: the interval may
// straddle insertions or deletions in the paired sequence.
func (m *Mapper) MapSpan(name string, start, end int) (Mapped, Mapped, error) {
	s, err := m.MapPoint(name, start)
	if err != nil {
		return Mapped{}, Mapped{}, err
	}
	e, err := m.MapPoint(name, end)
	if err != nil {
		return Mapped{}, Mapped{}, err
	}
	return s, e, nil
}

func (m *Mapper) sides(name string) (src, dst *side, err error) {
	switch name {
	case m.a.name:
		return &m.a, &m.b, nil
	case m.b.name:
		return &m.b, &m.a, nil
	}
	return nil, nil, fmt.Errorf("%w: %q (alignment is %s vs %s)", ErrNoAlignment, name, m.a.name, m.b.name)
}
