// Package transfer relocates GenBank feature annotations from a reference
// sequence onto a target sequence through their pairwise alignment, and
// drives that procedure across whole multi-chromosome genomes.
package transfer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/broadinstitute/viral-phylo/internal/coordmap"
	"github.com/broadinstitute/viral-phylo/internal/featuretable"
)

// note attached to any CDS clipped at an assembly boundary
const cdsClipNote = "sequencing did not capture complete CDS"

// Transfer maps every feature of the reference table onto the target
// sequence of the mapper, producing a new table scoped to targetID. The
// input table is never modified. Feature order is preserved; dropped
// features are omitted without reordering. Returns the new table and the
// diagnostics gathered along the way.
func Transfer(tbl *featuretable.Table, m *coordmap.Mapper, targetID string, opts Options) (*featuretable.Table, *Report, error) {
	nameA, nameB := m.Names()
	var refID string
	switch targetID {
	case nameA:
		refID = nameB
	case nameB:
		refID = nameA
	default:
		return nil, nil, fmt.Errorf("%w: target %q (alignment is %s vs %s)", coordmap.ErrNoAlignment, targetID, nameA, nameB)
	}

	if !sameID(tbl.SeqID, refID) {
		return nil, nil, fmt.Errorf("feature table is for %q, not the reference %q in the alignment", tbl.SeqID, refID)
	}

	targetLen, err := m.Len(targetID)
	if err != nil {
		return nil, nil, err
	}

	e := &engine{
		m:         m,
		refID:     refID,
		targetID:  targetID,
		targetLen: targetLen,
		opts:      opts,
		report:    &Report{RefID: refID, TargetID: targetID},
	}

	out := &featuretable.Table{SeqID: targetID}
	for _, f := range tbl.Features {
		e.report.Features++

		nf, err := e.feature(f)
		if err != nil {
			return nil, nil, err
		}
		if nf == nil {
			e.report.Dropped++
			continue
		}

		e.report.Transferred++
		out.Features = append(out.Features, nf)
	}

	return out, e.report, nil
}

// engine is the per-chromosome transfer state.
type engine struct {
	m               *coordmap.Mapper
	refID, targetID string
	targetLen       int
	opts            Options
	report          *Report
}

// feature maps one feature. A nil result (and nil error) means the feature
// dropped entirely.
func (e *engine) feature(f *featuretable.Feature) (*featuretable.Feature, error) {
	out := &featuretable.Feature{Key: f.Key}
	cdsClipped := false

	for _, s := range f.Spans {
		mapped, kept, clipped, err := e.span(f, s)
		if err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", describe(f), err)
		}
		if clipped && f.Key == "CDS" {
			cdsClipped = true
		}
		if kept {
			out.Spans = append(out.Spans, mapped)
		}
	}

	if len(out.Spans) == 0 {
		e.report.add(Diagnostic{
			Kind:    KindDrop,
			Feature: describe(f),
			Detail:  "every interval fell in a deleted region or out of the target's bounds",
		})
		return nil, nil
	}

	for _, q := range f.Qualifiers {
		if e.opts.excluded(q.Key) {
			continue
		}
		if q.Key == "transl_except" || q.Key == "anticodon" {
			// these qualifiers embed coordinates of their own
			v, ok := e.remapQualifier(q.Value)
			if !ok {
				e.report.add(Diagnostic{
					Kind:    KindQualifierDrop,
					Feature: describe(f),
					Detail:  fmt.Sprintf("%s=%s refers to positions absent in %s", q.Key, q.Value, e.targetID),
				})
				continue
			}
			q.Value = v
		}
		out.Qualifiers = append(out.Qualifiers, q)
	}

	if cdsClipped {
		out.AddNote(cdsClipNote)
	}

	return out, nil
}

// span maps one interval. kept is false when the interval dropped; clipped
// is true when a boundary was cut back to the target's edge.
func (e *engine) span(f *featuretable.Feature, s featuretable.Span) (out featuretable.Span, kept, clipped bool, err error) {
	rev := s.Reverse()

	sM, err := e.m.MapPoint(e.refID, s.Start.Pos)
	if err != nil {
		return out, false, false, err
	}
	eM, err := e.m.MapPoint(e.refID, s.End.Pos)
	if err != nil {
		return out, false, false, err
	}

	startFuzz, endFuzz := s.Start.Fuzz, s.End.Fuzz
	if e.opts.IgnoreAmbigEdge {
		startFuzz, endFuzz = featuretable.Exact, featuretable.Exact
	}

	// the whole interval sits in one target-side deletion when both
	// endpoints snap to the same upstream base
	if sM.Gap && eM.Gap && sM.Pos == eM.Pos {
		if e.opts.GapPolicy == GapPoint && sM.Pos > 0 {
			e.report.add(Diagnostic{
				Kind:    KindGapPoint,
				Feature: describe(f),
				Detail:  fmt.Sprintf("interval %d..%d deleted in %s, kept as single base %d", s.Start.Pos, s.End.Pos, e.targetID, sM.Pos),
			})
			p := featuretable.Span{
				Start: featuretable.Point{Pos: sM.Pos, Fuzz: startFuzz},
				End:   featuretable.Point{Pos: eM.Pos, Fuzz: endFuzz},
			}
			return p, true, false, nil
		}

		e.report.add(Diagnostic{
			Kind:    KindDrop,
			Feature: describe(f),
			Detail:  fmt.Sprintf("interval %d..%d falls in a region deleted in %s", s.Start.Pos, s.End.Pos, e.targetID),
		})
		return out, false, false, nil
	}

	// partial out-of-bounds: one endpoint runs past the target assembly
	startOOB := sM.Gap && offEdge(sM, rev)
	endOOB := eM.Gap && offEdge(eM, !rev)

	if (startOOB || endOOB) && e.opts.DropPartial {
		e.report.add(Diagnostic{
			Kind:    KindDrop,
			Feature: describe(f),
			Detail:  fmt.Sprintf("interval %d..%d extends beyond the bounds of %s", s.Start.Pos, s.End.Pos, e.targetID),
		})
		return out, false, false, nil
	}

	newStart, newEnd := sM.Pos, eM.Pos
	if !rev {
		if endOOB {
			newEnd = e.targetLen
			endFuzz = featuretable.After
		}
		if startOOB {
			newStart = 1
			if f.Key == "CDS" {
				// clip in codon multiples to hold the reading frame
				newStart = (newEnd % 3) + 1
			}
			startFuzz = featuretable.Before
		}
	} else {
		if endOOB {
			newEnd = 1
			endFuzz = featuretable.After
		}
		if startOOB {
			r := e.targetLen
			if f.Key == "CDS" {
				r -= (r - newEnd + 1) % 3
				if r-newEnd < 3 {
					// less than a codon remains
					e.report.add(Diagnostic{
						Kind:    KindDrop,
						Feature: describe(f),
						Detail:  fmt.Sprintf("interval %d..%d clipped to under one codon", s.Start.Pos, s.End.Pos),
					})
					return out, false, false, nil
				}
			}
			newStart = r
			startFuzz = featuretable.Before
		}
	}

	if !rev && newStart > newEnd {
		e.report.add(Diagnostic{
			Kind:    KindDrop,
			Feature: describe(f),
			Detail:  fmt.Sprintf("interval %d..%d collapsed after clipping", s.Start.Pos, s.End.Pos),
		})
		return out, false, false, nil
	}

	out = featuretable.Span{
		Start: featuretable.Point{Pos: newStart, Fuzz: startFuzz},
		End:   featuretable.Point{Pos: newEnd, Fuzz: endFuzz},
	}

	clipped = startOOB || endOOB
	oldLen := s.Length()
	newLen := out.Length()
	switch {
	case clipped:
		e.report.add(Diagnostic{
			Kind:    KindTruncation,
			Feature: describe(f),
			Detail:  fmt.Sprintf("interval %d..%d clipped to %d..%d at the boundary of %s", s.Start.Pos, s.End.Pos, newStart, newEnd, e.targetID),
		})
	case newLen != oldLen:
		e.report.add(Diagnostic{
			Kind:    KindLengthChange,
			Feature: describe(f),
			Detail:  fmt.Sprintf("interval %d..%d length changed from %d to %d (indel in %s)", s.Start.Pos, s.End.Pos, oldLen, newLen, e.targetID),
		})
	case sM.Gap || eM.Gap:
		e.report.add(Diagnostic{
			Kind:    KindLengthChange,
			Feature: describe(f),
			Detail:  fmt.Sprintf("boundary of interval %d..%d moved to the nearest upstream base", s.Start.Pos, s.End.Pos),
		})
	}

	return out, true, clipped, nil
}

// offEdge is whether a gap-adjacent mapping ran off the target's start
// (forward direction of travel) or end.
func offEdge(m coordmap.Mapped, towardEnd bool) bool {
	if towardEnd {
		return m.OffEnd
	}
	return m.OffStart
}

var qualCoords = regexp.MustCompile(`(\d+)\.\.(\d+)`)

// remapQualifier rewrites "pos:X..Y" style coordinates inside a qualifier
// value. Not ok when a referenced position has no base in the target.
func (e *engine) remapQualifier(value string) (string, bool) {
	ok := true
	out := qualCoords.ReplaceAllStringFunc(value, func(pair string) string {
		parts := strings.SplitN(pair, "..", 2)
		a, _ := strconv.Atoi(parts[0])
		b, _ := strconv.Atoi(parts[1])

		mA, errA := e.m.MapPoint(e.refID, a)
		mB, errB := e.m.MapPoint(e.refID, b)
		if errA != nil || errB != nil || mA.Gap || mB.Gap {
			ok = false
			return pair
		}
		return fmt.Sprintf("%d..%d", mA.Pos, mB.Pos)
	})

	return out, ok
}

// describe names a feature for diagnostics: its key plus its gene, locus
// tag, or product when one is present.
func describe(f *featuretable.Feature) string {
	for _, key := range []string{"gene", "locus_tag", "product"} {
		if v, ok := f.Qualifier(key); ok && v != "" {
			return f.Key + " " + v
		}
	}
	return f.Key
}

// sameID is the loose identity check between a table's sequence ID and a
// FASTA record ID (tables often carry "gb|ACCESSION|" style IDs).
func sameID(a, b string) bool {
	if a == b {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
