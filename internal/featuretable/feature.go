// Package featuretable is a model and codec for NCBI's 5-column, tab
// delimited feature table (.tbl) format: the annotation format used for
// GenBank genome submissions.
package featuretable

// Fuzz is the partialness marker on one feature boundary. GenBank renders
// Before as "<" (the feature extends before this base) and After as ">"
// (the feature extends beyond it).
type Fuzz uint8

const (
	Exact Fuzz = iota
	Before
	After
)

// String returns the marker as it appears in a .tbl file.
func (f Fuzz) String() string {
	switch f {
	case Before:
		return "<"
	case After:
		return ">"
	}
	return ""
}

// Point is one boundary of a span: a 1-based base position plus its
// partialness marker.
type Point struct {
	Pos  int
	Fuzz Fuzz
}

// Span is one contiguous interval of a feature in transcription order.
// Reverse strand spans have Start.Pos > End.Pos; that ordering is never
// normalized away.
type Span struct {
	Start Point
	End   Point
}

// Reverse is whether the span is on the reverse strand.
func (s Span) Reverse() bool {
	return s.Start.Pos > s.End.Pos
}

// Left returns the smaller of the two boundary positions on the forward
// coordinate axis.
func (s Span) Left() int {
	if s.Reverse() {
		return s.End.Pos
	}
	return s.Start.Pos
}

// Right returns the larger of the two boundary positions.
func (s Span) Right() int {
	if s.Reverse() {
		return s.Start.Pos
	}
	return s.End.Pos
}

// Length is the number of bases the span covers, independent of strand.
func (s Span) Length() int {
	return s.Right() - s.Left() + 1
}

// Qualifier is a single key/value annotation beneath a feature. Values may
// be empty (flag-style qualifiers like /pseudo). Same-named qualifiers may
// repeat and keep their file order.
type Qualifier struct {
	Key   string
	Value string
}

// Feature is one annotation: a feature key (gene, CDS, mRNA, ...), one or
// more spans in transcription (join) order, and its qualifiers.
type Feature struct {
	Key        string
	Spans      []Span
	Qualifiers []Qualifier
}

// Reverse is whether the feature is on the reverse strand, judged from its
// first span.
func (f *Feature) Reverse() bool {
	if len(f.Spans) == 0 {
		return false
	}
	return f.Spans[0].Reverse()
}

// Qualifier returns the value of the first qualifier with the key passed.
func (f *Feature) Qualifier(key string) (value string, ok bool) {
	for _, q := range f.Qualifiers {
		if q.Key == key {
			return q.Value, true
		}
	}
	return "", false
}

// AddNote appends a note qualifier, skipping the append if an identical
// note is already present.
func (f *Feature) AddNote(text string) {
	for _, q := range f.Qualifiers {
		if q.Key == "note" && q.Value == text {
			return
		}
	}
	f.Qualifiers = append(f.Qualifiers, Qualifier{Key: "note", Value: text})
}

// Clone returns a deep copy of the feature.
func (f *Feature) Clone() *Feature {
	c := &Feature{
		Key:        f.Key,
		Spans:      append([]Span{}, f.Spans...),
		Qualifiers: append([]Qualifier{}, f.Qualifiers...),
	}
	return c
}

// Table is an ordered feature table scoped to one named sequence.
type Table struct {
	SeqID    string
	Features []*Feature
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{SeqID: t.SeqID}
	for _, f := range t.Features {
		c.Features = append(c.Features, f.Clone())
	}
	return c
}
