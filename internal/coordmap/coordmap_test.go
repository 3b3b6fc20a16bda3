package coordmap

import (
	"errors"
	"testing"
)

func Test_NewPair_errors(t *testing.T) {
	tests := []struct {
		name             string
		nameA, a         string
		nameB, b         string
	}{
		{"empty", "ref", "", "alt", ""},
		{"length mismatch", "ref", "ACGT", "alt", "ACG"},
		{"same name", "ref", "ACGT", "ref", "ACGT"},
		{"degenerate column", "ref", "AC-T", "alt", "AC-T"},
		{"all gap sequence", "ref", "ACGT", "alt", "----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPair(tt.nameA, tt.a, tt.nameB, tt.b); err == nil {
				t.Errorf("NewPair(%q, %q) expected an error", tt.a, tt.b)
			}
		})
	}
}

func Test_MapPoint_identity(t *testing.T) {
	m, err := NewPair("ref", "ACGTACGT", "alt", "ACGTACGT")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	for pos := 1; pos <= 8; pos++ {
		got, err := m.MapPoint("ref", pos)
		if err != nil {
			t.Fatalf("MapPoint(ref, %d) err = %v", pos, err)
		}
		if got.Pos != pos || got.Gap {
			t.Errorf("MapPoint(ref, %d) = %+v, want exact %d", pos, got, pos)
		}
	}
}

func Test_MapPoint_deletion(t *testing.T) {
	// base 5 of the reference is deleted in the target
	m, err := NewPair("ref", "ACGTACGT", "alt", "ACGT-CGT")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	tests := []struct {
		pos  int
		want Mapped
	}{
		{1, Mapped{Pos: 1}},
		{4, Mapped{Pos: 4}},
		{5, Mapped{Pos: 4, Gap: true}}, // snaps to the nearest upstream base
		{6, Mapped{Pos: 5}},
		{8, Mapped{Pos: 7}},
	}

	for _, tt := range tests {
		got, err := m.MapPoint("ref", tt.pos)
		if err != nil {
			t.Fatalf("MapPoint(ref, %d) err = %v", tt.pos, err)
		}
		if got != tt.want {
			t.Errorf("MapPoint(ref, %d) = %+v, want %+v", tt.pos, got, tt.want)
		}
	}
}

func Test_MapPoint_insertion(t *testing.T) {
	// the target carries two extra bases after reference base 4
	m, err := NewPair("ref", "ACGT--CGT", "alt", "ACGTTACGT")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	got, err := m.MapPoint("ref", 5)
	if err != nil {
		t.Fatalf("MapPoint(ref, 5) err = %v", err)
	}
	if got.Pos != 7 || got.Gap {
		t.Errorf("MapPoint(ref, 5) = %+v, want exact 7", got)
	}

	// and back: target bases inside the insertion snap upstream in ref
	back, err := m.MapPoint("alt", 5)
	if err != nil {
		t.Fatalf("MapPoint(alt, 5) err = %v", err)
	}
	if !back.Gap || back.Pos != 4 {
		t.Errorf("MapPoint(alt, 5) = %+v, want gap-adjacent 4", back)
	}
}

func Test_MapPoint_offEnds(t *testing.T) {
	// the target misses the first two and last three reference bases
	m, err := NewPair("ref", "ACGTACGTA", "alt", "--GTAC---")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	start, err := m.MapPoint("ref", 1)
	if err != nil {
		t.Fatalf("MapPoint(ref, 1) err = %v", err)
	}
	if !start.Gap || !start.OffStart || start.Pos != 0 {
		t.Errorf("MapPoint(ref, 1) = %+v, want OffStart with no position", start)
	}

	end, err := m.MapPoint("ref", 9)
	if err != nil {
		t.Fatalf("MapPoint(ref, 9) err = %v", err)
	}
	if !end.Gap || !end.OffEnd || end.Pos != 4 {
		t.Errorf("MapPoint(ref, 9) = %+v, want OffEnd snapped to 4", end)
	}
}

func Test_MapPoint_monotone(t *testing.T) {
	m, err := NewPair("ref", "AC-GTAC--GT", "alt", "ACTG-ACGTGT")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	n, _ := m.Len("ref")
	prev := 0
	for pos := 1; pos <= n; pos++ {
		got, err := m.MapPoint("ref", pos)
		if err != nil {
			t.Fatalf("MapPoint(ref, %d) err = %v", pos, err)
		}
		if got.Pos < prev {
			t.Errorf("MapPoint(ref, %d) = %d, before previous %d: mapping reordered", pos, got.Pos, prev)
		}
		prev = got.Pos
	}
}

func Test_MapPoint_inverse(t *testing.T) {
	m, err := NewPair("ref", "AC-GTAC--GT", "alt", "ACTG-ACGTGT")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	n, _ := m.Len("ref")
	for pos := 1; pos <= n; pos++ {
		fwd, err := m.MapPoint("ref", pos)
		if err != nil {
			t.Fatalf("MapPoint(ref, %d) err = %v", pos, err)
		}
		if fwd.Gap {
			continue // no base on the other side to come back from
		}

		back, err := m.MapPoint("alt", fwd.Pos)
		if err != nil {
			t.Fatalf("MapPoint(alt, %d) err = %v", fwd.Pos, err)
		}
		if back.Pos != pos || back.Gap {
			t.Errorf("MapPoint round trip of ref %d: got %+v", pos, back)
		}
	}
}

func Test_MapPoint_errors(t *testing.T) {
	m, err := NewPair("ref", "ACGT", "alt", "AC-T")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	if _, err := m.MapPoint("ref", 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MapPoint(ref, 0) err = %v, want ErrOutOfRange", err)
	}
	if _, err := m.MapPoint("ref", 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MapPoint(ref, 5) err = %v, want ErrOutOfRange", err)
	}
	if _, err := m.MapPoint("alt", 4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MapPoint(alt, 4) err = %v, want ErrOutOfRange (alt has 3 bases)", err)
	}
	if _, err := m.MapPoint("other", 1); !errors.Is(err, ErrNoAlignment) {
		t.Errorf("MapPoint(other, 1) err = %v, want ErrNoAlignment", err)
	}
}

func Test_NewPairFromMSA(t *testing.T) {
	// rows projected out of a 3-way alignment: column 3 was a base only in
	// the removed row, leaving a both-gap column to strip
	m, err := NewPairFromMSA("ref", "AC-GT", "alt", "AC-G-")
	if err != nil {
		t.Fatalf("NewPairFromMSA() err = %v", err)
	}

	if n, _ := m.Len("ref"); n != 4 {
		t.Errorf("Len(ref) = %d, want 4", n)
	}
	if n, _ := m.Len("alt"); n != 3 {
		t.Errorf("Len(alt) = %d, want 3", n)
	}

	got, err := m.MapPoint("ref", 3)
	if err != nil {
		t.Fatalf("MapPoint(ref, 3) err = %v", err)
	}
	if got.Pos != 3 || got.Gap {
		t.Errorf("MapPoint(ref, 3) = %+v, want exact 3", got)
	}
}

func Test_MapSpan(t *testing.T) {
	m, err := NewPair("ref", "ACGTACGT", "alt", "ACGT-CGT")
	if err != nil {
		t.Fatalf("NewPair() err = %v", err)
	}

	s, e, err := m.MapSpan("ref", 2, 7)
	if err != nil {
		t.Fatalf("MapSpan() err = %v", err)
	}
	if s.Pos != 2 || e.Pos != 6 {
		t.Errorf("MapSpan(ref, 2, 7) = %d..%d, want 2..6", s.Pos, e.Pos)
	}
}
