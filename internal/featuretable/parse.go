package featuretable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError is a malformed line in a feature table. Parsing stops at the
// first one; there is no partial recovery.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feature table line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// ParseFile reads a single feature table from the path passed.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// ParseAllFile reads every feature table from the path passed.
func ParseAllFile(path string) ([]*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tables, err := ParseAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tables, nil
}

// Parse reads one feature table: a ">Feature <seqid>" header, then one line
// per span with the feature key on the first span line, and qualifier lines
// of the form "\t\t\tkey\tvalue" beneath each feature. "<" and ">" markers
// on coordinates become Fuzz flags. Reverse strand spans (start > end) are
// kept in that order.
func Parse(r io.Reader) (*Table, error) {
	tables, err := ParseAll(r)
	if err != nil {
		return nil, err
	}
	if len(tables) != 1 {
		return nil, fmt.Errorf("expected one feature table, found %d", len(tables))
	}
	return tables[0], nil
}

// ParseAll reads a whole .tbl stream, which may hold one ">Feature" block
// per sequence.
func ParseAll(r io.Reader) ([]*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var tables []*Table
	var table *Table
	var current *Feature
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, ">Feature") {
			id := strings.TrimSpace(line[len(">Feature"):])
			if id == "" {
				return nil, &ParseError{lineNo, line, "header has no sequence id"}
			}
			table = &Table{SeqID: id}
			tables = append(tables, table)
			current = nil
			continue
		}

		if table == nil {
			return nil, &ParseError{lineNo, line, "missing >Feature header"}
		}

		cols := strings.Split(line, "\t")

		// qualifier line: three empty leading columns, then key [and value]
		if len(cols) >= 4 && cols[0] == "" && cols[1] == "" && cols[2] == "" {
			if current == nil {
				return nil, &ParseError{lineNo, line, "qualifier before any feature"}
			}
			if cols[3] == "" {
				return nil, &ParseError{lineNo, line, "empty qualifier name"}
			}
			q := Qualifier{Key: cols[3]}
			if len(cols) > 4 {
				q.Value = strings.Join(cols[4:], "\t")
			}
			current.Qualifiers = append(current.Qualifiers, q)
			continue
		}

		if len(cols) < 2 || cols[0] == "" || cols[1] == "" {
			return nil, &ParseError{lineNo, line, "expected start<TAB>end columns"}
		}

		start, err := parsePoint(cols[0])
		if err != nil {
			return nil, &ParseError{lineNo, line, err.Error()}
		}
		end, err := parsePoint(cols[1])
		if err != nil {
			return nil, &ParseError{lineNo, line, err.Error()}
		}
		span := Span{Start: start, End: end}

		if len(cols) >= 3 && cols[2] != "" {
			// first line of a new feature
			current = &Feature{Key: cols[2], Spans: []Span{span}}
			table.Features = append(table.Features, current)

			// the 5-column form allows a qualifier on the feature line too
			if len(cols) >= 4 && cols[3] != "" {
				q := Qualifier{Key: cols[3]}
				if len(cols) > 4 {
					q.Value = strings.Join(cols[4:], "\t")
				}
				current.Qualifiers = append(current.Qualifiers, q)
			}
			continue
		}

		// continuation span of a joined feature
		if current == nil {
			return nil, &ParseError{lineNo, line, "span continuation before any feature"}
		}
		current.Spans = append(current.Spans, span)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, &ParseError{lineNo, "", "missing >Feature header"}
	}

	return tables, nil
}

// parsePoint reads one coordinate column, peeling off a leading "<" or ">"
// partialness marker.
func parsePoint(col string) (Point, error) {
	p := Point{}
	switch {
	case strings.HasPrefix(col, "<"):
		p.Fuzz = Before
		col = col[1:]
	case strings.HasPrefix(col, ">"):
		p.Fuzz = After
		col = col[1:]
	}

	pos, err := strconv.Atoi(col)
	if err != nil {
		return p, fmt.Errorf("non-numeric coordinate %q", col)
	}
	if pos < 1 {
		return p, fmt.Errorf("coordinate %d is not 1-based", pos)
	}
	p.Pos = pos

	return p, nil
}
