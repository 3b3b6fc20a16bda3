package featuretable

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write serializes the table back to the tab delimited .tbl format. It is
// the structural inverse of Parse: parsing the output yields an equal table,
// and any table produced by Parse writes back to its (whitespace normalized)
// input. A single blank line terminates the table.
func Write(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, ">Feature %s\n", t.SeqID)
	for _, f := range t.Features {
		for i, s := range f.Spans {
			if i == 0 {
				fmt.Fprintf(bw, "%s%d\t%s%d\t%s\n", s.Start.Fuzz, s.Start.Pos, s.End.Fuzz, s.End.Pos, f.Key)
			} else {
				fmt.Fprintf(bw, "%s%d\t%s%d\n", s.Start.Fuzz, s.Start.Pos, s.End.Fuzz, s.End.Pos)
			}
		}
		for _, q := range f.Qualifiers {
			if q.Value == "" {
				fmt.Fprintf(bw, "\t\t\t%s\n", q.Key)
			} else {
				fmt.Fprintf(bw, "\t\t\t%s\t%s\n", q.Key, q.Value)
			}
		}
	}
	fmt.Fprint(bw, "\n")

	return bw.Flush()
}

// WriteFile writes the table to the path passed.
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, t); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}
