// Package fasta reads and writes the FASTA files this tool passes around:
// reference and target genomes, and the gapped alignment FASTAs produced by
// external aligners (gap characters are kept, not stripped).
package fasta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	biofasta "github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Record is one FASTA record. Seq is uppercased and may contain gap
// characters when the file is an alignment.
type Record struct {
	ID   string
	Desc string
	Seq  string
}

// UngappedLen is the record's biological length: its base count without
// alignment gaps.
func (r Record) UngappedLen() int {
	n := 0
	for i := 0; i < len(r.Seq); i++ {
		if r.Seq[i] != '-' && r.Seq[i] != '.' {
			n++
		}
	}
	return n
}

// Ungapped returns the sequence with alignment gaps removed.
func (r Record) Ungapped() string {
	var sb strings.Builder
	sb.Grow(len(r.Seq))
	for i := 0; i < len(r.Seq); i++ {
		if r.Seq[i] != '-' && r.Seq[i] != '.' {
			sb.WriteByte(r.Seq[i])
		}
	}
	return sb.String()
}

// Read parses all records from a FASTA file, in file order.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := biofasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNAredundant))
	sc := seqio.NewScanner(r)

	var records []Record
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		records = append(records, Record{
			ID:   s.ID,
			Desc: s.Desc,
			Seq:  strings.ToUpper(s.Seq.String()),
		})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to parse %s: no sequences", path)
	}

	return records, nil
}

// Write writes records to a FASTA file, 60 bases per line.
func Write(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := biofasta.NewWriter(f, 60)
	for _, r := range records {
		s := linear.NewSeq(r.ID, alphabet.BytesToLetters([]byte(r.Seq)), alphabet.DNAredundant)
		s.Desc = r.Desc
		if _, err := w.Write(s); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return f.Close()
}

// Lengths returns each record's ungapped length by ID.
func Lengths(records []Record) map[string]int {
	lengths := make(map[string]int, len(records))
	for _, r := range records {
		lengths[r.ID] = r.UngappedLen()
	}
	return lengths
}

// Split writes one single-record FASTA per record into outDir, named by the
// sanitized record ID, and returns the paths in record order.
func Split(records []Record, outDir string) (paths []string, err error) {
	for _, r := range records {
		p := filepath.Join(outDir, FileName(r.ID)+".fasta")
		if err := Write(p, []Record{r}); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileName turns a sequence ID into a safe file name.
func FileName(id string) string {
	return unsafeFileChars.ReplaceAllString(id, "_")
}
