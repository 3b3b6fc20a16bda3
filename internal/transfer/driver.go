package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"text/tabwriter"

	"github.com/broadinstitute/viral-phylo/internal/align"
	"github.com/broadinstitute/viral-phylo/internal/coordmap"
	"github.com/broadinstitute/viral-phylo/internal/fasta"
	"github.com/broadinstitute/viral-phylo/internal/featuretable"
)

// UnmatchedChromosomeError is a reference chromosome with annotations but no
// matching target chromosome. Fatal only in strict mode.
type UnmatchedChromosomeError struct {
	RefID string
}

func (e *UnmatchedChromosomeError) Error() string {
	return fmt.Sprintf("no target chromosome matches reference %s", e.RefID)
}

// RefChrom is one reference chromosome: its ungapped sequence and its
// parsed feature table.
type RefChrom struct {
	ID    string
	Seq   string
	Table *featuretable.Table
}

// Job is one chromosome's independent unit of work: align (unless
// pre-aligned rows are supplied), build the coordinate mapper, transfer
// the annotations, and write the output table.
type Job struct {
	RefID    string
	TargetID string

	// ungapped sequences, aligned by the driver's Aligner
	RefSeq    string
	TargetSeq string

	// pre-aligned gapped rows; when set the aligner is skipped
	RefAligned    string
	TargetAligned string

	Table   *featuretable.Table
	OutPath string
}

// DriverOptions configures a multi-chromosome run.
type DriverOptions struct {
	// Workers caps how many chromosomes transfer in parallel; 0 means one
	// worker per chromosome.
	Workers int

	// Aligner used for jobs without pre-aligned rows.
	Aligner align.Aligner

	// TmpDir for aligner scratch files; os.MkdirTemp default when empty.
	TmpDir string

	// Transfer options applied to every chromosome.
	Transfer Options
}

// ChromResult is the outcome of one chromosome's job.
type ChromResult struct {
	RefID    string  `json:"ref"`
	TargetID string  `json:"target"`
	OutPath  string  `json:"out,omitempty"`
	Report   *Report `json:"report,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// RunReport is the outcome of a whole multi-chromosome run. Results keep
// the input chromosome order.
type RunReport struct {
	Results   []ChromResult `json:"results"`
	Unmatched []string      `json:"unmatched,omitempty"`
}

// Failed counts chromosomes that errored.
func (r *RunReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Error != "" {
			n++
		}
	}
	return n
}

// Summary renders the run outcome: successes, drops, truncations, and
// unmatched chromosomes.
func (r *RunReport) Summary(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, res := range r.Results {
		if res.Error != "" {
			fmt.Fprintf(tw, "%s -> %s\tfailed\t%s\n", res.RefID, res.TargetID, res.Error)
			continue
		}
		fmt.Fprintf(tw, "%s -> %s\tok\t%d transferred\t%d dropped\t%s\n",
			res.RefID, res.TargetID, res.Report.Transferred, res.Report.Dropped, res.OutPath)
	}
	for _, id := range r.Unmatched {
		fmt.Fprintf(tw, "%s\tskipped\tno matching target chromosome\n", id)
	}

	tw.Flush()
}

// WriteJSON writes the machine-readable run report.
func (r *RunReport) WriteJSON(path string) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run report: %v", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write the run report: %v", err)
	}

	return nil
}

// MatchChromosomes pairs reference chromosomes with target records, either
// through the explicit ref-to-target name list or by name equality. In
// strict mode an unmatched reference chromosome is an
// *UnmatchedChromosomeError; otherwise it is returned for warning and the
// matched chromosomes proceed.
func MatchChromosomes(refs []RefChrom, targets []fasta.Record, pairs map[string]string, outDir string, strict bool) (jobs []Job, unmatched []string, err error) {
	byID := make(map[string]fasta.Record, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
	}
	lengths := fasta.Lengths(targets)

	for _, ref := range refs {
		targetID := ref.ID
		if explicit, ok := pairs[ref.ID]; ok {
			targetID = explicit
		}

		target, ok := byID[targetID]
		if !ok {
			if strict {
				return nil, nil, &UnmatchedChromosomeError{RefID: ref.ID}
			}
			unmatched = append(unmatched, ref.ID)
			continue
		}
		if lengths[target.ID] == 0 {
			return nil, nil, fmt.Errorf("target chromosome %s has no bases", target.ID)
		}

		jobs = append(jobs, Job{
			RefID:     ref.ID,
			TargetID:  target.ID,
			RefSeq:    ref.Seq,
			TargetSeq: target.Ungapped(),
			Table:     ref.Table,
			OutPath:   filepath.Join(outDir, fasta.FileName(target.ID)+".tbl"),
		})
	}

	return jobs, unmatched, nil
}

// Run executes the jobs in a bounded worker pool. Chromosomes share no
// mutable state, so one failing never aborts its siblings; cancelling the
// context abandons unstarted and in-flight jobs while completed outputs
// stay in place. Run errors only when every chromosome failed.
func Run(ctx context.Context, jobs []Job, opts DriverOptions) (*RunReport, error) {
	report := &RunReport{Results: make([]ChromResult, len(jobs))}
	if len(jobs) == 0 {
		return report, nil
	}

	workers := opts.Workers
	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}

	jobChan := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobChan {
				if err := ctx.Err(); err != nil {
					report.Results[i] = ChromResult{
						RefID:    jobs[i].RefID,
						TargetID: jobs[i].TargetID,
						Error:    err.Error(),
					}
					continue
				}
				report.Results[i] = runJob(ctx, jobs[i], opts)
			}
		}()
	}

	for i := range jobs {
		select {
		case <-ctx.Done():
			report.Results[i] = ChromResult{
				RefID:    jobs[i].RefID,
				TargetID: jobs[i].TargetID,
				Error:    ctx.Err().Error(),
			}
		case jobChan <- i:
		}
	}
	close(jobChan)
	wg.Wait()

	if failed := report.Failed(); failed == len(jobs) {
		return report, fmt.Errorf("all %d chromosomes failed", failed)
	}

	return report, nil
}

// runJob is one chromosome: align if needed, build the mapper, transfer,
// write the table.
func runJob(ctx context.Context, job Job, opts DriverOptions) ChromResult {
	res := ChromResult{RefID: job.RefID, TargetID: job.TargetID}

	m, err := buildMapper(ctx, job, opts)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	out, rep, err := Transfer(job.Table, m, job.TargetID, opts.Transfer)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if job.OutPath != "" {
		if err := featuretable.WriteFile(job.OutPath, out); err != nil {
			res.Error = err.Error()
			return res
		}
		res.OutPath = job.OutPath
	}

	res.Report = rep
	return res
}

// buildMapper turns a job's sequences into a coordinate mapper, invoking
// the external aligner unless pre-aligned rows were supplied.
func buildMapper(ctx context.Context, job Job, opts DriverOptions) (*coordmap.Mapper, error) {
	if job.RefAligned != "" {
		return coordmap.NewPairFromMSA(job.RefID, job.RefAligned, job.TargetID, job.TargetAligned)
	}

	if opts.Aligner == nil {
		return nil, fmt.Errorf("no aligner configured and no pre-aligned rows for %s", job.RefID)
	}

	tmp, err := os.MkdirTemp(opts.TmpDir, "transfer-"+fasta.FileName(job.RefID)+"-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "pair.fasta")
	out := filepath.Join(tmp, "aligned.fasta")
	err = fasta.Write(in, []fasta.Record{
		{ID: job.RefID, Seq: job.RefSeq},
		{ID: job.TargetID, Seq: job.TargetSeq},
	})
	if err != nil {
		return nil, err
	}

	if err := opts.Aligner.Align(ctx, in, out); err != nil {
		return nil, err
	}

	records, err := fasta.Read(out)
	if err != nil {
		return nil, err
	}
	if len(records) != 2 {
		return nil, fmt.Errorf("%s wrote %d sequences aligning %s, expected 2", opts.Aligner.Name(), len(records), job.RefID)
	}

	rows := map[string]string{records[0].ID: records[0].Seq, records[1].ID: records[1].Seq}
	refRow, ok := rows[job.RefID]
	if !ok {
		return nil, fmt.Errorf("aligned output is missing %s", job.RefID)
	}
	targetRow, ok := rows[job.TargetID]
	if !ok {
		return nil, fmt.Errorf("aligned output is missing %s", job.TargetID)
	}

	return coordmap.NewPair(job.RefID, refRow, job.TargetID, targetRow)
}
