package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chainspect/chainspect/internal/config"
	"github.com/chainspect/chainspect/pkg/diag"
)

// summaryFile is the per-parameter diagnostics file inside a run directory.
const summaryFile = "summary.csv"

// Result is the normalized output of one read of a run directory. Err is
// non-nil if the read failed (missing files, malformed CSV, inconsistent
// chains); the other fields are then unset.
type Result struct {
	RunID  string
	ReadAt time.Time

	// Array holds the draws, indexed (iteration, chain, parameter).
	Array *diag.Array

	// Parameters, Rhat and NeffRatio are the parallel columns of
	// summary.csv. Missing diagnostic values are NaN.
	Parameters []string
	Rhat       []float64
	NeffRatio  []float64

	Err error
}

// Reader reads one run's sampler output.
type Reader interface {
	Read(ctx context.Context) *Result
}

// New returns a Reader for the given run configuration.
func New(run config.RunConfig) Reader {
	return &dirReader{run: run}
}

// dirReader reads a directory of chain CSVs plus summary.csv.
type dirReader struct {
	run config.RunConfig
}

func (r *dirReader) Read(ctx context.Context) *Result {
	res := &Result{RunID: r.run.ID, ReadAt: time.Now().UTC()}

	chains, err := chainFiles(r.run.Dir)
	if err != nil {
		res.Err = fmt.Errorf("ingest %q: %w", r.run.ID, err)
		return res
	}

	arr, err := readChains(ctx, chains)
	if err != nil {
		res.Err = fmt.Errorf("ingest %q: %w", r.run.ID, err)
		return res
	}

	params, rhat, neff, err := readSummary(filepath.Join(r.run.Dir, summaryFile))
	if err != nil {
		res.Err = fmt.Errorf("ingest %q: %w", r.run.ID, err)
		return res
	}

	res.Array = arr
	res.Parameters = params
	res.Rhat = rhat
	res.NeffRatio = neff
	return res
}

// chainFiles lists the chain CSVs of a run directory in name order, so
// chain_1.csv is always chain 1 regardless of directory iteration order.
func chainFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list chain files: %w", err)
	}
	files := matches[:0]
	for _, m := range matches {
		if filepath.Base(m) != summaryFile {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no chain files in %q", dir)
	}
	sort.Strings(files)
	return files, nil
}

// readChains parses every chain file and assembles the draws array.
// All chains must agree on parameter names and iteration count.
func readChains(ctx context.Context, files []string) (*diag.Array, error) {
	var (
		arr    *diag.Array
		params []string
		iters  int
	)

	for chain, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, rows, err := readChainFile(path)
		if err != nil {
			return nil, err
		}

		if chain == 0 {
			params = header
			iters = len(rows)
			arr, err = diag.NewArray(iters, len(files), params)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
		} else {
			if !equalStrings(header, params) {
				return nil, fmt.Errorf("%s: parameters %v disagree with first chain %v",
					filepath.Base(path), header, params)
			}
			if len(rows) != iters {
				return nil, fmt.Errorf("%s: %d iterations, first chain has %d",
					filepath.Base(path), len(rows), iters)
			}
		}

		for i, row := range rows {
			for p, v := range row {
				arr.Set(i, chain, p, v)
			}
		}
	}

	return arr, nil
}

// readChainFile parses one chain CSV: a header row of parameter names
// followed by one row of draws per iteration. Every cell must be numeric —
// the draws array has no missing-value encoding.
func readChainFile(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open chain file: %w", err)
	}
	defer f.Close()

	cr := newCSVReader(f)
	name := filepath.Base(path)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		row := make([]float64, len(rec))
		for col, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: line %d column %q: bad draw %q",
					name, line, header[col], cell)
			}
			row[col] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: no draws", name)
	}
	return header, rows, nil
}

// readSummary parses summary.csv: header "parameter,rhat,neff_ratio", one
// row per parameter. Diagnostic cells may be empty or "NA"; those come back
// as NaN and are dropped later with a warning.
func readSummary(path string) (params []string, rhat, neff []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()

	cr := newCSVReader(f)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("summary.csv: read header: %w", err)
	}
	if len(header) != 3 ||
		strings.TrimSpace(header[0]) != "parameter" ||
		strings.TrimSpace(header[1]) != "rhat" ||
		strings.TrimSpace(header[2]) != "neff_ratio" {
		return nil, nil, nil, fmt.Errorf("summary.csv: header %v, want [parameter rhat neff_ratio]", header)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("summary.csv: %w", err)
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, nil, nil, fmt.Errorf("summary.csv: line %d: empty parameter name", line)
		}
		r, err := parseDiagCell(rec[1])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("summary.csv: line %d rhat: %w", line, err)
		}
		n, err := parseDiagCell(rec[2])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("summary.csv: line %d neff_ratio: %w", line, err)
		}
		params = append(params, name)
		rhat = append(rhat, r)
		neff = append(neff, n)
	}
	if len(params) == 0 {
		return nil, nil, nil, fmt.Errorf("summary.csv: no parameters")
	}
	return params, rhat, neff, nil
}

// parseDiagCell parses one diagnostic cell. Empty and "NA" encode a missing
// value and come back as NaN.
func parseDiagCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "na") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", cell)
	}
	return v, nil
}

// newCSVReader builds a csv.Reader with sampler comment lines enabled.
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	return cr
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
