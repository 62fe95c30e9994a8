// Command ingestcheck loads an ARGO data directory the same way the service
// does and reports, per file, how many records were accepted and why the
// others were rejected. It exits non-zero when any file cannot be parsed.
//
// Usage:
//
//	go run ./cmd/ingestcheck -data-dir data
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/index"
	"github.com/couchcryptid/floatchat/internal/ingest"
)

// phase tracks findings for one check. Only fatal phases fail the run.
type phase struct {
	name   string
	fatal  bool
	issues []string
}

func (p *phase) issuef(format string, args ...any) {
	p.issues = append(p.issues, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.issues) == 0 }

func main() {
	dataDir := flag.String("data-dir", envOr("DATA_DIR", "data"), "directory of ARGO JSON files")
	verbose := flag.Bool("v", false, "list every rejected record")
	flag.Parse()

	os.Exit(run(os.Stdout, *dataDir, *verbose))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(out io.Writer, dataDir string, verbose bool) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := ingest.NewLoader(logger, nil).Ingest(context.Background(), dataDir)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	ix := index.Build(res.Records)

	fmt.Fprintf(out, "=== Ingestion check: %s ===\n\n", dataDir)
	for _, f := range res.Files {
		status := "ok"
		if f.Failed() {
			status = "FAILED: " + f.Rejected[0].Reason
		}
		fmt.Fprintf(out, "  %-48s accepted %5d  rejected %5d  %s\n", f.Source, f.Accepted, len(f.Rejected), status)
	}

	phases := []*phase{
		checkFiles(res),
		checkRecords(res, verbose),
		checkTimestamps(ix),
		checkRegions(ix),
	}

	fmt.Fprintln(out)
	failed := false
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("WARN (%d)", len(p.issues))
			if p.fatal {
				status = fmt.Sprintf("FAIL (%d)", len(p.issues))
				failed = true
			}
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintf(out, "\nRecords: %d files, %d accepted, %d rejected, %d indexed, %d without timestamp\n",
		len(res.Files), len(res.Records), len(res.Rejected), ix.Len(), len(ix.Unparsed()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, issue := range p.issues {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, issue)
		}
	}

	if failed {
		fmt.Fprintln(out, "\nIngestion check FAILED.")
		return 1
	}
	fmt.Fprintln(out, "\nIngestion check passed.")
	return 0
}

func checkFiles(res ingest.Result) *phase {
	p := &phase{name: "Files parse", fatal: true}
	if len(res.Files) == 0 {
		p.issuef("no *.json files found")
	}
	for _, f := range res.Files {
		if f.Failed() {
			p.issuef("%s: %s", f.Source, f.Rejected[0].Reason)
		}
	}
	return p
}

func checkRecords(res ingest.Result, verbose bool) *phase {
	p := &phase{name: "Records normalize"}
	reasons := make(map[string]int)
	for _, r := range res.Rejected {
		if r.Index < 0 {
			continue
		}
		if verbose {
			p.issuef("%s", r.Error())
			continue
		}
		reasons[r.Reason]++
	}
	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p.issuef("%d records: %s", reasons[k], k)
	}
	return p
}

func checkTimestamps(ix *index.Index) *phase {
	p := &phase{name: "Timestamps parse"}
	for _, r := range ix.Unparsed() {
		p.issuef("%s (%s): no usable timestamp", r.ID, r.Source)
	}
	return p
}

func checkRegions(ix *index.Index) *phase {
	p := &phase{name: "Regions classify"}
	counts := ix.Regions()
	if n := counts[domain.RegionUnclassified]; n > 0 {
		p.issuef("%d records fall outside every known basin", n)
	}
	for _, r := range domain.Regions {
		if counts[r] == 0 {
			p.issuef("no records in %s", r)
		}
	}
	return p
}
