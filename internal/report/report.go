package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"MovieScanner/internal/domain"
	"MovieScanner/internal/ports"
)

// Reporter writes the human-readable run report: one line per intended or
// committed action, plus an end-of-run summary table. Dry-run lines are
// prefixed so they stay distinguishable from committed actions.
type Reporter struct {
	out io.Writer
}

// New wires the report output stream.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Plan prints the resolved run-global add settings up front.
func (r *Reporter) Plan(plan domain.AddPlan) {
	root := plan.RootFolder
	if root == "" {
		root = "(manager default)"
	}
	tags := "none"
	if len(plan.TagIDs) > 0 {
		tags = fmt.Sprint(plan.TagIDs)
	}
	fmt.Fprintf(r.out, "root folder: %s\n", root)
	fmt.Fprintf(r.out, "quality profile id: %d\n", plan.QualityProfileID)
	fmt.Fprintf(r.out, "tags: %s\n", tags)
	fmt.Fprintf(r.out, "dry run: %t\n\n", plan.DryRun)
}

// Candidate prints one surviving candidate before it is committed.
func (r *Reporter) Candidate(m domain.Movie) {
	date := m.ReleaseDate
	if date == "" {
		date = "????-??-??"
	}
	fmt.Fprintf(r.out, "%s | %s | tmdbId=%d\n", date, m.DisplayTitle(), m.TmdbID)
}

// WouldAdd prints a dry-run line for an add that was not executed.
func (r *Reporter) WouldAdd(res ports.MovieResource, plan domain.AddPlan) {
	fmt.Fprintf(r.out, "[dry-run] would add: %s (%d) tmdbId=%d profile=%d tags=%v root=%s\n",
		res.Title, res.Year, res.TmdbID, plan.QualityProfileID, plan.TagIDs, plan.RootFolder)
}

// Added prints a line for a committed add.
func (r *Reporter) Added(res ports.MovieResource) {
	fmt.Fprintf(r.out, "added: %s (%d) tmdbId=%d\n", res.Title, res.Year, res.TmdbID)
}

// Summary renders the final counters table.
func (r *Reporter) Summary(s domain.RunSummary) {
	added := "added"
	if s.DryRun {
		added = "would add"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"stage", "count"})
	tw.AppendRow(table.Row{"scanned", strconv.Itoa(s.Scanned)})
	tw.AppendRow(table.Row{"matched filter", strconv.Itoa(s.Matched)})
	tw.AppendRow(table.Row{"duplicate ids", strconv.Itoa(s.Duplicates)})
	tw.AppendRow(table.Row{"already in library", strconv.Itoa(s.InLibrary)})
	tw.AppendRow(table.Row{"skipped (no lookup)", strconv.Itoa(s.Skipped)})
	tw.AppendRow(table.Row{"failed", strconv.Itoa(s.Failed)})
	tw.AppendRow(table.Row{added, strconv.Itoa(s.Added)})

	fmt.Fprintf(r.out, "\n%s\n", tw.Render())
}
