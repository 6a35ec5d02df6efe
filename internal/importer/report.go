package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/wimwenigerkind/LetsMeet/internal/repository"
)

// SourceStats tracks the per-source record outcome.
type SourceStats struct {
	Name     string
	Records  int
	Imported int
	Skipped  int
}

// Report aggregates everything a run produced: per-source record stats,
// per-entity write counters, skip counters by failure class, and the final
// table counts. One Report per pipeline run, tagged with a run id.
type Report struct {
	RunID     string
	StartedAt time.Time

	Sources []*SourceStats
	Created map[string]int

	Malformed       int
	ConstraintSkips int
	UnresolvedRefs  int

	TableCounts []repository.TableCount
}

func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Created:   make(map[string]int),
	}
}

func (r *Report) source(name string) *SourceStats {
	for _, s := range r.Sources {
		if s.Name == name {
			return s
		}
	}
	s := &SourceStats{Name: name}
	r.Sources = append(r.Sources, s)
	return s
}

// Add increments the created counter for an entity kind.
func (r *Report) Add(entity string, n int) {
	r.Created[entity] += n
}

// Print writes the human-readable run summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\nImport summary (run %s)\n", r.RunID)
	fmt.Fprintln(w, "==============================================")

	for _, s := range r.Sources {
		fmt.Fprintf(w, "%-8s %d records, %d imported, %d skipped\n",
			s.Name+":", s.Records, s.Imported, s.Skipped)
	}

	fmt.Fprintf(w, "\nskips: %d malformed, %d duplicates/self-references, %d unresolved references\n",
		r.Malformed, r.ConstraintSkips, r.UnresolvedRefs)

	fmt.Fprintln(w, "\nFinal table counts:")
	for _, tc := range r.TableCounts {
		fmt.Fprintf(w, "  %-20s %d\n", tc.Table, tc.Count)
	}
	fmt.Fprintf(w, "\ncompleted in %s\n", time.Since(r.StartedAt).Round(time.Millisecond))
}
