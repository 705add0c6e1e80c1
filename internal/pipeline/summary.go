package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// Summary aggregates per-file results across a whole run. It is built up by
// the orchestrator and never mutated after the run finishes.
type Summary struct {
	FilesPlanned     int
	FilesDownloaded  int
	Processed        int
	SkippedNoGrid    int
	NotFound         int
	DownloadErrors   int
	ProcessingErrors int

	MessagesScanned int
	RowsAttempted   int

	// VariablesFound holds the catalog userNames observed at least once.
	VariablesFound map[string]struct{}

	Started  time.Time
	Finished time.Time
}

func newSummary(planned int, started time.Time) *Summary {
	return &Summary{
		FilesPlanned:   planned,
		VariablesFound: make(map[string]struct{}),
		Started:        started,
	}
}

func (s *Summary) add(res domain.FileResult) {
	s.MessagesScanned += res.MessagesScanned
	s.RowsAttempted += res.RowsInserted
	for name := range res.VariablesFound {
		s.VariablesFound[name] = struct{}{}
	}

	switch res.Status {
	case domain.StatusProcessed:
		s.FilesDownloaded++
		s.Processed++
	case domain.StatusSkippedNoGrid:
		s.FilesDownloaded++
		s.SkippedNoGrid++
	case domain.StatusNotFound:
		s.NotFound++
	case domain.StatusDownloadError:
		s.DownloadErrors++
	case domain.StatusProcessingError:
		s.FilesDownloaded++
		s.ProcessingErrors++
	}
}

// Report renders the operator-facing run summary, including a checklist of
// which catalog variables were observed at least once. A variable that never
// appeared is a correctness signal worth noticing, not an error.
func (s *Summary) Report(catalog []domain.VariableSpec) string {
	var b strings.Builder
	rule := strings.Repeat("=", 40)

	fmt.Fprintf(&b, "%s\n          Processing Summary\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Attempted to process %d object keys in %s.\n",
		s.FilesPlanned, s.Finished.Sub(s.Started).Round(time.Second))
	fmt.Fprintf(&b, "Files successfully downloaded: %d\n", s.FilesDownloaded)
	if s.NotFound > 0 {
		fmt.Fprintf(&b, "Files not found: %d\n", s.NotFound)
	}
	if s.DownloadErrors > 0 {
		fmt.Fprintf(&b, "Files with download errors: %d\n", s.DownloadErrors)
	}
	if s.SkippedNoGrid > 0 {
		fmt.Fprintf(&b, "Files downloaded but skipped (grid issue): %d\n", s.SkippedNoGrid)
	}
	if s.ProcessingErrors > 0 {
		fmt.Fprintf(&b, "Files downloaded but failed during processing: %d\n", s.ProcessingErrors)
	}
	fmt.Fprintf(&b, "Total messages scanned: %d\n", s.MessagesScanned)
	fmt.Fprintf(&b, "Total rows attempted for insertion: %d\n", s.RowsAttempted)
	fmt.Fprintf(&b, "(Actual rows inserted depends on primary-key conflicts.)\n")

	fmt.Fprintf(&b, "\nVariables found (%d of %d):\n", len(s.VariablesFound), len(catalog))
	for _, spec := range catalog {
		mark := "[ ]"
		if _, ok := s.VariablesFound[spec.UserName]; ok {
			mark = "[X]"
		}
		fmt.Fprintf(&b, "  %s %s\n", mark, spec.UserName)
	}
	b.WriteString(rule)
	return b.String()
}
