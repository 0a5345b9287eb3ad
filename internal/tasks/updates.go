package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchGenres Phase = iota
	ResolveDetails
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchGenres:
		return "fetch_genres"
	case ResolveDetails:
		return "resolve_details"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

// sendProgress sends an update without blocking. A nil channel is ignored.
func sendProgress(ch chan<- ProgressUpdate, u ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- u:
	default:
	}
}

func fetchGenresUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchGenres, Step: 0, Total: 1, Message: "Fetching genre table..."}
}

func resolvedUpdate(step, total, id int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d)", step, total, title, id),
	}
}

func resolveFailedUpdate(step, total, id int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %d: %v", step, total, id, err),
	}
}

func writeExportUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d movies to %s", count, path),
		Data:    path,
	}
}
