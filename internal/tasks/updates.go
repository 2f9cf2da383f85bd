package tasks

import (
	"fmt"

	"github.com/8bitbanana/music-converter/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	OperationID string // Identifies which operation this update belongs to
	Phase       Phase  // Operation phase
	Step        int    // Current step number within phase
	Total       int    // Total steps in this phase
	Message     string // Human-readable message for display
	Data        any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ResolveTracks Phase = iota
	OperationDone
)

func (p Phase) String() string {
	switch p {
	case ResolveTracks:
		return "resolve_tracks"
	case OperationDone:
		return "operation_done"
	default:
		return ""
	}
}

func resolvingTrackUpdate(opID string, step, total int, tr *models.Track) ProgressUpdate {
	return ProgressUpdate{
		OperationID: opID,
		Phase:       ResolveTracks,
		Step:        step,
		Total:       total,
		Message:     fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func trackResolvedUpdate(opID string, step, total int, tr *models.Track, outcome string) ProgressUpdate {
	return ProgressUpdate{
		OperationID: opID,
		Phase:       ResolveTracks,
		Step:        step,
		Total:       total,
		Message:     fmt.Sprintf("[%d/%d] %s: %s", step, total, outcome, tr),
		Data:        tr,
	}
}

func trackFailedUpdate(opID string, step, total int, tr *models.Track, err error) ProgressUpdate {
	return ProgressUpdate{
		OperationID: opID,
		Phase:       ResolveTracks,
		Step:        step,
		Total:       total,
		Message:     fmt.Sprintf("[%d/%d] failed: %s: %v", step, total, tr, err),
	}
}

func operationDoneUpdate(opID string, result *UpdateResult) ProgressUpdate {
	return ProgressUpdate{
		OperationID: opID,
		Phase:       OperationDone,
		Step:        result.Total,
		Total:       result.Total,
		Message: fmt.Sprintf("%d/%d resolved (%d unverified, %d unmatched, %d failed)",
			result.Accepted+result.Unverified, result.Total,
			result.Unverified, result.Unmatched, result.Failed),
		Data: result,
	}
}
