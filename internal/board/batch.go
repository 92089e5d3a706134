package board

import (
	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
)

// MaxBatchSize is the largest number of moves accepted in one batch.
const MaxBatchSize = constants.MaxBatchMoveSize

// Move is one entry of a batch: the final lane and position of a task.
type Move struct {
	TaskID   string
	Status   models.TaskStatus
	Position int64
}

type laneKey struct {
	status   models.TaskStatus
	position int64
}

// TaskIDs returns the task ids named by moves in order.
func TaskIDs(moves []Move) []string {
	ids := make([]string, 0, len(moves))
	for _, move := range moves {
		ids = append(ids, move.TaskID)
	}
	return ids
}

// AffectedStatuses returns each target lane of moves once.
func AffectedStatuses(moves []Move) []models.TaskStatus {
	seen := make(map[models.TaskStatus]bool)
	var statuses []models.TaskStatus
	for _, move := range moves {
		if !seen[move.Status] {
			seen[move.Status] = true
			statuses = append(statuses, move.Status)
		}
	}
	return statuses
}

// CheckBatchSize rejects empty and oversized batches before anything is loaded.
func CheckBatchSize(n int) error {
	if n == 0 {
		return apierrors.New(apierrors.ErrValidation, "At least one task is required")
	}
	if n > MaxBatchSize {
		return apierrors.Newf(apierrors.ErrValidation, "At most %d tasks can be moved at once", MaxBatchSize)
	}
	return nil
}

// ValidateBatch checks that moves can be written as a whole. found holds the
// batch tasks loaded from workspaceID keyed by id, occupants the current
// tasks of every affected lane. Nothing may be written when it fails.
func ValidateBatch(workspaceID string, moves []Move, found map[string]models.Task, occupants []models.Task) error {
	if err := CheckBatchSize(len(moves)); err != nil {
		return err
	}

	inBatch := make(map[string]bool, len(moves))
	targets := make(map[laneKey]string, len(moves))
	for _, move := range moves {
		if inBatch[move.TaskID] {
			return apierrors.Newf(apierrors.ErrValidation, "Task %s appears more than once", move.TaskID)
		}
		inBatch[move.TaskID] = true

		task, ok := found[move.TaskID]
		if !ok || task.WorkspaceID != workspaceID {
			return apierrors.Newf(apierrors.ErrValidation, "Task %s not found in workspace", move.TaskID)
		}
		if !move.Status.IsValid() {
			return apierrors.Newf(apierrors.ErrValidation, "Invalid status %q", move.Status)
		}
		if move.Position < MinPosition || move.Position > MaxPosition {
			return apierrors.Newf(apierrors.ErrValidation, "Position %d is out of range", move.Position)
		}

		key := laneKey{status: move.Status, position: move.Position}
		if other, taken := targets[key]; taken {
			return apierrors.Newf(apierrors.ErrValidation, "Tasks %s and %s share position %d in %s", other, move.TaskID, move.Position, move.Status)
		}
		targets[key] = move.TaskID
	}

	for _, occupant := range occupants {
		if inBatch[occupant.ID] {
			continue
		}
		key := laneKey{status: occupant.Status, position: occupant.Position}
		if taskID, taken := targets[key]; taken {
			return apierrors.Newf(apierrors.ErrValidation, "Task %s collides with task %s at position %d in %s", taskID, occupant.ID, occupant.Position, occupant.Status)
		}
	}

	return nil
}
