// Package board computes lane positions for tasks on the kanban board.
//
// A lane is the set of tasks sharing (workspace, status). Positions inside a
// lane are pairwise distinct and leave gaps so that most moves touch a single
// row. When two neighbours have no room between them the lane is renumbered.
package board

import (
	"sort"

	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
)

const (
	Gap         int64 = 1000
	Baseline    int64 = 1000
	MinPosition int64 = 1
	MaxPosition int64 = 2147483647
)

// Slot is a task's position within a lane.
type Slot struct {
	TaskID   string
	Position int64
}

// Plan is the result of placing a task in a lane.
type Plan struct {
	// Position is the new position of the moved task.
	Position int64
	// Updates lists every slot that must be written, the moved task included.
	Updates []Slot
	// Renumbered is set when the whole lane was spread out again.
	Renumbered bool
}

// SlotsOf returns the lane slots of tasks.
func SlotsOf(tasks []models.Task) []Slot {
	slots := make([]Slot, 0, len(tasks))
	for _, task := range tasks {
		slots = append(slots, Slot{TaskID: task.ID, Position: task.Position})
	}
	return slots
}

// PlanMove places taskID in lane between prevID and nextID. Either neighbour
// may be empty: only prevID appends after it, only nextID inserts before it
// and neither appends to the tail. The moving task is ignored if lane already
// contains it.
func PlanMove(lane []Slot, taskID, prevID, nextID string) (Plan, error) {
	if taskID == "" {
		return Plan{}, apierrors.New(apierrors.ErrValidation, "Task id is required")
	}
	if prevID == taskID || nextID == taskID {
		return Plan{}, apierrors.New(apierrors.ErrValidation, "A task cannot be its own neighbour")
	}
	if prevID != "" && prevID == nextID {
		return Plan{}, apierrors.New(apierrors.ErrValidation, "Previous and next task must differ")
	}

	others := make([]Slot, 0, len(lane))
	for _, slot := range lane {
		if slot.TaskID != taskID {
			others = append(others, slot)
		}
	}
	sortSlots(others)

	prevIdx, nextIdx := -1, -1
	if prevID != "" {
		if prevIdx = indexOf(others, prevID); prevIdx < 0 {
			return Plan{}, apierrors.New(apierrors.ErrValidation, "Previous task is not in the target lane")
		}
	}
	if nextID != "" {
		if nextIdx = indexOf(others, nextID); nextIdx < 0 {
			return Plan{}, apierrors.New(apierrors.ErrValidation, "Next task is not in the target lane")
		}
	}

	// at is the index the task takes in the reordered lane
	var at int
	switch {
	case prevIdx >= 0 && nextIdx >= 0:
		if nextIdx != prevIdx+1 {
			return Plan{}, apierrors.New(apierrors.ErrValidation, "Previous and next task are not adjacent")
		}
		at = nextIdx
	case prevIdx >= 0:
		at = prevIdx + 1
	case nextIdx >= 0:
		at = nextIdx
	default:
		at = len(others)
	}

	if position, ok := fit(others, at); ok {
		return Plan{
			Position: position,
			Updates:  []Slot{{TaskID: taskID, Position: position}},
		}, nil
	}
	return renumber(others, taskID, at)
}

// fit finds a free position for index at without touching other slots.
func fit(others []Slot, at int) (int64, bool) {
	hasPrev := at > 0
	hasNext := at < len(others)

	switch {
	case !hasPrev && !hasNext:
		return Baseline, true
	case hasPrev && hasNext:
		prev, next := others[at-1].Position, others[at].Position
		if next-prev <= 1 {
			return 0, false
		}
		return prev + (next-prev)/2, true
	case hasPrev:
		prev := others[at-1].Position
		position := prev + Gap
		if position > MaxPosition {
			position = MaxPosition
		}
		if position <= prev {
			return 0, false
		}
		return position, true
	default:
		next := others[at].Position
		position := next - Gap
		if position < MinPosition {
			position = MinPosition
		}
		if position >= next {
			return 0, false
		}
		return position, true
	}
}

// renumber spreads the lane from Baseline in steps of Gap with the task
// inserted at index at.
func renumber(others []Slot, taskID string, at int) (Plan, error) {
	count := int64(len(others) + 1)
	if Baseline+(count-1)*Gap > MaxPosition {
		return Plan{}, apierrors.New(apierrors.ErrValidation, "Lane is full")
	}

	updates := make([]Slot, 0, count)
	updates = append(updates, others[:at]...)
	updates = append(updates, Slot{TaskID: taskID})
	updates = append(updates, others[at:]...)

	plan := Plan{Renumbered: true, Updates: updates}
	for i := range updates {
		updates[i].Position = Baseline + int64(i)*Gap
		if updates[i].TaskID == taskID {
			plan.Position = updates[i].Position
		}
	}
	return plan, nil
}

// Tail returns the position that appends a task to lane.
func Tail(lane []Slot, taskID string) (Plan, error) {
	return PlanMove(lane, taskID, "", "")
}

func sortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Position != slots[j].Position {
			return slots[i].Position < slots[j].Position
		}
		return slots[i].TaskID < slots[j].TaskID
	})
}

func indexOf(slots []Slot, taskID string) int {
	for i, slot := range slots {
		if slot.TaskID == taskID {
			return i
		}
	}
	return -1
}
