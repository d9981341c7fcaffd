package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrBusy          = errors.New("another upload is in progress")
	ErrSlotLocked    = errors.New("previous step is not completed")
	ErrSlotCompleted = errors.New("step is already completed")
	ErrNoFile        = errors.New("no file selected")
	ErrUnknownSlot   = errors.New("unknown slot")
)

// TransitionError is returned for a transition the current status does not
// allow. The state is left unchanged.
type TransitionError struct {
	Slot string
	From SlotStatus
	To   SlotStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("slot %s: can't move from %s to %s", e.Slot, e.From, e.To)
}
