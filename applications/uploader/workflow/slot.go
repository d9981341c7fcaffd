package workflow

import "github.com/donmikel/sheetdrop/applications/uploader/domain"

// SlotStatus is the state of one upload step.
type SlotStatus int

const (
	// StatusPending has no file yet.
	StatusPending SlotStatus = iota
	// StatusSelected holds a validated file waiting for confirmation.
	StatusSelected
	// StatusUploading has a transfer in flight.
	StatusUploading
	// StatusCompleted is terminal.
	StatusCompleted
	// StatusFailed keeps the file so the upload can be confirmed again.
	StatusFailed
)

func (s SlotStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSelected:
		return "selected"
	case StatusUploading:
		return "uploading"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SlotSpec describes a slot at construction time.
type SlotSpec struct {
	ID         string
	Label      string
	TargetName string
}

// Slot is a snapshot of one step. File is nil when nothing is held.
type Slot struct {
	ID         string
	Label      string
	TargetName string
	Status     SlotStatus
	File       domain.FileHandle
	Err        error
}
