// Package workflow sequences upload slots. Slot i+1 unlocks only after slot i
// completed, and one transfer at most is in flight per workflow.
package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

type Machine struct {
	mu    sync.RWMutex
	slots []Slot
	index map[string]int
	busy  bool
}

func New(specs []SlotSpec) (*Machine, error) {
	if len(specs) == 0 {
		return nil, errors.New("workflow needs at least one slot")
	}

	m := &Machine{
		slots: make([]Slot, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for i, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("slot #%d has no id", i)
		}
		if _, ok := m.index[spec.ID]; ok {
			return nil, fmt.Errorf("duplicate slot id %q", spec.ID)
		}

		m.index[spec.ID] = i
		m.slots = append(m.slots, Slot{
			ID:         spec.ID,
			Label:      spec.Label,
			TargetName: spec.TargetName,
			Status:     StatusPending,
		})
	}

	return m, nil
}

// Slots returns a snapshot in workflow order.
func (m *Machine) Slots() []Slot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Slot, len(m.slots))
	copy(out, m.slots)

	return out
}

func (m *Machine) Slot(id string) (Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return Slot{}, fmt.Errorf("%w: %s", ErrUnknownSlot, id)
	}

	return m.slots[i], nil
}

// Position is the zero-based index of a slot.
func (m *Machine) Position(id string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lookup(id)
}

// Enabled reports whether the slot accepts input.
func (m *Machine) Enabled(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return false
	}

	return m.enabled(i)
}

func (m *Machine) enabled(i int) bool {
	return i == 0 || m.slots[i-1].Status == StatusCompleted
}

func (m *Machine) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.busy
}

// Done reports whether every slot completed.
func (m *Machine) Done() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.slots {
		if s.Status != StatusCompleted {
			return false
		}
	}

	return true
}

// Select captures file for the slot, replacing a previous selection.
func (m *Machine) Select(id string, file domain.FileHandle) error {
	if file == nil {
		return ErrNoFile
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.lookup(id)
	if err != nil {
		return err
	}
	if !m.enabled(i) {
		return ErrSlotLocked
	}

	s := &m.slots[i]
	switch s.Status {
	case StatusPending, StatusSelected, StatusFailed:
	case StatusUploading:
		return ErrBusy
	case StatusCompleted:
		return ErrSlotCompleted
	default:
		return &TransitionError{Slot: id, From: s.Status, To: StatusSelected}
	}

	s.File = file
	s.Status = StatusSelected
	s.Err = nil

	return nil
}

// Begin starts the upload of the selected file. While another upload runs it
// returns ErrBusy and changes nothing.
func (m *Machine) Begin(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.lookup(id)
	if err != nil {
		return err
	}
	if m.busy {
		return ErrBusy
	}
	if !m.enabled(i) {
		return ErrSlotLocked
	}

	s := &m.slots[i]
	switch s.Status {
	case StatusSelected, StatusFailed:
	case StatusCompleted:
		return ErrSlotCompleted
	case StatusPending:
		return ErrNoFile
	default:
		return &TransitionError{Slot: id, From: s.Status, To: StatusUploading}
	}
	if s.File == nil {
		return ErrNoFile
	}

	s.Status = StatusUploading
	s.Err = nil
	m.busy = true

	return nil
}

// Complete finishes the upload and releases the file so it can't be sent
// twice.
func (m *Machine) Complete(id string) error {
	return m.finish(id, StatusCompleted, func(s *Slot) {
		s.File = nil
		s.Err = nil
	})
}

// Fail keeps the file so the same selection can be confirmed again.
func (m *Machine) Fail(id string, cause error) error {
	return m.finish(id, StatusFailed, func(s *Slot) {
		s.Err = cause
	})
}

// Abandon drops a file that was rejected after confirmation.
func (m *Machine) Abandon(id string) error {
	return m.finish(id, StatusPending, func(s *Slot) {
		s.File = nil
		s.Err = nil
	})
}

func (m *Machine) finish(id string, to SlotStatus, apply func(s *Slot)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.lookup(id)
	if err != nil {
		return err
	}

	s := &m.slots[i]
	if s.Status != StatusUploading {
		return &TransitionError{Slot: id, From: s.Status, To: to}
	}

	apply(s)
	s.Status = to
	m.busy = false

	return nil
}

func (m *Machine) lookup(id string) (int, error) {
	i, ok := m.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSlot, id)
	}

	return i, nil
}
