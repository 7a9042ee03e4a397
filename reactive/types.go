package reactive

import "errors"

var (
	ErrNilCallback   = errors.New("reactive: nil callback")
	ErrShapeMismatch = errors.New("reactive: cannot merge an object into an array")
)

type ErrFn func() error

type OnErrorFunc func(from SignalAware, err error)

type SignalAware interface {
	isSignalAware()
}

// Tracker remembers which signal was read last. Effect consumes it once the
// effect body returns to decide what the effect depends on.
type Tracker interface {
	MarkRead(s *WriteableSignal)
	ConsumeLastRead() *WriteableSignal
}

// SlotTracker holds a single slot, so an effect that reads several signals
// only depends on the last one it read.
type SlotTracker struct {
	last *WriteableSignal
}

func (t *SlotTracker) MarkRead(s *WriteableSignal) {
	t.last = s
}

func (t *SlotTracker) ConsumeLastRead() *WriteableSignal {
	s := t.last
	t.last = nil
	return s
}
