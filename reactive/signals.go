package reactive

import (
	"fmt"

	"github.com/delaneyj/flatsignals/flat"
)

// WriteableSignal is a reactive cell. Container values are kept as a
// flat.Map and rebuilt on every read.
type WriteableSignal struct {
	rs     *ReactiveSystem
	stored any
}

func (s *WriteableSignal) isSignalAware() {}

func Signal(rs *ReactiveSystem, initialValue any) *WriteableSignal {
	s := &WriteableSignal{rs: rs}
	if err := s.store(initialValue); err != nil {
		rs.reportError(s, err)
	}
	return s
}

// Get records s as the last read signal and returns its current value.
func (s *WriteableSignal) Get() (any, error) {
	s.rs.tracker.MarkRead(s)
	return s.Peek()
}

// Peek returns the current value without marking a read.
func (s *WriteableSignal) Peek() (any, error) {
	m, ok := s.stored.(flat.Map)
	if !ok {
		return s.stored, nil
	}
	v, err := s.rs.codec.Unflatten(m)
	if err != nil {
		return nil, fmt.Errorf("read signal: %w", err)
	}
	return v, nil
}

// Value is Get with the error sent to the system's OnErrorFunc.
func (s *WriteableSignal) Value() any {
	v, err := s.Get()
	if err != nil {
		s.rs.reportError(s, err)
		return nil
	}
	return v
}

// SetValue stores v and synchronously re-runs every subscriber. There is no
// equality check and no cycle detection; a subscriber writing the signal it
// depends on recurses until the stack runs out.
func (s *WriteableSignal) SetValue(v any) {
	if err := s.store(v); err != nil {
		s.rs.reportError(s, err)
		return
	}
	s.rs.notify(s)
}

func (s *WriteableSignal) store(v any) error {
	if !flat.IsContainer(v) {
		s.stored = v
		return nil
	}
	m, err := s.rs.codec.Flatten(v, "")
	if err != nil {
		return fmt.Errorf("write signal: %w", err)
	}
	s.stored = m
	return nil
}

func (s *WriteableSignal) write(m flat.Map) {
	s.stored = m
	s.rs.notify(s)
}

// Stored returns the raw encoding: a flat.Map for container values, the
// value itself otherwise.
func (s *WriteableSignal) Stored() any {
	return s.stored
}

func (s *WriteableSignal) Fingerprint() uint64 {
	if m, ok := s.stored.(flat.Map); ok {
		return m.Fingerprint()
	}
	return flat.LeafFingerprint(s.stored)
}

// As reads s and asserts the result to T.
func As[T any](s *WriteableSignal) (T, bool) {
	t, ok := s.Value().(T)
	return t, ok
}
