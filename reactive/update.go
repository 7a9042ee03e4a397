package reactive

import (
	"fmt"

	"github.com/delaneyj/flatsignals/flat"
)

// Update is one of Merge, Updater or Replace.
type Update interface {
	isUpdate()
}

// Merge shallow-merges its flattened contents into the current value. An
// empty or nil Merge keeps the value and still notifies subscribers.
//
// Merging object keys into a root array, or array items into an object,
// fails with ErrShapeMismatch. An empty array stores no paths, so it reads
// back as an empty map and accepts either shape.
type Merge map[string]any

// Updater receives the current value. A container result is merged, any
// other non-nil result replaces the value. Returning nil means the argument
// was edited in place and is merged back.
type Updater func(current any) any

// Replace writes Value as SetValue does.
type Replace struct {
	Value any
}

func (Merge) isUpdate() {}

func (Updater) isUpdate() {}

func (Replace) isUpdate() {}

func (s *WriteableSignal) Set(u Update) error {
	switch u := u.(type) {
	case Merge:
		if len(u) == 0 {
			return s.mergeFlat(flat.Map{})
		}
		return s.merge(map[string]any(u))
	case Updater:
		if u == nil {
			return ErrNilCallback
		}
		current, err := s.Peek()
		if err != nil {
			return err
		}
		next := u(current)
		if next == nil {
			return s.merge(current)
		}
		return s.merge(next)
	case Replace:
		s.SetValue(u.Value)
		return nil
	case nil:
		return ErrNilCallback
	default:
		panic(fmt.Sprintf("unknown update %T", u))
	}
}

// merge overlays patch on the stored encoding. Leaves replace the value
// outright, as does any patch applied to a value that is not a container.
func (s *WriteableSignal) merge(patch any) error {
	if !flat.IsContainer(patch) {
		s.SetValue(patch)
		return nil
	}

	p, err := s.rs.codec.Flatten(patch, "")
	if err != nil {
		return fmt.Errorf("merge signal: %w", err)
	}
	return s.mergeFlat(p)
}

func (s *WriteableSignal) mergeFlat(p flat.Map) error {
	base, ok := s.stored.(flat.Map)
	if !ok {
		base = flat.Map{}
	}
	if len(base) > 0 && len(p) > 0 && base.IsList() != p.IsList() {
		return ErrShapeMismatch
	}
	s.write(base.Merge(p))
	return nil
}
