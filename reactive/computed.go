package reactive

// Computed derives a signal from getter and keeps it current with an owned
// effect. Only the last signal getter reads is tracked, so changes to
// earlier reads do not recompute it. A nil getter returns (nil, false).
func Computed(rs *ReactiveSystem, getter func() any) (*WriteableSignal, bool) {
	if getter == nil {
		return nil, false
	}

	c := Signal(rs, getter())
	_ = Effect(rs, func() error {
		c.SetValue(getter())
		return nil
	})
	return c, true
}

// ComputedOf is Computed with a typed getter that receives the previous
// value. The first evaluations see the zero value, as does any read whose
// stored value is not a T.
func ComputedOf[T any](rs *ReactiveSystem, getter func(oldValue T) T) (*WriteableSignal, bool) {
	if getter == nil {
		return nil, false
	}

	var c *WriteableSignal
	c, ok := Computed(rs, func() any {
		var oldValue T
		if c != nil {
			if v, err := c.Peek(); err == nil {
				oldValue, _ = v.(T)
			}
		}
		return getter(oldValue)
	})
	return c, ok
}
