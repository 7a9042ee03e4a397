package reactive

// Effect runs fn once and subscribes it to the last signal fn read. An fn
// that reads nothing is never re-run. If fn fails the error is returned and
// nothing is subscribed; failures on later re-runs go to the OnErrorFunc.
//
// The tracker is not cleared before fn runs, so a read made outside any
// effect is picked up by the next Effect whose body reads nothing.
func Effect(rs *ReactiveSystem, fn ErrFn) error {
	if fn == nil {
		return ErrNilCallback
	}
	if err := fn(); err != nil {
		return err
	}
	if dep := rs.tracker.ConsumeLastRead(); dep != nil {
		rs.subscribe(dep, fn)
	}
	return nil
}
