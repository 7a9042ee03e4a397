package reactive

import "github.com/delaneyj/flatsignals/flat"

// ReactiveSystem owns the read tracker and the subscriber table for the
// signals created against it. It is not safe for concurrent use; give each
// goroutine its own system.
type ReactiveSystem struct {
	tracker Tracker
	effects map[*WriteableSignal][]ErrFn
	codec   *flat.Codec
	onError OnErrorFunc
}

type Option func(rs *ReactiveSystem)

func WithTracker(t Tracker) Option {
	return func(rs *ReactiveSystem) {
		rs.tracker = t
	}
}

// WithCodec sets the codec used to store container values. Its registry
// resolves function leaves on read.
func WithCodec(c *flat.Codec) Option {
	return func(rs *ReactiveSystem) {
		rs.codec = c
	}
}

func CreateReactiveSystem(onError OnErrorFunc, opts ...Option) *ReactiveSystem {
	rs := &ReactiveSystem{
		tracker: &SlotTracker{},
		effects: map[*WriteableSignal][]ErrFn{},
		codec:   &flat.Codec{},
		onError: onError,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Subscribers reports how many callbacks re-run when s is written.
func (rs *ReactiveSystem) Subscribers(s *WriteableSignal) int {
	return len(rs.effects[s])
}

func (rs *ReactiveSystem) subscribe(s *WriteableSignal, fn ErrFn) {
	rs.effects[s] = append(rs.effects[s], fn)
}

// notify runs the subscribers present when the write started, in the order
// they subscribed.
func (rs *ReactiveSystem) notify(s *WriteableSignal) {
	subs := rs.effects[s]
	for _, fn := range subs {
		if err := fn(); err != nil {
			rs.reportError(s, err)
		}
	}
}

func (rs *ReactiveSystem) reportError(from SignalAware, err error) {
	if rs.onError != nil {
		rs.onError(from, err)
	}
}
