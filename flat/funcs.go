package flat

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sort"
)

var ErrUnknownFunction = errors.New("flat: unknown function")

// Marker stands in for a function leaf. Source names the function; it is
// resolved back into a callable through a Registry.
type Marker struct {
	IsSerializedFunction bool   `json:"isSerializedFunction"`
	Source               string `json:"sourceText"`
}

// Registry maps function names back to callables. The callable handed out is
// whatever was registered, so a closure's captured state is not carried
// through a flatten/unflatten round trip.
type Registry struct {
	funcs map[string]any
}

func NewRegistry() *Registry {
	return &Registry{
		funcs: map[string]any{},
	}
}

// Register adds fns under their runtime symbol names, the same names Flatten
// writes into Markers.
func (r *Registry) Register(fns ...any) {
	for _, fn := range fns {
		v := reflect.ValueOf(fn)
		if v.Kind() != reflect.Func || v.IsNil() {
			panic(fmt.Sprintf("flat: cannot register %T", fn))
		}
		r.RegisterAs(funcName(v), fn)
	}
}

func (r *Registry) RegisterAs(name string, fn any) {
	r.funcs[name] = fn
}

func (r *Registry) Resolve(name string) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("%w %q: no registry", ErrUnknownFunction, name)
	}
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFunction, name)
	}
	return fn, nil
}

// Names lists registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuncName returns the name Flatten records for fn.
func FuncName(fn any) string {
	return funcName(reflect.ValueOf(fn))
}

func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return f.Name()
}
