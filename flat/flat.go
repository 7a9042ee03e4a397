package flat

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const DefaultSeparator = "."

// MaxIndex bounds array indices accepted by Unflatten so a hostile key like
// "a[99999999999]" cannot allocate an enormous slice.
const MaxIndex = 1 << 20

var (
	ErrKeyCollision    = errors.New("flat: key collision")
	ErrIndexOutOfRange = errors.New("flat: array index out of range")
	ErrMalformedPath   = errors.New("flat: malformed path")
)

// Map is a single level encoding of a nested value. Keys are paths like
// "user.tags[1]" and values are leaves or Markers, never containers.
type Map map[string]any

// Codec converts between nested values and their flat encoding.
type Codec struct {
	// Separator joins object keys, "." when empty.
	Separator string
	// Funcs resolves Markers back into callables during Unflatten.
	Funcs *Registry
	// Strict makes Flatten and Unflatten fail with ErrKeyCollision instead
	// of letting one path overwrite or shadow another.
	Strict bool
}

func (c *Codec) sep() string {
	if c == nil || c.Separator == "" {
		return DefaultSeparator
	}
	return c.Separator
}

// Flatten encodes value using the default codec. Collisions overwrite.
func Flatten(value any, prefix, separator string) Map {
	c := &Codec{Separator: separator}
	m, _ := c.Flatten(value, prefix)
	return m
}

// Flatten encodes value under prefix. A leaf root with an empty prefix is not
// flattened and yields a nil Map.
func (c *Codec) Flatten(value any, prefix string) (Map, error) {
	w := &walker{
		sep:  c.sep(),
		out:  Map{},
		seen: mapset.NewThreadUnsafeSet[string](),
	}

	v := reflect.ValueOf(value)
	switch {
	case isMap(v):
		w.object(v, prefix)
	case isList(v):
		w.list(v, prefix)
	case prefix != "":
		w.leaf(prefix, v)
	default:
		return nil, nil
	}

	if c != nil && c.Strict {
		collisions := append(w.collisions, shadowedPaths(w.out, w.sep)...)
		if len(collisions) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrKeyCollision, collisions)
		}
	}
	return w.out, nil
}

type walker struct {
	sep        string
	out        Map
	seen       mapset.Set[string]
	collisions []string
}

func (w *walker) join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + w.sep + key
}

func (w *walker) object(v reflect.Value, prefix string) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	for _, k := range keys {
		w.value(w.join(prefix, k.String()), v.MapIndex(k))
	}
}

func (w *walker) list(v reflect.Value, prefix string) {
	for i := 0; i < v.Len(); i++ {
		w.value(prefix+"["+strconv.Itoa(i)+"]", v.Index(i))
	}
}

func (w *walker) value(path string, v reflect.Value) {
	v = unwrap(v)
	switch {
	case isMap(v):
		w.object(v, path)
	case isList(v):
		w.list(v, path)
	default:
		w.leaf(path, v)
	}
}

func (w *walker) leaf(path string, v reflect.Value) {
	if !w.seen.Add(path) {
		w.collisions = append(w.collisions, path)
	}

	v = unwrap(v)
	switch {
	case !v.IsValid():
		w.out[path] = nil
	case v.Kind() == reflect.Func:
		if v.IsNil() {
			w.out[path] = nil
			return
		}
		w.out[path] = Marker{IsSerializedFunction: true, Source: funcName(v)}
	default:
		w.out[path] = v.Interface()
	}
}

// unwrap strips interface boxing so map[string]any children report their
// dynamic kind.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isMap(v reflect.Value) bool {
	v = unwrap(v)
	return v.IsValid() && v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String && !v.IsNil()
}

func isList(v reflect.Value) bool {
	v = unwrap(v)
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Slice:
		return !v.IsNil()
	case reflect.Array:
		return true
	}
	return false
}

// IsContainer reports whether value would be flattened rather than stored
// as a leaf: a non-nil string keyed map, a non-nil slice or an array.
// Structs are leaves; their fields are not flattened, so a signal holding a
// struct keeps it whole and a merge onto it replaces it.
func IsContainer(value any) bool {
	v := reflect.ValueOf(value)
	return isMap(v) || isList(v)
}

// Unflatten decodes m using the default separator handling. Markers cannot be
// resolved without a registry, use a Codec for that.
func Unflatten(m Map, separator string) (any, error) {
	c := &Codec{Separator: separator}
	return c.Unflatten(m)
}

// Unflatten rebuilds the nested value encoded by m. Containers are created
// lazily: map[string]any for keys and []any for indices.
func (c *Codec) Unflatten(m Map) (any, error) {
	if len(m) == 0 {
		return map[string]any{}, nil
	}
	if c != nil && c.Strict {
		if shadowed := shadowedPaths(m, c.sep()); len(shadowed) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrKeyCollision, shadowed)
		}
	}

	var root any
	for _, key := range m.Keys() {
		steps, err := parsePath(key, c.sep())
		if err != nil {
			return nil, err
		}

		leaf := m[key]
		if marker, ok := leaf.(Marker); ok && marker.IsSerializedFunction {
			fn, err := c.Funcs.Resolve(marker.Source)
			if err != nil {
				return nil, fmt.Errorf("unflatten %q: %w", key, err)
			}
			leaf = fn
		}

		root = assign(root, steps, leaf)
	}
	return root, nil
}

// shadowedPaths lists leaf paths that are also the parent of another path,
// like "a" next to "a.b" or "a[0]". Unflatten keeps only the deeper one.
func shadowedPaths(m Map, sep string) []string {
	var shadowed []string
	for _, k := range m.Keys() {
		for i := 1; i < len(k); i++ {
			if k[i] != '[' && !strings.HasPrefix(k[i:], sep) {
				continue
			}
			if _, ok := m[k[:i]]; ok {
				shadowed = append(shadowed, k[:i])
			}
		}
	}
	return shadowed
}

func assign(container any, steps []step, leaf any) any {
	if len(steps) == 0 {
		return leaf
	}

	st := steps[0]
	if st.isIndex {
		arr, ok := container.([]any)
		if !ok {
			arr = []any{}
		}
		for len(arr) <= st.index {
			arr = append(arr, nil)
		}
		arr[st.index] = assign(arr[st.index], steps[1:], leaf)
		return arr
	}

	obj, ok := container.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	obj[st.key] = assign(obj[st.key], steps[1:], leaf)
	return obj
}

// Keys returns the paths of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsList reports whether m encodes a root array, every path starting with
// an index.
func (m Map) IsList() bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "[") {
			return false
		}
	}
	return true
}

// Merge returns a new Map holding m overlaid with patch.
func (m Map) Merge(patch Map) Map {
	out := make(Map, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
