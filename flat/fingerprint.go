package flat

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the encoding in key order. Two maps holding the same
// paths and leaves hash the same regardless of insertion order.
func (m Map) Fingerprint() uint64 {
	d := xxhash.New()
	for _, k := range m.Keys() {
		d.WriteString(k)
		d.Write([]byte{0})
		d.WriteString(leafString(m[k]))
		d.Write([]byte{0})
	}
	return d.Sum64()
}

// LeafFingerprint hashes a single unflattened leaf.
func LeafFingerprint(v any) uint64 {
	return xxhash.Sum64String(leafString(v))
}

func leafString(v any) string {
	if marker, ok := v.(Marker); ok {
		return "func:" + marker.Source
	}
	return fmt.Sprintf("%T:%v", v, v)
}
