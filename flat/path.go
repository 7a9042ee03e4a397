package flat

import (
	"fmt"
	"strconv"
	"strings"
)

type step struct {
	key     string
	index   int
	isIndex bool
}

// parsePath splits a flat key into object and index steps.
// "a.b[0][2].c" becomes a, b, [0], [2], c. A key starting with "[" indexes
// the root.
func parsePath(path, sep string) ([]step, error) {
	var steps []step
	for _, segment := range strings.Split(path, sep) {
		name, indices, err := splitIndices(segment)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrMalformedPath, path, err)
		}
		if name != "" || len(indices) == 0 {
			steps = append(steps, step{key: name})
		}
		for _, i := range indices {
			steps = append(steps, step{index: i, isIndex: true})
		}
	}
	return steps, nil
}

// splitIndices parses "name[1][2]" into name and its trailing indices. Any
// bracket that is not part of a well formed numeric suffix stays in the name.
func splitIndices(segment string) (string, []int, error) {
	var rev []int
	rest := segment
	for strings.HasSuffix(rest, "]") {
		open := strings.LastIndexByte(rest, '[')
		if open < 0 {
			break
		}
		n, err := strconv.Atoi(rest[open+1 : len(rest)-1])
		if err != nil || n < 0 {
			break
		}
		if n > MaxIndex {
			return "", nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, n)
		}
		rev = append(rev, n)
		rest = rest[:open]
	}

	indices := make([]int, len(rev))
	for i, n := range rev {
		indices[len(rev)-1-i] = n
	}
	return rest, indices, nil
}
