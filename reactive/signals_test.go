package reactive_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/flatsignals/flat"
	"github.com/delaneyj/flatsignals/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalStoresContainersFlat(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, map[string]any{
		"user": map[string]any{"name": "ada", "tags": []any{"a", "b"}},
	})

	assert.Equal(t, flat.Map{
		"user.name":    "ada",
		"user.tags[0]": "a",
		"user.tags[1]": "b",
	}, s.Stored())
	assert.Equal(t, map[string]any{
		"user": map[string]any{"name": "ada", "tags": []any{"a", "b"}},
	}, s.Value())

	s.SetValue(3)
	assert.Equal(t, 3, s.Stored())
	assert.Equal(t, 3, s.Value())

	s.SetValue(nil)
	assert.Nil(t, s.Stored())
	assert.Nil(t, s.Value())
}

func TestSignalReadsReturnCopies(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, map[string]any{"a": 1})

	v := s.Value().(map[string]any)
	v["a"] = 2
	assert.Equal(t, map[string]any{"a": 1}, s.Value())
}

func TestSetPartialMerge(t *testing.T) {
	rs := newSystem(t)
	u := reactive.Signal(rs, map[string]any{"name": "x", "age": 1})

	require.NoError(t, u.Set(reactive.Merge{"age": 2}))
	assert.Equal(t, map[string]any{"name": "x", "age": 2}, u.Value())

	require.NoError(t, u.Set(reactive.Merge{"address": map[string]any{"city": "Oslo"}}))
	assert.Equal(t, map[string]any{
		"name":    "x",
		"age":     2,
		"address": map[string]any{"city": "Oslo"},
	}, u.Value())
}

func TestSetEmptyMergeKeepsValue(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, map[string]any{"a": 1})

	runs := 0
	require.NoError(t, reactive.Effect(rs, func() error {
		runs++
		s.Value()
		return nil
	}))

	require.NoError(t, s.Set(reactive.Merge(nil)))
	assert.Equal(t, map[string]any{"a": 1}, s.Value())
	require.NoError(t, s.Set(reactive.Merge{}))
	assert.Equal(t, map[string]any{"a": 1}, s.Value())
	assert.Equal(t, 3, runs)
}

func TestSetMergeShapeMismatch(t *testing.T) {
	rs := newSystem(t)

	list := reactive.Signal(rs, []any{1, 2})
	assert.ErrorIs(t, list.Set(reactive.Merge{"x": 1}), reactive.ErrShapeMismatch)
	assert.Equal(t, []any{1, 2}, list.Value())

	require.NoError(t, list.Set(reactive.Updater(func(current any) any {
		return []any{9}
	})))
	assert.Equal(t, []any{9, 2}, list.Value())

	obj := reactive.Signal(rs, map[string]any{"x": 1})
	err := obj.Set(reactive.Updater(func(current any) any {
		return []any{1}
	}))
	assert.ErrorIs(t, err, reactive.ErrShapeMismatch)
	assert.Equal(t, map[string]any{"x": 1}, obj.Value())

	// an empty array leaves no paths behind
	empty := reactive.Signal(rs, []any{})
	assert.Equal(t, map[string]any{}, empty.Value())
	require.NoError(t, empty.Set(reactive.Merge{"x": 1}))
	assert.Equal(t, map[string]any{"x": 1}, empty.Value())
}

func TestStructsAreLeaves(t *testing.T) {
	type user struct {
		Name string
		Age  int
	}

	rs := newSystem(t)
	s := reactive.Signal(rs, user{Name: "x", Age: 1})
	assert.Equal(t, user{Name: "x", Age: 1}, s.Stored())

	require.NoError(t, s.Set(reactive.Merge{"Age": 2}))
	assert.Equal(t, map[string]any{"Age": 2}, s.Value())
}

func TestSetMergeOntoLeaf(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, 5)

	require.NoError(t, s.Set(reactive.Merge{"a": 1}))
	assert.Equal(t, map[string]any{"a": 1}, s.Value())
}

func TestSetMergeKeepsStaleIndices(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, map[string]any{"list": []any{1, 2, 3}})

	require.NoError(t, s.Set(reactive.Merge{"list": []any{9}}))
	assert.Equal(t, map[string]any{"list": []any{9, 2, 3}}, s.Value())
}

func TestSetUpdater(t *testing.T) {
	rs := newSystem(t)

	t.Run("leaf result replaces", func(t *testing.T) {
		count := reactive.Signal(rs, 1)
		require.NoError(t, count.Set(reactive.Updater(func(current any) any {
			return current.(int) + 1
		})))
		assert.Equal(t, 2, count.Value())
	})

	t.Run("container result merges", func(t *testing.T) {
		u := reactive.Signal(rs, map[string]any{"name": "x", "age": 1})
		require.NoError(t, u.Set(reactive.Updater(func(current any) any {
			return map[string]any{"age": 5}
		})))
		assert.Equal(t, map[string]any{"name": "x", "age": 5}, u.Value())
	})

	t.Run("nil result merges draft", func(t *testing.T) {
		u := reactive.Signal(rs, map[string]any{"name": "x", "age": 1})
		require.NoError(t, u.Set(reactive.Updater(func(current any) any {
			draft := current.(map[string]any)
			draft["age"] = 3
			draft["tags"] = []any{"new"}
			return nil
		})))
		assert.Equal(t, map[string]any{"name": "x", "age": 3, "tags": []any{"new"}}, u.Value())
	})

	t.Run("nil updater", func(t *testing.T) {
		u := reactive.Signal(rs, 1)
		assert.ErrorIs(t, u.Set(reactive.Updater(nil)), reactive.ErrNilCallback)
		assert.ErrorIs(t, u.Set(nil), reactive.ErrNilCallback)
	})
}

func TestSetReplace(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, map[string]any{"a": 1, "b": 2})

	require.NoError(t, s.Set(reactive.Replace{Value: map[string]any{"c": 3}}))
	assert.Equal(t, map[string]any{"c": 3}, s.Value())

	require.NoError(t, s.Set(reactive.Replace{Value: "leaf"}))
	assert.Equal(t, "leaf", s.Value())
}

func TestSetTriggersSubscribers(t *testing.T) {
	rs := newSystem(t)
	u := reactive.Signal(rs, map[string]any{"age": 1})

	runs := 0
	require.NoError(t, reactive.Effect(rs, func() error {
		runs++
		u.Value()
		return nil
	}))

	require.NoError(t, u.Set(reactive.Merge{"age": 2}))
	require.NoError(t, u.Set(reactive.Updater(func(any) any { return nil })))
	require.NoError(t, u.Set(reactive.Replace{Value: 0}))
	assert.Equal(t, 4, runs)
}

func TestFunctionLeaves(t *testing.T) {
	greet := func() any { return "hi" }

	reg := flat.NewRegistry()
	reg.RegisterAs(flat.FuncName(greet), greet)
	rs := reactive.CreateReactiveSystem(nil, reactive.WithCodec(&flat.Codec{Funcs: reg}))

	s := reactive.Signal(rs, map[string]any{"greet": greet})
	marker, ok := s.Stored().(flat.Map)["greet"].(flat.Marker)
	require.True(t, ok)
	assert.True(t, marker.IsSerializedFunction)

	v, err := s.Get()
	require.NoError(t, err)
	fn := v.(map[string]any)["greet"].(func() any)
	assert.Equal(t, "hi", fn())
}

func TestUnresolvedFunctionLeaf(t *testing.T) {
	var reported []error
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		reported = append(reported, err)
	})

	s := reactive.Signal(rs, map[string]any{"f": func() any { return 1 }})

	_, err := s.Get()
	assert.ErrorIs(t, err, flat.ErrUnknownFunction)

	assert.Nil(t, s.Value())
	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], flat.ErrUnknownFunction))

	err = s.Set(reactive.Updater(func(any) any { return 1 }))
	assert.ErrorIs(t, err, flat.ErrUnknownFunction)
}

func TestStrictCodecReportsCollisions(t *testing.T) {
	var reported []error
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		reported = append(reported, err)
	}, reactive.WithCodec(&flat.Codec{Strict: true}))

	s := reactive.Signal(rs, 1)
	s.SetValue(map[string]any{"a": map[string]any{"b": 1}, "a.b": 2})

	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], flat.ErrKeyCollision)
	assert.Equal(t, 1, s.Value())

	err := s.Set(reactive.Merge{"x": map[string]any{"y": 1}, "x.y": 2})
	assert.ErrorIs(t, err, flat.ErrKeyCollision)
}

func TestFingerprint(t *testing.T) {
	rs := newSystem(t)
	a := reactive.Signal(rs, map[string]any{"name": "x", "age": 1})
	b := reactive.Signal(rs, map[string]any{"age": 1, "name": "x"})
	c := reactive.Signal(rs, 1)
	d := reactive.Signal(rs, 1)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, c.Fingerprint(), d.Fingerprint())

	require.NoError(t, b.Set(reactive.Merge{"age": 2}))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestAs(t *testing.T) {
	rs := newSystem(t)
	s := reactive.Signal(rs, "hello")

	v, ok := reactive.As[string](s)
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = reactive.As[int](s)
	assert.False(t, ok)
}
