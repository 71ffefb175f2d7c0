package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedMap(t *testing.T) {
	om := NewOrderedMap(0)

	require.True(t, om.Set(3, 30))
	require.True(t, om.Set(2, 20))
	require.True(t, om.Set(1, 10))
	require.False(t, om.Set(2, 21))

	require.Equal(t, 3, om.Len())

	val, ok := om.Get(2)
	require.True(t, ok)
	require.Equal(t, 21, val)

	_, ok = om.Get(4)
	require.False(t, ok)

	require.Equal(t, []interface{}{3, 2, 1}, om.Keys())

	var dec []interface{}
	om.RangeDec(func(k, _ interface{}) bool {
		dec = append(dec, k)
		return true
	})
	require.Equal(t, []interface{}{1, 2, 3}, dec)

	val, ok = om.Delete(3)
	require.True(t, ok)
	require.Equal(t, 30, val)
	require.Equal(t, 2, om.Len())
}

func TestOrderedMapAsQueue(t *testing.T) {
	q := NewOrderedMap(4)
	q.Set("a", nil)
	q.Set("b", nil)
	require.False(t, q.Set("a", nil), "pending keys are not enqueued twice")

	k, _, ok := q.PopOldest()
	require.True(t, ok)
	require.Equal(t, "a", k)

	require.True(t, q.Set("a", nil), "popped keys can be scheduled again")

	k, _, _ = q.PopOldest()
	require.Equal(t, "b", k)
	k, _, _ = q.PopOldest()
	require.Equal(t, "a", k)

	_, _, ok = q.PopOldest()
	require.False(t, ok)
}
