package bst

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func distinctValues() *rapid.Generator[[]int64] {
	return rapid.SliceOfDistinct(rapid.Int64(), func(v int64) int64 { return v })
}

func TestInOrderAlwaysSorted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		assert := assert.New(t)
		vals := distinctValues().Draw(t, "vals")

		tr := New()
		for _, v := range vals {
			tr = tr.Insert(Value(v))
		}

		got := tr.Traverse(InOrder)
		assert.Len(got, len(vals))
		for i := 1; i < len(got); i++ {
			assert.Less(got[i-1], got[i], "in-order not strictly ascending at %d", i)
		}
	})
}

func TestInsertDeleteRestoresTree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		assert := assert.New(t)
		vals := rapid.SliceOfNDistinct(rapid.Int64(), 1, -1, func(v int64) int64 { return v }).Draw(t, "vals")

		// First drawn value is the transient insert; the rest build the tree.
		fresh := Value(vals[0])
		tr := New()
		for _, v := range vals[1:] {
			tr = tr.Insert(Value(v))
		}
		before := tr.Clone()

		after := tr.Insert(fresh).Delete(fresh)

		assert.True(sameNodes(before.Root(), after.Root(), true),
			"insert then delete of %d did not restore tree", fresh)
	})
}

func TestRangeQueryMatchesFilteredInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		assert := assert.New(t)
		vals := distinctValues().Draw(t, "vals")
		min := Value(rapid.Int64().Draw(t, "min"))
		max := Value(rapid.Int64().Draw(t, "max"))

		tr := New()
		for _, v := range vals {
			tr = tr.Insert(Value(v))
		}

		sorted := append([]int64(nil), vals...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		var want []Value
		for _, v := range sorted {
			if Value(v) >= min && Value(v) <= max {
				want = append(want, Value(v))
			}
		}

		assert.Equal(want, tr.RangeQuery(min, max))
	})
}

func TestOperationsPreserveSnapshots(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		assert := assert.New(t)
		vals := rapid.SliceOfNDistinct(rapid.Int64(), 1, -1, func(v int64) int64 { return v }).Draw(t, "vals")
		x := Value(rapid.Int64().Draw(t, "x"))

		tr := New()
		for _, v := range vals {
			tr = tr.Insert(Value(v))
		}
		snapshot := tr.Clone()

		tr.Insert(x)
		tr.Delete(Value(vals[0]))
		tr.EditValue(tr.Root().ID, x)

		assert.True(sameNodes(snapshot.Root(), tr.Root(), true),
			"structural operations mutated their receiver")
	})
}
