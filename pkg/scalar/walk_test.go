package scalar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func labels(vs []Value) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		l, _ := v.Label()
		out = append(out, l)
	}
	return out
}

func TestWalkOrder(t *testing.T) {
	var got []string
	var depths []int
	Walk(buildLoss(), func(v Value, d int) bool {
		l, _ := v.Label()
		got = append(got, l)
		depths = append(depths, d)
		return true
	})

	assert.Equal(t, []string{"L", "d", "e", "a", "b", "c", "f"}, got)
	assert.Equal(t, []int{0, 1, 2, 3, 3, 2, 1}, depths)
}

func TestWalkStops(t *testing.T) {
	n := 0
	Walk(buildLoss(), func(Value, int) bool {
		n++
		return n < 3
	})
	assert.Equal(t, 3, n)
}

func TestLeavesFindDepthSize(t *testing.T) {
	l := buildLoss()

	assert.Equal(t, []string{"a", "b", "c", "f"}, labels(Leaves(l)))
	assert.Len(t, Find(l, "e"), 1)
	assert.Empty(t, Find(l, "zzz"))
	assert.Equal(t, 3, Depth(l))
	assert.Equal(t, 7, Size(l))
	assert.Equal(t, 0, Depth(New(1, "x")))
}

func TestFindVisitsSharedNodePerPath(t *testing.T) {
	ar := NewArena()
	x := ar.Leaf(2, "x").Shared()
	y := x.Mul(x)

	found := Find(y, "x")
	assert.Len(t, found, 2)
	assert.True(t, found[0].Same(found[1]))
}
