package scope

import (
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/require"
)

func TestScope_DeclareTwiceInSameFrame(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Declare("x", value.Number(1)))

	err := s.Declare("x", value.Number(2))

	require.Error(t, err)
	require.Equal(t, evalerr.VariableAlreadyInUse, evalerr.KindOf(err))
}

func TestScope_ShadowingAndAssign(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	outer := New()
	require.NoError(t, outer.Declare("x", value.Number(1)))
	inner := WithParent(outer)

	// --- Act ---
	require.NoError(t, inner.Assign("x", value.Number(5)))
	require.NoError(t, inner.Declare("y", value.String("local")))

	// --- Assert ---
	got, ok := outer.Get("x")
	require.True(t, ok)
	require.Equal(t, value.Number(5), got, "assignment in a child frame mutates the owner")

	_, ok = outer.Get("y")
	require.False(t, ok, "child declarations are invisible to the parent")

	require.NoError(t, inner.Declare("x", value.Number(9)), "shadowing an outer binding is allowed")
	got, _ = inner.Get("x")
	require.Equal(t, value.Number(9), got)
	got, _ = outer.Get("x")
	require.Equal(t, value.Number(5), got)
}

func TestScope_AssignUnknown(t *testing.T) {
	t.Parallel()

	err := WithParent(New()).Assign("missing", value.Null{})

	require.Equal(t, evalerr.VariableNotFound, evalerr.KindOf(err))
}

func TestScope_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Declare("arr", value.Array{value.Number(1)}))

	got, _ := s.Get("arr")
	got.(value.Array)[0] = value.Number(100)

	again, _ := s.Get("arr")
	require.Equal(t, value.Number(1), again.(value.Array)[0])
}

func TestScope_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := New()
	require.NoError(t, root.Declare("counter", value.Number(0)))
	const workers = 20

	// --- Act ---
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child := WithParent(root)
			_ = child.Declare(fmt.Sprintf("v%d", i), value.Number(float64(i)))
			_, _ = child.Get("counter")
			_ = child.Assign("counter", value.Number(float64(i)))
		}(i)
	}
	wg.Wait()

	// --- Assert ---
	got, ok := root.Get("counter")
	require.True(t, ok)
	require.IsType(t, value.Number(0), got)
	require.Len(t, root.Names(), 1)
}
