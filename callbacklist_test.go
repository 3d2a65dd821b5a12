package eventpp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackListAppendOrder(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []int
	l.Append(func(v int) { got = append(got, v*1) })
	l.Append(func(v int) { got = append(got, v*2) })
	l.Append(func(v int) { got = append(got, v*3) })
	l.Dispatch(10)
	assert.Equal(t, []int{10, 20, 30}, got)
}

func TestCallbackListPrepend(t *testing.T) {
	l := NewCallbackList[string](nil)
	var got []string
	l.Append(func(string) { got = append(got, "second") })
	l.Prepend(func(string) { got = append(got, "first") })
	l.Dispatch("")
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestCallbackListInsertBefore(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []string
	l.Append(func(int) { got = append(got, "a") })
	anchor := l.Append(func(int) { got = append(got, "c") })
	_, err := l.InsertBefore(func(int) { got = append(got, "b") }, anchor)
	require.NoError(t, err)
	l.Dispatch(0)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestCallbackListInsertInvalidAnchor(t *testing.T) {
	l := NewCallbackList[int](nil)
	other := NewCallbackList[int](nil)
	foreign := other.Append(func(int) {})

	_, err := l.InsertBefore(func(int) {}, foreign)
	assert.ErrorIs(t, err, ErrInvalidAnchor)

	removed := l.Append(func(int) {})
	require.True(t, l.Remove(removed))
	_, err = l.InsertBefore(func(int) {}, removed)
	assert.ErrorIs(t, err, ErrInvalidAnchor)

	_, err = l.InsertBefore(func(int) {}, Handle[int]{})
	assert.ErrorIs(t, err, ErrInvalidAnchor)
}

func TestCallbackListRemoveIdempotent(t *testing.T) {
	l := NewCallbackList[int](nil)
	calls := 0
	h := l.Append(func(int) { calls++ })
	assert.True(t, l.Remove(h))
	assert.False(t, l.Remove(h), "second remove must report false")
	l.Dispatch(0)
	assert.Zero(t, calls)
	assert.True(t, l.Empty())
}

func TestCallbackListHandleSurvivesNeighborChurn(t *testing.T) {
	l := NewCallbackList[int](nil)
	calls := 0
	a := l.Append(func(int) {})
	target := l.Append(func(int) { calls++ })
	b := l.Append(func(int) {})
	l.Remove(a)
	l.Remove(b)
	l.Append(func(int) {})
	assert.True(t, l.Remove(target), "handle stays valid across neighbor insert/remove")
	l.Dispatch(0)
	assert.Zero(t, calls)
}

func TestCallbackListSelfRemoval(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []string
	var selfHandle Handle[int]
	l.Append(func(int) { got = append(got, "before") })
	selfHandle = l.Append(func(int) {
		got = append(got, "self")
		assert.True(t, l.Remove(selfHandle))
	})
	l.Append(func(int) { got = append(got, "after") })

	l.Dispatch(0)
	assert.Equal(t, []string{"before", "self", "after"}, got)

	got = nil
	l.Dispatch(0)
	assert.Equal(t, []string{"before", "after"}, got, "self-removed listener must not fire again")
}

func TestCallbackListAddDuringDispatchDeferred(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []string
	l.Append(func(int) {
		got = append(got, "original")
		l.Append(func(int) { got = append(got, "added") })
	})

	l.Dispatch(0)
	assert.Equal(t, []string{"original"}, got, "listener added during dispatch fires next cycle")

	got = nil
	l.Dispatch(0)
	assert.Equal(t, []string{"original", "added"}, got)
}

func TestCallbackListRemoveLaterDuringDispatch(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []string
	var second Handle[int]
	l.Append(func(int) {
		got = append(got, "first")
		l.Remove(second)
	})
	second = l.Append(func(int) { got = append(got, "second") })
	l.Dispatch(0)
	assert.Equal(t, []string{"first"}, got, "not-yet-run listener removed mid-dispatch is skipped")
}

func TestCallbackListForEachIfEarlyStop(t *testing.T) {
	l := NewCallbackList[int](nil)
	for i := 0; i < 5; i++ {
		l.Append(func(int) {})
	}
	visited := 0
	done := l.ForEachIf(func(Callback[int]) bool {
		visited++
		return visited < 3
	})
	assert.False(t, done)
	assert.Equal(t, 3, visited)

	visited = 0
	assert.True(t, l.ForEachIf(func(Callback[int]) bool {
		visited++
		return true
	}))
	assert.Equal(t, 5, visited)
}

func TestCallbackListPanicPropagatesAndListStaysUsable(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []string
	l.Append(func(int) { got = append(got, "first") })
	l.Append(func(int) { panic("boom") })
	l.Append(func(int) { got = append(got, "third") })

	assert.PanicsWithValue(t, "boom", func() { l.Dispatch(0) })
	assert.Equal(t, []string{"first"}, got, "listeners after the panicking one are not invoked")

	// 引用计数在panic展开中正确释放 链表仍可工作
	got = nil
	assert.PanicsWithValue(t, "boom", func() { l.Dispatch(0) })
	assert.Equal(t, []string{"first"}, got)
}

func TestCallbackListEmpty(t *testing.T) {
	l := NewCallbackList[int](nil)
	assert.True(t, l.Empty())
	h := l.Append(func(int) {})
	assert.False(t, l.Empty())
	l.Remove(h)
	assert.True(t, l.Empty())
}

func TestCallbackListConcurrentAppendDispatch(t *testing.T) {
	l := NewCallbackList[int](MultipleThreading())
	var mu sync.Mutex
	total := 0
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h := l.Append(func(int) {
					mu.Lock()
					total++
					mu.Unlock()
				})
				l.Dispatch(0)
				l.Remove(h)
			}
		}()
	}
	wg.Wait()
	assert.Positive(t, total)
	assert.True(t, l.Empty())
}

func TestCallbackListSingleThreadingPolicy(t *testing.T) {
	l := NewCallbackList[int](SingleThreading())
	calls := 0
	l.Append(func(int) { calls++ })
	l.Dispatch(0)
	l.Dispatch(0)
	assert.Equal(t, 2, calls)
}
