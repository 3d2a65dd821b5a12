package eventpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendWithCounter(t *testing.T) {
	l := NewCallbackList[int](nil)
	calls := 0
	AppendWithCounter(l, 3, func(int) { calls++ })
	for i := 0; i < 6; i++ {
		l.Dispatch(0)
	}
	assert.Equal(t, 3, calls, "listener removes itself after the third call")
	assert.True(t, l.Empty())
}

func TestAppendWithCounterOne(t *testing.T) {
	l := NewCallbackList[int](nil)
	calls := 0
	AppendWithCounter(l, 1, func(int) { calls++ })
	l.Dispatch(0)
	l.Dispatch(0)
	assert.Equal(t, 1, calls)
}

func TestAppendWithCondition(t *testing.T) {
	l := NewCallbackList[int](nil)
	var got []int
	AppendWithCondition(l, func(v int) bool { return v >= 10 }, func(v int) {
		got = append(got, v)
	})
	l.Dispatch(1)
	l.Dispatch(10) // 执行后条件命中 自动移除
	l.Dispatch(2)
	assert.Equal(t, []int{1, 10}, got)
	assert.True(t, l.Empty())
}

func TestAppendListenerWithCounter(t *testing.T) {
	d := NewDispatcher[int, int](nil)
	calls := 0
	AppendListenerWithCounter(d, 1, 2, func(int, int) { calls++ })
	for i := 0; i < 5; i++ {
		d.Dispatch(1, 0)
	}
	assert.Equal(t, 2, calls)
	assert.False(t, d.HasAnyListener(1))
}

func TestAppendListenerWithCondition(t *testing.T) {
	d := NewDispatcher[int, int](nil)
	calls := 0
	AppendListenerWithCondition(d, 1,
		func(_ int, arg int) bool { return arg == 99 },
		func(int, int) { calls++ })
	d.Dispatch(1, 0)
	d.Dispatch(1, 99)
	d.Dispatch(1, 0)
	assert.Equal(t, 2, calls)
	assert.False(t, d.HasAnyListener(1))
}

func TestCounterRemoverKeepsOtherListeners(t *testing.T) {
	l := NewCallbackList[int](nil)
	stays := 0
	AppendWithCounter(l, 1, func(int) {})
	l.Append(func(int) { stays++ })
	l.Dispatch(0)
	l.Dispatch(0)
	assert.Equal(t, 2, stays)
	assert.False(t, l.Empty())
}
