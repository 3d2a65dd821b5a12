package xpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	a int64
	b string
}

func TestPoolGetPut(t *testing.T) {
	p := NewPool[payload](8)
	s := p.Get()
	require.NotNil(t, s)
	assert.True(t, p.Owns(s))
	assert.EqualValues(t, 1, p.Loaned())

	s.Value = payload{a: 42, b: "x"}
	p.Put(s)
	assert.EqualValues(t, 0, p.Loaned())

	// 回收时负载清零
	s2 := p.Get()
	assert.Equal(t, payload{}, s2.Value)
	p.Put(s2)
}

func TestPoolGrowsBeyondSlab(t *testing.T) {
	p := NewPool[payload](4)
	slots := make([]*Slot[payload], 0, 10)
	for i := 0; i < 10; i++ {
		s := p.Get()
		require.NotNil(t, s)
		slots = append(slots, s)
	}
	// 4槽slab承载10个借出至少要3个slab
	assert.GreaterOrEqual(t, p.Slabs(), 3)
	assert.EqualValues(t, 10, p.Loaned())

	seen := make(map[*Slot[payload]]bool)
	for _, s := range slots {
		assert.False(t, seen[s], "same slot loaned twice")
		seen[s] = true
		p.Put(s)
	}
	assert.EqualValues(t, 0, p.Loaned())
}

func TestPoolMaxSlabs(t *testing.T) {
	p := NewPool[payload](2)
	p.SetMaxSlabs(1)
	a := p.Get()
	b := p.Get()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Nil(t, p.Get(), "exhausted pool must refuse")
	p.Put(a)
	assert.NotNil(t, p.Get(), "recycled slot usable again")
	_ = b
}

func TestPoolRecyclesSameStorage(t *testing.T) {
	p := NewPool[payload](4)
	s := p.Get()
	p.Put(s)
	// LIFO空闲栈 刚归还的槽位优先复用
	assert.Same(t, s, p.Get())
}

func TestOfReturnsProcessWideInstance(t *testing.T) {
	a := Of[payload](64)
	b := Of[payload](64)
	assert.Same(t, a, b)
	c := Of[payload](128)
	assert.NotSame(t, a, c)
}

func TestPoolConcurrentGetPut(t *testing.T) {
	p := NewPool[payload](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]*Slot[payload], 0, 4)
			for i := 0; i < 2000; i++ {
				s := p.Get()
				if s == nil {
					t.Error("unlimited pool returned nil")
					return
				}
				local = append(local, s)
				if len(local) == cap(local) {
					for _, l := range local {
						p.Put(l)
					}
					local = local[:0]
				}
			}
			for _, l := range local {
				p.Put(l)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 0, p.Loaned())
}

func TestAllocatorEquality(t *testing.T) {
	a := NewAllocator[payload](256)
	b := NewAllocator[payload](256)
	// 同类型同容量的分配器共享同一个池 恒相等 节点可在容器间拼接
	assert.True(t, a.Equal(b))
	assert.Same(t, a.Pool(), b.Pool())

	s, err := a.Allocate()
	require.NoError(t, err)
	// a分配的槽位交给b回收 等价于链表splice后的释放路径
	b.Deallocate(s)
	assert.EqualValues(t, 0, a.Pool().Loaned())
}

func TestAllocatorMultiElementFallback(t *testing.T) {
	a := NewAllocator[payload](256)
	slots := a.AllocateN(3)
	require.Len(t, slots, 3)
	for i := range slots {
		assert.False(t, a.Pool().Owns(&slots[i]))
		a.Deallocate(&slots[i]) // foreign槽位丢给GC 不得进池
	}
	assert.Nil(t, a.AllocateN(0))
}
