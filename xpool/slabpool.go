// Package xpool 按类型划分的slab节点池
// 多slab增长 + 无锁空闲栈: 分配/回收走CAS热路径，仅增长走自旋锁冷路径
// 同一类型同一容量的所有分配器共享一个进程级池，链表节点可在容器间拼接
package xpool

import (
	"reflect"
	"sync"

	"go.uber.org/atomic"

	"github.com/DeguiLiu/eventpp/xsync"
)

// DefaultSlabCapacity 默认每个slab的槽位数
const DefaultSlabCapacity = 4096

// Slot 池中的一个槽位 容纳一个T值
// next仅在槽位位于空闲栈中时有效
type Slot[T any] struct {
	next    *Slot[T]
	foreign bool // 非池内分配(多元素回退)，回收时直接交给GC
	Value   T
}

// slab 固定容量的槽位数组 slab之间构成单链表 直到池销毁前不释放
type slab[T any] struct {
	slots []Slot[T]
	next  *slab[T]
}

// Pool 多slab节点池
// 空闲栈为无锁LIFO: 槽位要么借出要么在栈中，同一地址不会同时出现两次，
// 因此按成员唯一性论证不受ABA影响
type Pool[T any] struct {
	freeHead atomic.Pointer[Slot[T]]
	growMu   xsync.SpinLock
	slabHead *slab[T] // growMu保护
	capacity int
	maxSlabs int // 0表示不限制
	slabs    atomic.Int32
	loaned   atomic.Int64
}

type poolKey struct {
	typ      reflect.Type
	capacity int
}

var pools sync.Map // poolKey -> *Pool[T]

// Of 返回(T, capacity)对应的进程级池实例
// 同参数的所有调用返回同一实例，这是分配器相等性的来源
func Of[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultSlabCapacity
	}
	key := poolKey{typ: reflect.TypeOf((*T)(nil)), capacity: capacity}
	if v, ok := pools.Load(key); ok {
		return v.(*Pool[T])
	}
	v, _ := pools.LoadOrStore(key, &Pool[T]{capacity: capacity})
	return v.(*Pool[T])
}

// NewPool 新建独立池 仅测试与特殊场景使用 常规入口是Of
func NewPool[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultSlabCapacity
	}
	return &Pool[T]{capacity: capacity}
}

// SetMaxSlabs 限制slab数量 0为不限制
// 达到上限后Get返回nil，上层以分配失败处理
func (p *Pool[T]) SetMaxSlabs(n int) {
	p.growMu.Lock()
	p.maxSlabs = n
	p.growMu.Unlock()
}

// Get 取出一个空闲槽位
// 热路径: CAS弹出空闲栈头
// 冷路径: 栈空时在增长锁内复查并追加新slab，再重试弹出
func (p *Pool[T]) Get() *Slot[T] {
	for {
		head := p.freeHead.Load()
		if head == nil {
			p.growMu.Lock()
			if p.freeHead.Load() == nil && !p.grow() {
				p.growMu.Unlock()
				return nil
			}
			p.growMu.Unlock()
			continue
		}
		if p.freeHead.CompareAndSwap(head, head.next) {
			head.next = nil
			p.loaned.Inc()
			return head
		}
	}
}

// Put 归还槽位
// 池内槽位压回空闲栈; foreign槽位直接丢给GC(等价于交还系统分配器)
func (p *Pool[T]) Put(s *Slot[T]) {
	if s == nil || s.foreign {
		return
	}
	var zero T
	s.Value = zero
	p.loaned.Dec()
	p.push(s)
}

// push CAS压栈 发布新的栈头
func (p *Pool[T]) push(s *Slot[T]) {
	for {
		head := p.freeHead.Load()
		s.next = head
		if p.freeHead.CompareAndSwap(head, s) {
			return
		}
	}
}

// grow 追加一个slab并把全部槽位发布到空闲栈
// 必须在growMu内调用 返回false表示已达slab上限
func (p *Pool[T]) grow() bool {
	if p.maxSlabs > 0 && int(p.slabs.Load()) >= p.maxSlabs {
		return false
	}
	s := &slab[T]{
		slots: make([]Slot[T], p.capacity),
		next:  p.slabHead,
	}
	p.slabHead = s
	p.slabs.Inc()
	// 回收路径可能并发压栈 这里同样走CAS发布
	for i := range s.slots {
		p.push(&s.slots[i])
	}
	return true
}

// Capacity 每个slab的槽位数
func (p *Pool[T]) Capacity() int {
	return p.capacity
}

// Slabs 当前slab数量
func (p *Pool[T]) Slabs() int {
	return int(p.slabs.Load())
}

// Loaned 当前借出的槽位数
func (p *Pool[T]) Loaned() int64 {
	return p.loaned.Load()
}

// Owns 槽位是否为池内槽位(非foreign) 仅依据槽位自身的foreign标记，
// 不校验槽位来自哪一个池
func (p *Pool[T]) Owns(s *Slot[T]) bool {
	return s != nil && !s.foreign
}
