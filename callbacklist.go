package eventpp

import (
	"sync"

	"go.uber.org/atomic"
)

// Callback 监听器回调
type Callback[T any] func(arg T)

// clNode 回调链表节点
// 物理摘除只在 removed && refCount==0 时发生，
// 否则推迟到最后一个持有引用的遍历释放时
type clNode[T any] struct {
	prev     *clNode[T]
	next     *clNode[T]
	cb       Callback[T]
	counter  uint64 // 插入序号 单调递增
	refCount int32  // 并发遍历持有数 锁内修改
	removed  bool
}

// Handle 监听器句柄 由Append/Prepend/InsertBefore产生 用于后续移除
// 零值无效 句柄在其他监听器增删后仍然有效
type Handle[T any] struct {
	node *clNode[T]
	list *CallbackList[T]
}

// Valid 句柄是否指向某个链表的节点
func (h Handle[T]) Valid() bool {
	return h.node != nil && h.list != nil
}

// CallbackList 单个事件的有序监听器链表
// 支持遍历期间并发增删，包括监听器在自身执行中移除自己
type CallbackList[T any] struct {
	mu      sync.Locker
	head    *clNode[T]
	tail    *clNode[T]
	counter atomic.Uint64 // 锁内递增 作为遍历快照的上限
}

// NewCallbackList 新建回调链表 policy为nil时采用多线程预设
func NewCallbackList[T any](policy *Policy) *CallbackList[T] {
	p := policy.normalize()
	return &CallbackList[T]{mu: p.NewMutex()}
}

// Append 追加监听器到尾部 返回句柄
// 分发进行中追加的监听器对本轮分发不可见
func (l *CallbackList[T]) Append(cb Callback[T]) Handle[T] {
	n := &clNode[T]{cb: cb}
	l.mu.Lock()
	n.counter = l.counter.Inc()
	if l.tail == nil {
		l.head, l.tail = n, n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.mu.Unlock()
	return Handle[T]{node: n, list: l}
}

// Prepend 插入监听器到头部 返回句柄
func (l *CallbackList[T]) Prepend(cb Callback[T]) Handle[T] {
	n := &clNode[T]{cb: cb}
	l.mu.Lock()
	n.counter = l.counter.Inc()
	if l.head == nil {
		l.head, l.tail = n, n
	} else {
		n.next = l.head
		l.head.prev = n
		l.head = n
	}
	l.mu.Unlock()
	return Handle[T]{node: n, list: l}
}

// InsertBefore 在锚点之前插入监听器
// 锚点属于其他链表或已被移除时返回ErrInvalidAnchor
func (l *CallbackList[T]) InsertBefore(cb Callback[T], before Handle[T]) (Handle[T], error) {
	if before.list != l || before.node == nil {
		return Handle[T]{}, ErrInvalidAnchor
	}
	n := &clNode[T]{cb: cb}
	l.mu.Lock()
	anchor := before.node
	if anchor.removed {
		l.mu.Unlock()
		return Handle[T]{}, ErrInvalidAnchor
	}
	n.counter = l.counter.Inc()
	n.prev = anchor.prev
	n.next = anchor
	if anchor.prev == nil {
		l.head = n
	} else {
		anchor.prev.next = n
	}
	anchor.prev = n
	l.mu.Unlock()
	return Handle[T]{node: n, list: l}, nil
}

// Remove 移除句柄对应的监听器
// 首次成功返回true 此后幂等返回false
// 节点仍被遍历引用时仅打removed标记，摘除推迟到引用清零
func (l *CallbackList[T]) Remove(h Handle[T]) bool {
	if h.list != l || h.node == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := h.node
	if n.removed {
		return false
	}
	n.removed = true
	if n.refCount == 0 {
		l.unlink(n)
	}
	return true
}

// unlink 物理摘除 须持锁且 removed && refCount==0
// 保留n.next指向后继，持有陈旧指针的遍历仍可前进
func (l *CallbackList[T]) unlink(n *clNode[T]) {
	if n.prev == nil {
		if l.head == n {
			l.head = n.next
		}
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		if l.tail == n {
			l.tail = n.prev
		}
	} else {
		n.next.prev = n.prev
	}
	n.prev = nil
	n.cb = nil
}

// releaseNode 遍历释放节点引用 须持锁
func (l *CallbackList[T]) releaseNode(n *clNode[T]) {
	n.refCount--
	if n.refCount == 0 && n.removed {
		l.unlink(n)
	}
}

// acquireFrom 从start向后找到第一个可见节点并增加其引用 须持锁
// 跳过removed节点与序号超过ceiling(遍历开始后插入)的节点
func (l *CallbackList[T]) acquireFrom(start *clNode[T], ceiling uint64) (*clNode[T], Callback[T]) {
	n := start
	for n != nil && (n.removed || n.counter > ceiling) {
		n = n.next
	}
	if n == nil {
		return nil, nil
	}
	n.refCount++
	return n, n.cb
}

// forEachIf 遍历核心 visit返回false提前终止 此时整体返回false
// 每个节点的回调在锁外执行; visit抛出panic时先释放持有的引用再继续展开
func (l *CallbackList[T]) forEachIf(visit func(cb Callback[T]) bool) bool {
	l.mu.Lock()
	ceiling := l.counter.Load()
	n, cb := l.acquireFrom(l.head, ceiling)
	l.mu.Unlock()

	for n != nil {
		cont := false
		finished := false
		func() {
			defer func() {
				if !finished {
					l.mu.Lock()
					l.releaseNode(n)
					l.mu.Unlock()
				}
			}()
			cont = visit(cb)
			finished = true
		}()

		l.mu.Lock()
		var next *clNode[T]
		var nextCb Callback[T]
		if cont {
			next, nextCb = l.acquireFrom(n.next, ceiling)
		}
		l.releaseNode(n)
		l.mu.Unlock()
		if !cont {
			return false
		}
		n, cb = next, nextCb
	}
	return true
}

// Dispatch 按插入顺序调用全部可见监听器
// 监听器panic向调用方传播 后续监听器不再执行 引用计数正确回收
func (l *CallbackList[T]) Dispatch(arg T) {
	l.forEachIf(func(cb Callback[T]) bool {
		if cb != nil {
			cb(arg)
		}
		return true
	})
}

// ForEach 按插入顺序访问全部可见监听器
func (l *CallbackList[T]) ForEach(visit func(cb Callback[T])) {
	l.forEachIf(func(cb Callback[T]) bool {
		visit(cb)
		return true
	})
}

// ForEachIf 同ForEach visit返回false时终止并返回false
func (l *CallbackList[T]) ForEachIf(visit func(cb Callback[T]) bool) bool {
	return l.forEachIf(visit)
}

// Empty 是否没有存活的监听器
func (l *CallbackList[T]) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for n := l.head; n != nil; n = n.next {
		if !n.removed {
			return false
		}
	}
	return true
}
