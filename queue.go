package eventpp

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/DeguiLiu/eventpp/xpool"
	"github.com/DeguiLiu/eventpp/xsync"
)

// WaitFor的三段退避参数: 自旋轮询 → 让出调度器 → 条件变量限时等待
const (
	waitSpinCount  = 1000
	waitYieldCount = 100
)

// queueNode 队列节点 生命周期: enqueue诞生 → pending → 分发 → freelist回收
type queueNode[K comparable, T any] struct {
	event K
	arg   T
	next  *queueNode[K, T]
}

// EventQueue 异步事件队列
// 生产者入队缓冲，消费者批量排空后经分发器调用监听器
// pending与free两条侵入式链表共享节点类型; 任一时刻每个节点
// 恰好处于 {pending, 分发在途, free} 之一
type EventQueue[K comparable, T any] struct {
	*Dispatcher[K, T]

	mu     sync.Locker  // 主锁 保护pending链表
	freeMu sync.Locker  // freelist回收锁 与主锁分离
	cond   xsync.Waiter // 非空信号

	pendingHead  *queueNode[K, T]
	pendingTail  *queueNode[K, T]
	pendingCount atomic.Int64

	freeHead *queueNode[K, T]

	pool *xpool.Pool[queueNode[K, T]] // PoolNodes策略时的节点来源
}

// NewEventQueue 新建事件队列 policy为nil时采用多线程预设
func NewEventQueue[K comparable, T any](policy *Policy, mixins ...Mixin[K, T]) *EventQueue[K, T] {
	p := policy.normalize()
	q := &EventQueue[K, T]{
		Dispatcher: NewDispatcher[K, T](p, mixins...),
		mu:         p.NewMutex(),
		freeMu:     p.NewMutex(),
	}
	q.cond = p.NewCond(q.mu)
	if p.PoolNodes {
		q.pool = xpool.Of[queueNode[K, T]](p.SlabCapacity)
	}
	return q
}

// newNode 构造新节点 池化策略从slab池取 否则普通分配
// 池耗尽(设置过slab上限)以ErrAllocationFailure报给入队方
func (q *EventQueue[K, T]) newNode() *queueNode[K, T] {
	if q.pool != nil {
		s := q.pool.Get()
		if s == nil {
			panic(ErrAllocationFailure)
		}
		return &s.Value
	}
	return new(queueNode[K, T])
}

// takeFreeNode 从freelist取节点
// 锁竞争时立即放弃转为新分配，限制生产者延迟上限
func (q *EventQueue[K, T]) takeFreeNode() *queueNode[K, T] {
	if tl, ok := q.freeMu.(xsync.TryLocker); ok {
		if !tl.TryLock() {
			return nil
		}
	} else {
		q.freeMu.Lock()
	}
	n := q.freeHead
	if n != nil {
		q.freeHead = n.next
		n.next = nil
	}
	q.freeMu.Unlock()
	return n
}

// recycle 就地销毁负载并把节点压回freelist
func (q *EventQueue[K, T]) recycle(n *queueNode[K, T]) {
	var zeroK K
	var zeroT T
	n.event, n.arg = zeroK, zeroT
	q.freeMu.Lock()
	n.next = q.freeHead
	q.freeHead = n
	q.freeMu.Unlock()
}

// Enqueue 入队一个事件
// 同一线程的两次Enqueue保持先后顺序
func (q *EventQueue[K, T]) Enqueue(event K, arg T) {
	n := q.takeFreeNode()
	if n == nil {
		n = q.newNode()
	}
	n.event, n.arg, n.next = event, arg, nil

	q.mu.Lock()
	if q.pendingTail == nil {
		q.pendingHead = n
	} else {
		q.pendingTail.next = n
	}
	q.pendingTail = n
	q.pendingCount.Inc()
	q.mu.Unlock()
	q.cond.Signal()
}

// spliceAll 把整条pending链摘到本地 持锁时间与长度无关
func (q *EventQueue[K, T]) spliceAll() *queueNode[K, T] {
	q.mu.Lock()
	head := q.pendingHead
	q.pendingHead, q.pendingTail = nil, nil
	q.pendingCount.Store(0)
	q.mu.Unlock()
	if head != nil {
		q.cond.Broadcast() // 队列已空 唤醒WaitUntilQueueEmpty
	}
	return head
}

// takeOne 摘下pending头节点
func (q *EventQueue[K, T]) takeOne() *queueNode[K, T] {
	q.mu.Lock()
	n := q.pendingHead
	if n != nil {
		q.pendingHead = n.next
		if q.pendingHead == nil {
			q.pendingTail = nil
		}
		n.next = nil
		q.pendingCount.Dec()
	}
	empty := q.pendingHead == nil
	q.mu.Unlock()
	if n != nil && empty {
		q.cond.Broadcast()
	}
	return n
}

// prependPending 把一段链表按原顺序放回队头
func (q *EventQueue[K, T]) prependPending(head, tail *queueNode[K, T], count int) {
	q.mu.Lock()
	tail.next = q.pendingHead
	q.pendingHead = head
	if q.pendingTail == nil {
		q.pendingTail = tail
	}
	q.pendingCount.Add(int64(count))
	q.mu.Unlock()
	q.cond.Broadcast()
}

// drain 锁外遍历本地链表 每个节点经visit消费后回收
// visit抛出panic时当前节点与剩余节点仍全部回收，节点守恒不破坏
func (q *EventQueue[K, T]) drain(head *queueNode[K, T], visit func(event K, arg T)) {
	n := head
	defer func() {
		for n != nil {
			next := n.next
			q.recycle(n)
			n = next
		}
	}()
	for n != nil {
		cur := n
		n = n.next
		cur.next = nil
		func() {
			defer q.recycle(cur)
			visit(cur.event, cur.arg)
		}()
	}
}

// Process 排空当前全部pending事件
// 至少处理一个返回true 空队列返回false且无副作用
// 处理期间新入队的事件留待下一轮
func (q *EventQueue[K, T]) Process() bool {
	head := q.spliceAll()
	if head == nil {
		return false
	}
	q.drain(head, func(event K, arg T) {
		q.Dispatcher.Dispatch(event, arg)
	})
	return true
}

// ProcessOne 只处理一个pending事件
func (q *EventQueue[K, T]) ProcessOne() bool {
	n := q.takeOne()
	if n == nil {
		return false
	}
	func() {
		defer q.recycle(n)
		q.Dispatcher.Dispatch(n.event, n.arg)
	}()
	return true
}

// ProcessIf 只处理谓词命中的事件 其余按原顺序留在队头
func (q *EventQueue[K, T]) ProcessIf(pred func(event K, arg T) bool) bool {
	head := q.spliceAll()
	if head == nil {
		return false
	}
	processed := false
	var keptHead, keptTail *queueNode[K, T]
	keptCount := 0
	keep := func(n *queueNode[K, T]) {
		n.next = nil
		if keptTail == nil {
			keptHead, keptTail = n, n
		} else {
			keptTail.next = n
			keptTail = n
		}
		keptCount++
	}
	n := head
	defer func() {
		// 未消费的剩余节点接在保留链之后 整体放回队头 panic时同样生效
		for n != nil {
			next := n.next
			keep(n)
			n = next
		}
		if keptHead != nil {
			q.prependPending(keptHead, keptTail, keptCount)
		}
	}()
	for n != nil {
		cur := n
		n = n.next
		if pred(cur.event, cur.arg) {
			func() {
				defer q.recycle(cur)
				q.Dispatcher.Dispatch(cur.event, cur.arg)
			}()
			processed = true
		} else {
			keep(cur)
		}
	}
	return processed
}

// ProcessUntil 处理pending事件直到越过截止时刻 剩余留在队头
func (q *EventQueue[K, T]) ProcessUntil(deadline time.Time) bool {
	head := q.spliceAll()
	if head == nil {
		return false
	}
	processed := false
	n := head
	defer func() {
		if n == nil {
			return
		}
		count := 0
		tail := n
		for m := n; m != nil; m = m.next {
			count++
			tail = m
		}
		q.prependPending(n, tail, count)
	}()
	for n != nil {
		if !time.Now().Before(deadline) {
			break
		}
		cur := n
		n = n.next
		cur.next = nil
		func() {
			defer q.recycle(cur)
			q.Dispatcher.Dispatch(cur.event, cur.arg)
		}()
		processed = true
	}
	return processed
}

// ProcessQueueWith 以访问者直接消费全部pending事件 绕过分发器索引
func (q *EventQueue[K, T]) ProcessQueueWith(visitor func(event K, arg T)) bool {
	head := q.spliceAll()
	if head == nil {
		return false
	}
	q.drain(head, visitor)
	return true
}

// ProcessOneWith 以访问者直接消费一个pending事件
func (q *EventQueue[K, T]) ProcessOneWith(visitor func(event K, arg T)) bool {
	n := q.takeOne()
	if n == nil {
		return false
	}
	func() {
		defer q.recycle(n)
		visitor(n.event, n.arg)
	}()
	return true
}

// Peek 读取队头事件 不出队
func (q *EventQueue[K, T]) Peek() (event K, arg T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pendingHead == nil {
		return
	}
	return q.pendingHead.event, q.pendingHead.arg, true
}

// Take 取走队头事件 节点直接回收
func (q *EventQueue[K, T]) Take() (event K, arg T, ok bool) {
	n := q.takeOne()
	if n == nil {
		return
	}
	event, arg = n.event, n.arg
	q.recycle(n)
	return event, arg, true
}

// EmptyQueue 队列是否为空
func (q *EventQueue[K, T]) EmptyQueue() bool {
	return q.pendingCount.Load() == 0
}

// Wait 阻塞直到队列非空
func (q *EventQueue[K, T]) Wait() {
	q.mu.Lock()
	for q.pendingHead == nil {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// WaitFor 限时等待队列非空
// 三段自适应退避: 先短自旋轮询，再让出调度器，最后条件变量限时等待
// 截止前变为非空返回true 超时返回false
func (q *EventQueue[K, T]) WaitFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for i := 0; i < waitSpinCount; i++ {
		if q.pendingCount.Load() > 0 {
			return true
		}
	}
	for i := 0; i < waitYieldCount; i++ {
		if q.pendingCount.Load() > 0 {
			return true
		}
		runtime.Gosched()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pendingHead == nil {
		remain := time.Until(deadline)
		if remain <= 0 {
			return false
		}
		q.cond.WaitFor(remain)
	}
	return true
}

// WaitUntilQueueEmpty 阻塞直到pending排空
func (q *EventQueue[K, T]) WaitUntilQueueEmpty() {
	q.mu.Lock()
	for q.pendingHead != nil {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// freeListLen 当前freelist长度 测试用
func (q *EventQueue[K, T]) freeListLen() int {
	q.freeMu.Lock()
	defer q.freeMu.Unlock()
	count := 0
	for n := q.freeHead; n != nil; n = n.next {
		count++
	}
	return count
}
