package eventpp

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/DeguiLiu/eventpp/xpool"
	"github.com/DeguiLiu/eventpp/xsync"
)

// ArgPassingMode 事件键参数传递模式
// 异构监听器的签名在注册时才可知，三种模式在注册/分发时裁决
type ArgPassingMode int

const (
	// ArgPassingAutoDetect 首参类型与事件键类型一致则转发事件键
	ArgPassingAutoDetect ArgPassingMode = iota
	// ArgPassingIncludeEvent 总是把事件键作为首参转发
	ArgPassingIncludeEvent
	// ArgPassingExcludeEvent 从不转发事件键
	ArgPassingExcludeEvent
)

// HeterHandle 异构监听器句柄
type HeterHandle = Handle[[]any]

// heterWrap 把任意func包装成以[]any调用的回调
func heterWrap(fv reflect.Value, ft reflect.Type) Callback[[]any] {
	return func(args []any) {
		in := make([]reflect.Value, len(args))
		for i := range args {
			if args[i] == nil {
				in[i] = reflect.Zero(ft.In(i))
			} else {
				in[i] = reflect.ValueOf(args[i])
			}
		}
		fv.Call(in)
	}
}

// checkArgs 校验实参与形参类型逐位可赋值
func checkArgs(sig reflect.Type, offset int, args []any) error {
	if sig.NumIn()-offset != len(args) {
		return fmt.Errorf("%w: want %d args, got %d", ErrSignatureMismatch, sig.NumIn()-offset, len(args))
	}
	for i := range args {
		want := sig.In(i + offset)
		if args[i] == nil {
			switch want.Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			default:
				return fmt.Errorf("%w: arg %d is nil, want %v", ErrSignatureMismatch, i, want)
			}
			continue
		}
		if got := reflect.TypeOf(args[i]); !got.AssignableTo(want) {
			return fmt.Errorf("%w: arg %d is %v, want %v", ErrSignatureMismatch, i, got, want)
		}
	}
	return nil
}

// funcType 监听器必须为func 返回其反射类型
func funcType(fn any) (reflect.Type, error) {
	if fn == nil {
		return nil, ErrListenerNil
	}
	ft := reflect.TypeOf(fn)
	if ft.Kind() != reflect.Func {
		return nil, ErrListenerNotFunc
	}
	return ft, nil
}

// HeterCallbackList 监听器签名不定的回调链表
// 签名由首个注册者固定 后续注册与分发都按该签名复查
type HeterCallbackList struct {
	mu   sync.Mutex
	sig  reflect.Type
	list *CallbackList[[]any]
}

// NewHeterCallbackList 新建异构回调链表
func NewHeterCallbackList(policy *Policy) *HeterCallbackList {
	return &HeterCallbackList{list: NewCallbackList[[]any](policy)}
}

// Append 注册监听器 与既有签名不符返回ErrSignatureMismatch
func (l *HeterCallbackList) Append(fn any) (HeterHandle, error) {
	ft, err := funcType(fn)
	if err != nil {
		return HeterHandle{}, err
	}
	l.mu.Lock()
	if l.sig == nil {
		l.sig = ft
	} else if l.sig != ft {
		l.mu.Unlock()
		return HeterHandle{}, fmt.Errorf("%w: registered %v, got %v", ErrSignatureMismatch, l.sig, ft)
	}
	l.mu.Unlock()
	return l.list.Append(heterWrap(reflect.ValueOf(fn), ft)), nil
}

// Remove 移除监听器 幂等
func (l *HeterCallbackList) Remove(h HeterHandle) bool {
	return l.list.Remove(h)
}

// Empty 是否没有存活监听器
func (l *HeterCallbackList) Empty() bool {
	return l.list.Empty()
}

// Dispatch 按注册签名校验实参后分发
func (l *HeterCallbackList) Dispatch(args ...any) error {
	l.mu.Lock()
	sig := l.sig
	l.mu.Unlock()
	if sig == nil {
		return nil
	}
	if err := checkArgs(sig, 0, args); err != nil {
		return err
	}
	l.list.Dispatch(args)
	return nil
}

// heterSlot 单个事件键的类型擦除存储
type heterSlot struct {
	sig       reflect.Type // 首个注册者固定的签名
	withEvent bool         // 监听器是否接收事件键首参
	list      *CallbackList[[]any]
}

// HeterDispatcher 监听器签名随事件键变化的分发器
type HeterDispatcher[K comparable] struct {
	policy *Policy
	mode   ArgPassingMode
	mu     xsync.RWLocker
	slots  map[K]*heterSlot
}

// NewHeterDispatcher 新建异构分发器
func NewHeterDispatcher[K comparable](policy *Policy, mode ArgPassingMode) *HeterDispatcher[K] {
	p := policy.normalize()
	return &HeterDispatcher[K]{
		policy: p,
		mode:   mode,
		mu:     p.NewSharedMutex(),
		slots:  make(map[K]*heterSlot),
	}
}

// keyType K的反射类型
func (d *HeterDispatcher[K]) keyType() reflect.Type {
	return reflect.TypeOf((*K)(nil)).Elem()
}

// resolveWithEvent 按模式判定监听器是否接收事件键首参
func (d *HeterDispatcher[K]) resolveWithEvent(ft reflect.Type) (bool, error) {
	keyT := d.keyType()
	hasEventParam := ft.NumIn() > 0 && ft.In(0) == keyT
	switch d.mode {
	case ArgPassingIncludeEvent:
		if !hasEventParam {
			return false, fmt.Errorf("%w: mode requires leading %v param", ErrSignatureMismatch, keyT)
		}
		return true, nil
	case ArgPassingExcludeEvent:
		return false, nil
	default:
		return hasEventParam, nil
	}
}

// slotOf 解析事件键槽位 create时写锁补建
func (d *HeterDispatcher[K]) slotOf(event K, create bool, ft reflect.Type) (*heterSlot, error) {
	d.mu.RLock()
	slot := d.slots[event]
	d.mu.RUnlock()
	if slot == nil && create {
		withEvent, err := d.resolveWithEvent(ft)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		slot = d.slots[event]
		if slot == nil {
			slot = &heterSlot{
				sig:       ft,
				withEvent: withEvent,
				list:      NewCallbackList[[]any](d.policy),
			}
			d.slots[event] = slot
		}
		d.mu.Unlock()
	}
	if slot != nil && ft != nil && slot.sig != ft {
		return nil, fmt.Errorf("%w: event registered as %v, got %v", ErrSignatureMismatch, slot.sig, ft)
	}
	return slot, nil
}

// AppendListener 注册监听器 签名由该事件键的首个注册者固定
func (d *HeterDispatcher[K]) AppendListener(event K, fn any) (HeterHandle, error) {
	ft, err := funcType(fn)
	if err != nil {
		return HeterHandle{}, err
	}
	slot, err := d.slotOf(event, true, ft)
	if err != nil {
		return HeterHandle{}, err
	}
	return slot.list.Append(heterWrap(reflect.ValueOf(fn), ft)), nil
}

// PrependListener 注册监听器到头部
func (d *HeterDispatcher[K]) PrependListener(event K, fn any) (HeterHandle, error) {
	ft, err := funcType(fn)
	if err != nil {
		return HeterHandle{}, err
	}
	slot, err := d.slotOf(event, true, ft)
	if err != nil {
		return HeterHandle{}, err
	}
	return slot.list.Prepend(heterWrap(reflect.ValueOf(fn), ft)), nil
}

// RemoveListener 移除监听器 幂等
func (d *HeterDispatcher[K]) RemoveListener(event K, h HeterHandle) bool {
	slot, _ := d.slotOf(event, false, nil)
	if slot == nil {
		return false
	}
	return slot.list.Remove(h)
}

// HasAnyListener 事件是否有存活监听器
func (d *HeterDispatcher[K]) HasAnyListener(event K) bool {
	slot, _ := d.slotOf(event, false, nil)
	return slot != nil && !slot.list.Empty()
}

// Dispatch 分发 实参按注册签名复查 不符返回ErrSignatureMismatch
func (d *HeterDispatcher[K]) Dispatch(event K, args ...any) error {
	slot, _ := d.slotOf(event, false, nil)
	if slot == nil {
		return nil
	}
	offset := 0
	if slot.withEvent {
		offset = 1
	}
	if err := checkArgs(slot.sig, offset, args); err != nil {
		return err
	}
	full := args
	if slot.withEvent {
		full = make([]any, 0, len(args)+1)
		full = append(full, event)
		full = append(full, args...)
	}
	slot.list.Dispatch(full)
	return nil
}

// heterNode 异构队列节点
type heterNode[K comparable] struct {
	event K
	args  []any
	next  *heterNode[K]
}

// HeterEventQueue 监听器签名随事件键变化的异步队列
type HeterEventQueue[K comparable] struct {
	*HeterDispatcher[K]

	mu     sync.Locker
	freeMu sync.Locker
	cond   xsync.Waiter

	pendingHead  *heterNode[K]
	pendingTail  *heterNode[K]
	pendingCount atomic.Int64
	freeHead     *heterNode[K]

	alloc   xpool.Allocator[heterNode[K]]
	usePool bool
}

// NewHeterEventQueue 新建异构事件队列
func NewHeterEventQueue[K comparable](policy *Policy, mode ArgPassingMode) *HeterEventQueue[K] {
	p := policy.normalize()
	q := &HeterEventQueue[K]{
		HeterDispatcher: NewHeterDispatcher[K](p, mode),
		mu:              p.NewMutex(),
		freeMu:          p.NewMutex(),
		usePool:         p.PoolNodes,
	}
	q.cond = p.NewCond(q.mu)
	if q.usePool {
		q.alloc = xpool.NewAllocator[heterNode[K]](p.SlabCapacity)
	}
	return q
}

// Enqueue 入队一个事件
// 已有注册签名时提前校验实参 分配失败返回ErrAllocationFailure
func (q *HeterEventQueue[K]) Enqueue(event K, args ...any) error {
	if slot, _ := q.slotOf(event, false, nil); slot != nil {
		offset := 0
		if slot.withEvent {
			offset = 1
		}
		if err := checkArgs(slot.sig, offset, args); err != nil {
			return err
		}
	}

	var n *heterNode[K]
	q.freeMu.Lock()
	if q.freeHead != nil {
		n = q.freeHead
		q.freeHead = n.next
	}
	q.freeMu.Unlock()
	if n == nil {
		if q.usePool {
			s, err := q.alloc.Allocate()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrAllocationFailure, err)
			}
			n = &s.Value
		} else {
			n = new(heterNode[K])
		}
	}
	n.event, n.args, n.next = event, args, nil

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
	return nil
}

// recycle 就地清空负载并压回freelist
func (q *HeterEventQueue[K]) recycle(n *heterNode[K]) {
	var zeroK K
	n.event, n.args = zeroK, nil
	q.freeMu.Lock()
	n.next = q.freeHead
	q.freeHead = n
	q.freeMu.Unlock()
}

// Process 排空当前全部pending事件
// 首个签名不匹配即停止 剩余事件按原顺序留在队头
func (q *HeterEventQueue[K]) Process() (bool, error) {
	q.mu.Lock()
	head := q.pendingHead
	q.pendingHead, q.pendingTail = nil, nil
	q.pendingCount.Store(0)
	q.mu.Unlock()
	if head == nil {
		return false, nil
	}
	q.cond.Broadcast()

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
		q.mu.Lock()
		tail.next = q.pendingHead
		q.pendingHead = n
		if q.pendingTail == nil {
			q.pendingTail = tail
		}
		q.pendingCount.Add(int64(count))
		q.mu.Unlock()
	}()
	for n != nil {
		cur := n
		if err := q.HeterDispatcher.Dispatch(cur.event, cur.args...); err != nil {
			return processed, err
		}
		n = n.next
		q.recycle(cur)
		processed = true
	}
	return processed, nil
}

// ProcessOne 只处理一个pending事件
func (q *HeterEventQueue[K]) ProcessOne() (bool, error) {
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
	q.mu.Unlock()
	if n == nil {
		return false, nil
	}
	err := q.HeterDispatcher.Dispatch(n.event, n.args...)
	q.recycle(n)
	return err == nil, err
}

// EmptyQueue 队列是否为空
func (q *HeterEventQueue[K]) EmptyQueue() bool {
	return q.pendingCount.Load() == 0
}

// WaitFor 限时等待队列非空
func (q *HeterEventQueue[K]) WaitFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for i := 0; i < waitSpinCount; i++ {
		if q.pendingCount.Load() > 0 {
			return true
		}
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
