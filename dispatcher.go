package eventpp

import (
	"sort"

	"github.com/DeguiLiu/eventpp/xsync"
)

// EventCallback 带事件键的监听器回调
type EventCallback[K comparable, T any] func(event K, arg T)

// Ignore 适配不关心事件键的监听器
func Ignore[K comparable, T any](cb Callback[T]) EventCallback[K, T] {
	return func(_ K, arg T) {
		cb(arg)
	}
}

// Mixin 分发前后的拦截层 BeforeDispatch返回false时丢弃本次分发
type Mixin[K comparable, T any] interface {
	BeforeDispatch(event K, arg *T) bool
	AfterDispatch(event K, arg *T)
}

// eventIndex 事件键到回调链表的索引
type eventIndex[K comparable, T any] interface {
	get(event K) *CallbackList[T]
	set(event K, cl *CallbackList[T])
	forEach(visit func(event K, cl *CallbackList[T]) bool)
}

// hashIndex 哈希索引 默认容器
type hashIndex[K comparable, T any] struct {
	m map[K]*CallbackList[T]
}

func (h *hashIndex[K, T]) get(event K) *CallbackList[T] { return h.m[event] }
func (h *hashIndex[K, T]) set(event K, cl *CallbackList[T]) {
	h.m[event] = cl
}
func (h *hashIndex[K, T]) forEach(visit func(K, *CallbackList[T]) bool) {
	for k, cl := range h.m {
		if !visit(k, cl) {
			return
		}
	}
}

// indexItem 有序索引的键值对
type indexItem[K comparable, T any] struct {
	key  K
	list *CallbackList[T]
}

// sortedIndex 有序索引 键按less排序 二分查找
type sortedIndex[K comparable, T any] struct {
	items []indexItem[K, T]
	less  func(a, b K) bool
}

func (s *sortedIndex[K, T]) search(event K) int {
	return sort.Search(len(s.items), func(i int) bool {
		return !s.less(s.items[i].key, event)
	})
}

func (s *sortedIndex[K, T]) get(event K) *CallbackList[T] {
	i := s.search(event)
	if i < len(s.items) && s.items[i].key == event {
		return s.items[i].list
	}
	return nil
}

func (s *sortedIndex[K, T]) set(event K, cl *CallbackList[T]) {
	i := s.search(event)
	if i < len(s.items) && s.items[i].key == event {
		s.items[i].list = cl
		return
	}
	s.items = append(s.items, indexItem[K, T]{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = indexItem[K, T]{key: event, list: cl}
}

func (s *sortedIndex[K, T]) forEach(visit func(K, *CallbackList[T]) bool) {
	for _, it := range s.items {
		if !visit(it.key, it.list) {
			return
		}
	}
}

// Dispatcher 同步事件分发器
// 索引读多写少: 分发走读锁取链表指针，放锁后再调用(链表为共享所有权，
// 放锁后依然存活)；首次注册某事件键时走写锁补建链表
type Dispatcher[K comparable, T any] struct {
	policy *Policy
	mu     xsync.RWLocker
	index  eventIndex[K, T]
	mixins []Mixin[K, T]
}

// NewDispatcher 新建分发器 policy为nil时采用多线程预设
// mixins按序构成分发拦截链
func NewDispatcher[K comparable, T any](policy *Policy, mixins ...Mixin[K, T]) *Dispatcher[K, T] {
	p := policy.normalize()
	d := &Dispatcher[K, T]{
		policy: p,
		mu:     p.NewSharedMutex(),
		mixins: mixins,
	}
	if p.OrderedIndex {
		less, ok := p.KeyLess.(func(a, b K) bool)
		if !ok {
			panic(ErrKeyLessRequired)
		}
		d.index = &sortedIndex[K, T]{less: less}
	} else {
		d.index = &hashIndex[K, T]{m: make(map[K]*CallbackList[T])}
	}
	return d
}

// listOf 解析事件键到链表
// 读锁查找; 缺失且create时升级为写锁复查补建
func (d *Dispatcher[K, T]) listOf(event K, create bool) *CallbackList[T] {
	d.mu.RLock()
	cl := d.index.get(event)
	d.mu.RUnlock()
	if cl != nil || !create {
		return cl
	}
	d.mu.Lock()
	cl = d.index.get(event)
	if cl == nil {
		cl = NewCallbackList[T](d.policy)
		d.index.set(event, cl)
	}
	d.mu.Unlock()
	return cl
}

// AppendListener 注册监听器到事件尾部
func (d *Dispatcher[K, T]) AppendListener(event K, cb EventCallback[K, T]) Handle[T] {
	return d.listOf(event, true).Append(bindEvent(event, cb))
}

// PrependListener 注册监听器到事件头部
func (d *Dispatcher[K, T]) PrependListener(event K, cb EventCallback[K, T]) Handle[T] {
	return d.listOf(event, true).Prepend(bindEvent(event, cb))
}

// InsertListener 在锚点句柄之前注册监听器
func (d *Dispatcher[K, T]) InsertListener(event K, cb EventCallback[K, T], before Handle[T]) (Handle[T], error) {
	return d.listOf(event, true).InsertBefore(bindEvent(event, cb), before)
}

// RemoveListener 移除监听器 幂等
func (d *Dispatcher[K, T]) RemoveListener(event K, h Handle[T]) bool {
	cl := d.listOf(event, false)
	if cl == nil {
		return false
	}
	return cl.Remove(h)
}

// HasAnyListener 事件是否有存活监听器
func (d *Dispatcher[K, T]) HasAnyListener(event K) bool {
	cl := d.listOf(event, false)
	return cl != nil && !cl.Empty()
}

// Dispatch 同步分发 监听器按插入顺序执行
// 任一mixin否决则丢弃; 监听器panic向调用方传播
func (d *Dispatcher[K, T]) Dispatch(event K, arg T) {
	for _, m := range d.mixins {
		if !m.BeforeDispatch(event, &arg) {
			return
		}
	}
	if cl := d.listOf(event, false); cl != nil {
		cl.Dispatch(arg)
	}
	for i := len(d.mixins) - 1; i >= 0; i-- {
		d.mixins[i].AfterDispatch(event, &arg)
	}
}

// ForEachEvent 访问已有链表的全部事件键
func (d *Dispatcher[K, T]) ForEachEvent(visit func(event K) bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.index.forEach(func(event K, _ *CallbackList[T]) bool {
		return visit(event)
	})
}

// bindEvent 把事件键绑定进回调 注册时事件键已知
func bindEvent[K comparable, T any](event K, cb EventCallback[K, T]) Callback[T] {
	return func(arg T) {
		cb(event, arg)
	}
}
