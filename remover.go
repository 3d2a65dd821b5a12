package eventpp

import (
	"sync"

	"go.uber.org/atomic"
)

// autoRemover 包装回调 触发条件满足后移除自身
// 句柄在Append返回后才可知，监听器可能在拿到句柄前就被并发分发触发，
// 因此条件命中与句柄就绪之间用锁汇合
type autoRemover[T any] struct {
	mu      sync.Mutex
	handle  Handle[T]
	ready   bool
	pending bool
	remove  func(Handle[T]) bool
}

// fire 条件命中 句柄就绪则立即移除 否则挂起等bind补刀
func (r *autoRemover[T]) fire() {
	r.mu.Lock()
	if r.ready {
		h := r.handle
		r.mu.Unlock()
		r.remove(h)
		return
	}
	r.pending = true
	r.mu.Unlock()
}

// bind 记录句柄 若触发先于绑定则此刻完成移除
func (r *autoRemover[T]) bind(h Handle[T]) {
	r.mu.Lock()
	r.handle = h
	r.ready = true
	fireNow := r.pending
	r.mu.Unlock()
	if fireNow {
		r.remove(h)
	}
}

// AppendWithCounter 注册至多触发count次的监听器 次数耗尽自动移除
func AppendWithCounter[T any](l *CallbackList[T], count int64, cb Callback[T]) Handle[T] {
	r := &autoRemover[T]{remove: l.Remove}
	remaining := atomic.NewInt64(count)
	h := l.Append(func(arg T) {
		left := remaining.Dec()
		if left < 0 {
			return
		}
		if left == 0 {
			defer r.fire()
		}
		cb(arg)
	})
	r.bind(h)
	return h
}

// AppendWithCondition 注册条件监听器 回调执行后谓词返回true则自动移除
func AppendWithCondition[T any](l *CallbackList[T], cond func(arg T) bool, cb Callback[T]) Handle[T] {
	r := &autoRemover[T]{remove: l.Remove}
	h := l.Append(func(arg T) {
		cb(arg)
		if cond(arg) {
			r.fire()
		}
	})
	r.bind(h)
	return h
}

// AppendListenerWithCounter 分发器版本的计数自动移除
func AppendListenerWithCounter[K comparable, T any](d *Dispatcher[K, T], event K, count int64, cb EventCallback[K, T]) Handle[T] {
	r := &autoRemover[T]{remove: func(h Handle[T]) bool { return d.RemoveListener(event, h) }}
	remaining := atomic.NewInt64(count)
	h := d.AppendListener(event, func(ev K, arg T) {
		left := remaining.Dec()
		if left < 0 {
			return
		}
		if left == 0 {
			defer r.fire()
		}
		cb(ev, arg)
	})
	r.bind(h)
	return h
}

// AppendListenerWithCondition 分发器版本的条件自动移除
func AppendListenerWithCondition[K comparable, T any](d *Dispatcher[K, T], event K, cond func(event K, arg T) bool, cb EventCallback[K, T]) Handle[T] {
	r := &autoRemover[T]{remove: func(h Handle[T]) bool { return d.RemoveListener(event, h) }}
	h := d.AppendListener(event, func(ev K, arg T) {
		cb(ev, arg)
		if cond(ev, arg) {
			r.fire()
		}
	})
	r.bind(h)
	return h
}
