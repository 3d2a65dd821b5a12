package xsync

import (
	"runtime"

	"go.uber.org/atomic"
)

// maxBackoff 指数退避上限
const maxBackoff = 64

// SpinLock 带指数退避的自旋锁
// 快路径: 单次CAS获取，无竞争时零开销
// 慢路径: 退避窗口从1翻倍到64，期间让出调度器，减少缓存行抖动
// 适合保护极短的临界区(入队/出队/链表修改)
type SpinLock struct {
	locked atomic.Bool
}

// Lock 获取锁
func (l *SpinLock) Lock() {
	// 快路径: 无竞争
	if l.locked.CompareAndSwap(false, true) {
		return
	}
	// 慢路径: 指数退避
	backoff := 1
	for {
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if l.locked.CompareAndSwap(false, true) {
			return
		}
		if backoff < maxBackoff {
			backoff <<= 1
		}
	}
}

// TryLock 尝试获取锁 不阻塞
func (l *SpinLock) TryLock() bool {
	return l.locked.CompareAndSwap(false, true)
}

// Unlock 释放锁
func (l *SpinLock) Unlock() {
	l.locked.Store(false)
}
