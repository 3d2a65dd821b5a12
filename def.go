// Package eventpp 进程内通用事件分发框架
//
// 两个紧密相关的原语:
//   - Dispatcher: 同步分发，发布事件时直接调用已注册的监听器
//   - EventQueue: 异步队列，生产者缓冲事件，消费者批量排空分发
//
// 两者都由事件键类型K、监听器负载类型T与运行期策略束Policy参数化。
// 策略束选择线程原语(互斥锁/读写锁/条件变量)、节点分配方式(堆或slab池)
// 与事件索引容器(哈希或有序)。
package eventpp

import "errors"

var (
	ErrInvalidAnchor     = errors.New("eventpp: insert anchor does not belong to this list or was removed")
	ErrListenerNil       = errors.New("eventpp: listener cannot be nil")
	ErrListenerNotFunc   = errors.New("eventpp: listener must be a func")
	ErrSignatureMismatch = errors.New("eventpp: listener signature mismatch")
	ErrAllocationFailure = errors.New("eventpp: event node allocation failed")
	ErrKeyLessRequired   = errors.New("eventpp: ordered index requires Policy.KeyLess of type func(a, b K) bool")
)

const (
	// DefaultSlabCapacity 默认slab槽位数
	DefaultSlabCapacity = 4096

	// HighPerfSlabCapacity 高性能预设的slab槽位数
	HighPerfSlabCapacity = 8192
)
