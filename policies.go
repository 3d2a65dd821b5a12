package eventpp

import (
	"sync"

	"github.com/DeguiLiu/eventpp/xsync"
)

// Policy 策略束 运行期选择线程原语、分配方式与索引容器
// 通过预设构造或在预设基础上改字段 未设置的锁/条件变量字段与非正的SlabCapacity
// 由构造函数按MultipleThreading预设补全
type Policy struct {
	// NewMutex 结构锁与队列锁的锁类型
	NewMutex func() sync.Locker

	// NewSharedMutex 分发器索引的读写锁类型
	NewSharedMutex func() xsync.RWLocker

	// NewCond 队列等待路径的条件变量类型 l为队列主锁
	NewCond func(l sync.Locker) xsync.Waiter

	// SlabCapacity 池化节点时每个slab的槽位数
	SlabCapacity int

	// PoolNodes 队列节点是否由slab池供给
	PoolNodes bool

	// OrderedIndex 事件索引使用有序容器而非哈希表
	// 开启时必须提供KeyLess
	OrderedIndex bool

	// KeyLess 有序索引的键比较函数 实际类型须为func(a, b K) bool
	KeyLess any
}

// MultipleThreading 多线程预设: 系统互斥锁 + 读写锁 + 条件变量
func MultipleThreading() *Policy {
	return &Policy{
		NewMutex:       func() sync.Locker { return &sync.Mutex{} },
		NewSharedMutex: func() xsync.RWLocker { return &sync.RWMutex{} },
		NewCond:        func(l sync.Locker) xsync.Waiter { return xsync.NewCond(l) },
		SlabCapacity:   DefaultSlabCapacity,
	}
}

// SingleThreading 单线程预设: 全部空锁 等待立即返回
func SingleThreading() *Policy {
	return &Policy{
		NewMutex:       func() sync.Locker { return xsync.NopLocker{} },
		NewSharedMutex: func() xsync.RWLocker { return xsync.NopRWLocker{} },
		NewCond:        func(sync.Locker) xsync.Waiter { return xsync.NopCond{} },
		SlabCapacity:   DefaultSlabCapacity,
	}
}

// HighPerf 一站式高性能预设
// 退避自旋锁 + slab池节点 + 读写锁分离 零配置组合
func HighPerf() *Policy {
	return &Policy{
		NewMutex:       func() sync.Locker { return &xsync.SpinLock{} },
		NewSharedMutex: func() xsync.RWLocker { return &sync.RWMutex{} },
		NewCond:        func(l sync.Locker) xsync.Waiter { return xsync.NewCond(l) },
		SlabCapacity:   HighPerfSlabCapacity,
		PoolNodes:      true,
	}
}

// normalize 补全缺省字段 nil策略等价于MultipleThreading
func (p *Policy) normalize() *Policy {
	if p == nil {
		return MultipleThreading()
	}
	out := *p
	def := MultipleThreading()
	if out.NewMutex == nil {
		out.NewMutex = def.NewMutex
	}
	if out.NewSharedMutex == nil {
		out.NewSharedMutex = def.NewSharedMutex
	}
	if out.NewCond == nil {
		out.NewCond = def.NewCond
	}
	if out.SlabCapacity <= 0 {
		out.SlabCapacity = DefaultSlabCapacity
	}
	return &out
}
