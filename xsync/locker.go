package xsync

import "sync"

// RWLocker 读写锁接口 sync.RWMutex与NopRWLocker均满足
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// TryLocker 支持非阻塞获取的锁 sync.Mutex/SpinLock/NopLocker均满足
type TryLocker interface {
	sync.Locker
	TryLock() bool
}

// NopLocker 空锁 单线程策略使用
type NopLocker struct{}

func (NopLocker) Lock()         {}
func (NopLocker) Unlock()       {}
func (NopLocker) TryLock() bool { return true }

// NopRWLocker 空读写锁 单线程策略使用
type NopRWLocker struct{}

func (NopRWLocker) Lock()    {}
func (NopRWLocker) Unlock()  {}
func (NopRWLocker) RLock()   {}
func (NopRWLocker) RUnlock() {}
