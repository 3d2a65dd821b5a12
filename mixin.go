package eventpp

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/DeguiLiu/eventpp/xlog"
	"github.com/DeguiLiu/eventpp/xtime"
)

// MixinFilter 过滤层 任一过滤器返回false则丢弃本次分发
type MixinFilter[K comparable, T any] struct {
	mu      sync.RWMutex
	filters []func(event K, arg *T) bool
}

// NewMixinFilter 新建过滤层
func NewMixinFilter[K comparable, T any](filters ...func(event K, arg *T) bool) *MixinFilter[K, T] {
	return &MixinFilter[K, T]{filters: filters}
}

// AppendFilter 追加过滤器 过滤器可修改*arg
func (m *MixinFilter[K, T]) AppendFilter(f func(event K, arg *T) bool) {
	if f == nil {
		return
	}
	m.mu.Lock()
	m.filters = append(m.filters, f)
	m.mu.Unlock()
}

func (m *MixinFilter[K, T]) BeforeDispatch(event K, arg *T) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.filters {
		if !f(event, arg) {
			return false
		}
	}
	return true
}

func (m *MixinFilter[K, T]) AfterDispatch(K, *T) {}

// MixinLogger 观测层 以Debug级别记录每次分发 核心本身不打日志
type MixinLogger[K comparable, T any] struct {
	name       string
	dispatched atomic.Int64
}

// NewMixinLogger name标识所属分发器 进入日志字段
func NewMixinLogger[K comparable, T any](name string) *MixinLogger[K, T] {
	return &MixinLogger[K, T]{name: name}
}

func (m *MixinLogger[K, T]) BeforeDispatch(event K, _ *T) bool {
	xlog.Debugx("event dispatch",
		zap.String("dispatcher", m.name),
		zap.Any("event", event),
		zap.Int64("seq", m.dispatched.Inc()),
		zap.Int64("ts_ms", xtime.NowTs()),
	)
	return true
}

func (m *MixinLogger[K, T]) AfterDispatch(K, *T) {}

// Dispatched 已放行的分发次数
func (m *MixinLogger[K, T]) Dispatched() int64 {
	return m.dispatched.Load()
}
