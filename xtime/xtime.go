// Package xtime 带逻辑偏移的时钟
// 测试与回放场景可整体拨动时间而不触碰系统时钟
package xtime

import (
	"time"

	"go.uber.org/atomic"
)

const (
	SecMs  = 1000       // 1秒 = 1000毫秒
	MinMs  = 60 * SecMs // 1分钟 = 60秒
	HourMs = 60 * MinMs // 1小时 = 60分钟
)

var (
	// useOffset 是否启用时间偏移
	useOffset atomic.Bool

	// offset 逻辑时间偏移量
	offset atomic.Duration
)

// SetUseOffset 设置是否启用时间偏移
func SetUseOffset(use bool) {
	useOffset.Store(use)
}

// SetOffset 设置时间偏移量
func SetOffset(dur time.Duration) {
	offset.Store(dur)
}

// AddOffset 增加时间偏移量
func AddOffset(dur time.Duration) {
	offset.Add(dur)
}

// ClearOffset 清除时间偏移
func ClearOffset() {
	offset.Store(0)
}

// GetOffset 获取当前时间偏移量
func GetOffset() time.Duration {
	return offset.Load()
}

// Now 获取当前UTC时间 SetUseOffset(true)时计入逻辑偏移
func Now() time.Time {
	now := time.Now().UTC()
	if useOffset.Load() {
		return now.Add(offset.Load())
	}
	return now
}

// NowSecTs 当前秒级时间戳
func NowSecTs() int64 {
	return Now().Unix()
}

// NowTs 当前毫秒级时间戳
func NowTs() int64 {
	return Now().UnixMilli()
}

// Since 自t起经过的时长
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}
