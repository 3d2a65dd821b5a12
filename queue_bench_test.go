package eventpp

import (
	"testing"
)

type benchMsg struct {
	seq     uint32
	payload uint64
}

func benchQueue(policy *Policy) *EventQueue[int, benchMsg] {
	q := NewEventQueue[int, benchMsg](policy)
	q.AppendListener(1, func(_ int, m benchMsg) {
		_ = m.payload
	})
	return q
}

// 单线程 入队+批量排空 的基准 对比默认策略与高性能预设
func benchmarkEnqueueProcess(b *testing.B, policy *Policy) {
	q := benchQueue(policy)
	const batch = 256
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < batch; j++ {
			q.Enqueue(1, benchMsg{seq: uint32(j)})
		}
		q.Process()
	}
}

func BenchmarkEnqueueProcessDefault(b *testing.B) {
	benchmarkEnqueueProcess(b, MultipleThreading())
}

func BenchmarkEnqueueProcessHighPerf(b *testing.B) {
	benchmarkEnqueueProcess(b, HighPerf())
}

func BenchmarkEnqueueProcessSingleThreading(b *testing.B) {
	benchmarkEnqueueProcess(b, SingleThreading())
}

// 访问者直消绕过分发器索引
func BenchmarkProcessQueueWith(b *testing.B) {
	q := NewEventQueue[int, benchMsg](HighPerf())
	const batch = 256
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < batch; j++ {
			q.Enqueue(1, benchMsg{seq: uint32(j)})
		}
		q.ProcessQueueWith(func(_ int, m benchMsg) {
			_ = m.payload
		})
	}
}

func BenchmarkDispatchDirect(b *testing.B) {
	q := benchQueue(MultipleThreading())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Dispatch(1, benchMsg{})
	}
}

// 多生产者单消费者吞吐
func BenchmarkMPSCEnqueue(b *testing.B) {
	q := benchQueue(HighPerf())
	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if !q.Process() {
				select {
				case <-stop:
					return
				default:
				}
			}
		}
	}()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Enqueue(1, benchMsg{})
		}
	})
	close(stop)
	<-done
}
