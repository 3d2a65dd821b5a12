package xsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondWaitForTimeout(t *testing.T) {
	mu := &sync.Mutex{}
	c := NewCond(mu)
	mu.Lock()
	start := time.Now()
	woken := c.WaitFor(50 * time.Millisecond)
	mu.Unlock()
	assert.False(t, woken)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCondBroadcastWakes(t *testing.T) {
	mu := &sync.Mutex{}
	c := NewCond(mu)
	ready := make(chan struct{})
	done := make(chan bool, 1)
	go func() {
		mu.Lock()
		close(ready)
		woken := c.WaitFor(5 * time.Second)
		mu.Unlock()
		done <- woken
	}()
	<-ready
	time.Sleep(10 * time.Millisecond) // 等待进入WaitFor
	c.Broadcast()
	select {
	case woken := <-done:
		assert.True(t, woken)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestCondWaitWithSpinLock(t *testing.T) {
	l := &SpinLock{}
	c := NewCond(l)
	var flag bool
	done := make(chan struct{})
	go func() {
		l.Lock()
		for !flag {
			c.Wait()
		}
		l.Unlock()
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	l.Lock()
	flag = true
	l.Unlock()
	c.Broadcast()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestNopCond(t *testing.T) {
	var c NopCond
	require.True(t, c.WaitFor(time.Hour)) // 立即返回
	c.Wait()
	c.Signal()
	c.Broadcast()
}
