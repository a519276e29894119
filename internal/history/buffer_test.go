package history

import (
	"sync"
	"testing"
	"time"
)

func TestGrowableBuffer_SendReceive(t *testing.T) {
	buf := NewGrowableBuffer[int](10)

	for i := 0; i < 5; i++ {
		if !buf.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}

	if buf.Len() != 5 {
		t.Errorf("Len() = %d, want 5", buf.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := buf.TryReceive()
		if !ok {
			t.Fatalf("TryReceive() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("received %d, want %d", val, i)
		}
	}

	if _, ok := buf.TryReceive(); ok {
		t.Error("TryReceive() on empty buffer returned true")
	}
}

func TestGrowableBuffer_GrowsAt70Percent(t *testing.T) {
	buf := NewGrowableBuffer[int](10)

	// 7 items is 70% of 10, which must trigger a resize.
	for i := 0; i < 7; i++ {
		buf.Send(i)
	}

	stats := buf.Stats()
	if stats.Capacity <= 10 {
		t.Errorf("Capacity = %d, expected growth after 70%% fill", stats.Capacity)
	}
	if stats.ResizeCount != 1 {
		t.Errorf("ResizeCount = %d, want 1", stats.ResizeCount)
	}

	// Order survives the resize.
	for i := 0; i < 7; i++ {
		val, ok := buf.TryReceive()
		if !ok || val != i {
			t.Fatalf("TryReceive() = %d, %v; want %d, true", val, ok, i)
		}
	}
}

func TestGrowableBuffer_GrowWithWrapAround(t *testing.T) {
	buf := NewGrowableBuffer[int](10)

	// Advance head so the ring wraps before the next resize.
	for i := 1; i <= 5; i++ {
		buf.Send(i)
	}
	for i := 0; i < 4; i++ {
		buf.TryReceive()
	}
	for i := 6; i <= 10; i++ {
		buf.Send(i) // tail wraps past the end here
	}

	// This send hits the 70% threshold while the ring is wrapped.
	buf.Send(11)

	for want := 5; want <= 11; want++ {
		got, ok := buf.TryReceive()
		if !ok {
			t.Fatalf("TryReceive failed, expected %d", want)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestGrowableBuffer_BlockingReceive(t *testing.T) {
	buf := NewGrowableBuffer[int](10)

	received := make(chan int, 1)
	go func() {
		val, ok := buf.Receive()
		if ok {
			received <- val
		}
	}()

	// Give the receiver time to start waiting.
	time.Sleep(10 * time.Millisecond)

	buf.Send(42)

	select {
	case val := <-received:
		if val != 42 {
			t.Errorf("received %d, want 42", val)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for blocked receive")
	}
}

func TestGrowableBuffer_Close(t *testing.T) {
	buf := NewGrowableBuffer[int](10)

	buf.Send(1)
	buf.Send(2)
	buf.Close()

	if buf.Send(3) {
		t.Error("Send should return false after Close")
	}

	// Remaining items stay receivable after close.
	val, ok := buf.Receive()
	if !ok || val != 1 {
		t.Errorf("Receive() = %d, %v; want 1, true", val, ok)
	}
	val, ok = buf.Receive()
	if !ok || val != 2 {
		t.Errorf("Receive() = %d, %v; want 2, true", val, ok)
	}

	// Drained and closed.
	if _, ok := buf.Receive(); ok {
		t.Error("Receive should return false when closed and empty")
	}
}

func TestGrowableBuffer_CloseUnblocksReceive(t *testing.T) {
	buf := NewGrowableBuffer[int](10)

	done := make(chan bool, 1)
	go func() {
		_, ok := buf.Receive()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	buf.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Receive should return false when closed and empty")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Receive")
	}
}

func TestGrowableBuffer_ConcurrentSendReceive(t *testing.T) {
	buf := NewGrowableBuffer[int](4)
	const numItems = 1000

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < numItems; i++ {
			buf.Send(i)
		}
	}()

	received := make([]int, 0, numItems)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < numItems; i++ {
			val, ok := buf.Receive()
			if ok {
				received = append(received, val)
			}
		}
	}()

	wg.Wait()

	if len(received) != numItems {
		t.Fatalf("received %d items, want %d", len(received), numItems)
	}
	// Single producer, single consumer: order is preserved.
	for i, val := range received {
		if val != i {
			t.Fatalf("received[%d] = %d, want %d", i, val, i)
		}
	}
}

func TestNewGrowableBuffer_MinCapacity(t *testing.T) {
	if got := NewGrowableBuffer[int](0).Cap(); got != 1 {
		t.Errorf("Cap() = %d, want 1 for initial capacity 0", got)
	}
	if got := NewGrowableBuffer[int](-5).Cap(); got != 1 {
		t.Errorf("Cap() = %d, want 1 for negative initial capacity", got)
	}
}
