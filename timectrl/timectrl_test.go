package timectrl

import (
	"testing"
	"time"
)

func TestTickDriver_AcceleratedDeliversFixedDelta(t *testing.T) {
	d := NewTickDriver(100*time.Millisecond, Accelerated)

	var deltas []float64
	d.AddListener(func(dt float64) { deltas = append(deltas, dt) })

	done := d.Start(1 * time.Second)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("accelerated run did not complete")
	}

	if len(deltas) != 10 {
		t.Fatalf("expected 10 synthetic ticks for 1s at 100ms, got %d", len(deltas))
	}
	for _, dt := range deltas {
		if dt != 0.1 {
			t.Fatalf("accelerated mode must report the configured interval, got %v", dt)
		}
	}
}

func TestTickDriver_ListenersRunInRegistrationOrder(t *testing.T) {
	d := NewTickDriver(10*time.Millisecond, Accelerated)

	var order []int
	d.AddListener(func(float64) { order = append(order, 1) })
	d.AddListener(func(float64) { order = append(order, 2) })

	<-d.Start(10 * time.Millisecond)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("listener order = %v, want [1 2]", order)
	}
}

func TestTickDriver_StopDeliversNoFurtherTicks(t *testing.T) {
	d := NewTickDriver(5*time.Millisecond, RealTime)

	ticks := make(chan struct{}, 1024)
	d.AddListener(func(float64) { ticks <- struct{}{} })

	done := d.Start(0)

	// Wait for at least one tick, then stop.
	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatalf("no tick delivered")
	}
	d.Stop()
	<-done

	// Drain anything delivered before the loop exited; nothing may follow.
	for len(ticks) > 0 {
		<-ticks
	}
	select {
	case <-ticks:
		t.Fatalf("tick delivered after the loop exited")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTickDriver_StopIsIdempotent(t *testing.T) {
	d := NewTickDriver(5*time.Millisecond, Accelerated)
	d.AddListener(func(float64) {})

	done := d.Start(0)
	d.Stop()
	d.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("driver did not stop")
	}
}

func TestTickDriver_WaitBlocksUntilExit(t *testing.T) {
	d := NewTickDriver(10*time.Millisecond, Accelerated)
	d.AddListener(func(float64) {})

	d.Start(50 * time.Millisecond)
	finished := make(chan struct{})
	go func() {
		d.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("Wait did not return after the run completed")
	}
}
