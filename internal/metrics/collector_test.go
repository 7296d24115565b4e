package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCounterKey(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		want   string
	}{
		{"messages_routed", nil, "messages_routed"},
		{"messages_routed", map[string]string{}, "messages_routed"},
		{"messages_routed", map[string]string{"handler": "inventory"}, "messages_routed{handler=inventory}"},
		{"fallback_used", map[string]string{"b": "2", "a": "1"}, "fallback_used{a=1,b=2}"},
	}
	for _, tt := range tests {
		if got := counterKey(tt.name, tt.labels); got != tt.want {
			t.Errorf("counterKey(%q, %v) = %q, want %q", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestIncrementAndCount(t *testing.T) {
	c := NewCollector()

	c.Increment(CounterRouted, map[string]string{"handler": "inventory"})
	c.Increment(CounterRouted, map[string]string{"handler": "inventory"})
	c.Increment(CounterRouted, map[string]string{"handler": "service"})

	if got := c.Count(CounterRouted, map[string]string{"handler": "inventory"}); got != 2 {
		t.Errorf("Count(inventory) = %d, want 2", got)
	}
	if got := c.Count(CounterRouted, map[string]string{"handler": "service"}); got != 1 {
		t.Errorf("Count(service) = %d, want 1", got)
	}
	if got := c.Count(CounterRouted, nil); got != 0 {
		t.Errorf("Count(unlabeled) = %d, want 0", got)
	}
}

func TestRecordTimingSnapshot(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpRetrieve, 10*time.Millisecond)
	c.RecordTiming(OpRetrieve, 30*time.Millisecond)

	snap := c.Snapshot()
	op, ok := snap.Operations[OpRetrieve]
	if !ok {
		t.Fatal("Snapshot missing retrieve operation")
	}
	if op.Count != 2 {
		t.Errorf("Count = %d, want 2", op.Count)
	}
	if op.MinTimeMs != 10 || op.MaxTimeMs != 30 {
		t.Errorf("Min/Max = %d/%d, want 10/30", op.MinTimeMs, op.MaxTimeMs)
	}
	if op.AvgTimeMs != 20 {
		t.Errorf("Avg = %v, want 20", op.AvgTimeMs)
	}
}

func TestCollectorConcurrentAccess(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Increment(CounterFallbackUsed, nil)
				c.RecordTiming(OpGenerate, time.Millisecond)
				c.Snapshot()
			}
		}()
	}
	wg.Wait()

	if got := c.Count(CounterFallbackUsed, nil); got != 1000 {
		t.Errorf("Count = %d, want 1000", got)
	}
}
