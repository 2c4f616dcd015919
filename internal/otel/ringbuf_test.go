package otel

import (
	"sync"
	"testing"
)

func TestRingPushAndSnapshot(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindSearchStart, Count: i})
	}

	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Count != i {
			t.Errorf("snap[%d].Count = %d, want %d", i, e.Count, i)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 10; i++ {
		r.Push(Event{Kind: KindSearchStart, Count: i})
	}

	snap := r.Snapshot()
	if len(snap) != 4 || r.Len() != 4 || r.Cap() != 4 {
		t.Fatalf("len=%d Len()=%d Cap()=%d, want 4", len(snap), r.Len(), r.Cap())
	}
	for i, e := range snap {
		if e.Count != i+6 {
			t.Errorf("snap[%d].Count = %d, want %d", i, e.Count, i+6)
		}
	}
}

func TestRingLast(t *testing.T) {
	r := NewRingBuffer(4)
	if r.Last(3) != nil {
		t.Error("Last on empty ring should be nil")
	}
	for i := 0; i < 6; i++ {
		r.Push(Event{Count: i})
	}

	last := r.Last(3)
	if len(last) != 3 {
		t.Fatalf("expected 3, got %d", len(last))
	}
	for i, e := range last {
		if e.Count != i+3 {
			t.Errorf("last[%d].Count = %d, want %d", i, e.Count, i+3)
		}
	}
	if got := r.Last(100); len(got) != 4 {
		t.Errorf("Last(100) = %d events, want 4", len(got))
	}
	if r.Last(0) != nil || r.Last(-1) != nil {
		t.Error("Last(n<=0) should be nil")
	}
}

func TestRingLastMatching(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindSearchStart, Count: 1})
	r.Push(Event{Kind: KindSuggestRequest, Count: 2})
	r.Push(Event{Kind: KindSearchComplete, Count: 3})
	r.Push(Event{Kind: KindSuggestStale, Count: 4})
	r.Push(Event{Kind: KindSearchStale, Count: 5})

	got := r.LastMatching("search.", 2)
	if len(got) != 2 || got[0].Count != 3 || got[1].Count != 5 {
		t.Errorf("LastMatching = %+v, want counts [3 5]", got)
	}
	if got := r.LastMatching("suggest", 10); len(got) != 2 || got[0].Count != 2 {
		t.Errorf("LastMatching(suggest) = %+v", got)
	}
}

func TestRingStats(t *testing.T) {
	r := NewRingBuffer(3)
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindSearchStale})
	r.Push(Event{Kind: KindSearchComplete}) // evicts first start

	stats := r.Stats()
	if stats[KindSearchStart] != 1 || stats[KindSearchStale] != 1 || stats[KindSearchComplete] != 1 {
		t.Errorf("Stats = %v", stats)
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"k": 1}
	r.Push(Event{Extra: extra})
	extra["k"] = 2

	if r.Last(1)[0].Extra["k"] != 1 {
		t.Error("ring should hold its own copy of Extra")
	}
}

func TestRingDefaultSize(t *testing.T) {
	if NewRingBuffer(0).Cap() != DefaultRingSize {
		t.Error("zero size should use DefaultRingSize")
	}
}

func TestRingConcurrent(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Kind: KindKeyPress})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Snapshot()
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len = %d, want 64", r.Len())
	}
}
