package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryAllowsUpToLimit(t *testing.T) {
	m := NewMemory(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "1.2.3.4:search")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, _ := m.Allow(ctx, "1.2.3.4:search")
	if ok {
		t.Fatal("request over the limit should be rejected")
	}
}

func TestMemoryBucketsAreIndependent(t *testing.T) {
	m := NewMemory(1, time.Minute)
	ctx := context.Background()

	if ok, _ := m.Allow(ctx, "1.2.3.4:search"); !ok {
		t.Fatal("first key should be allowed")
	}
	if ok, _ := m.Allow(ctx, "1.2.3.4:detail"); !ok {
		t.Fatal("different bucket for the same IP should be allowed")
	}
	if ok, _ := m.Allow(ctx, "5.6.7.8:search"); !ok {
		t.Fatal("different IP in the same bucket should be allowed")
	}
}

func TestMemoryWindowResets(t *testing.T) {
	m := NewMemory(1, time.Minute)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	m.now = func() time.Time { return current }
	ctx := context.Background()

	if ok, _ := m.Allow(ctx, "k"); !ok {
		t.Fatal("first request should be allowed")
	}
	if ok, _ := m.Allow(ctx, "k"); ok {
		t.Fatal("second request within the window should be rejected")
	}

	current = base.Add(61 * time.Second)
	if ok, _ := m.Allow(ctx, "k"); !ok {
		t.Fatal("request after the window elapsed should be allowed")
	}
}

func TestMemoryBoundaryIsAtomic(t *testing.T) {
	// With capacity for exactly one more request, two concurrent callers
	// must never both be admitted.
	for round := 0; round < 100; round++ {
		m := NewMemory(1, time.Minute)
		ctx := context.Background()

		var wg sync.WaitGroup
		results := make([]bool, 2)
		start := make(chan struct{})

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				ok, _ := m.Allow(ctx, "boundary")
				results[i] = ok
			}(i)
		}

		close(start)
		wg.Wait()

		admitted := 0
		for _, ok := range results {
			if ok {
				admitted++
			}
		}
		if admitted != 1 {
			t.Fatalf("round %d: expected exactly one admission, got %d", round, admitted)
		}
	}
}

func TestMemoryZeroCapacityAdmitsNothing(t *testing.T) {
	m := NewMemory(0, time.Minute)
	if ok, _ := m.Allow(context.Background(), "k"); ok {
		t.Fatal("limiter with zero capacity should reject every request")
	}
}
