package engine

import (
	"testing"
	"time"
)

func TestFPSLimiterUncapped(t *testing.T) {
	f := NewFPSLimiter(func() int { return 0 })
	start := time.Now()
	for i := 0; i < 100; i++ {
		f.Wait()
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("uncapped limiter waited %v", time.Since(start))
	}
	if f.FrameBudget() != 0 {
		t.Errorf("budget = %v", f.FrameBudget())
	}
}

func TestFPSLimiterPaces(t *testing.T) {
	limit := 100
	f := NewFPSLimiter(func() int { return limit })
	if f.FrameBudget() != 10*time.Millisecond {
		t.Fatalf("budget = %v", f.FrameBudget())
	}
	start := time.Now()
	for i := 0; i < 5; i++ {
		f.Wait()
	}
	if got := time.Since(start); got < 45*time.Millisecond {
		t.Errorf("5 frames at 100fps took %v", got)
	}

	limit = 50
	if f.FrameBudget() != 20*time.Millisecond {
		t.Errorf("budget did not follow limit: %v", f.FrameBudget())
	}
}
