package profiling

import (
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	p := New()
	for i := 0; i < 3; i++ {
		stop := p.Track("work")
		time.Sleep(time.Millisecond)
		stop()
	}
	if got := p.Get("work"); got < 3*time.Millisecond {
		t.Errorf("work = %v, want at least 3ms", got)
	}
	p.ResetFrame()
	if got := p.Get("work"); got != 0 {
		t.Errorf("after reset = %v", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	p := New()
	p.frameTotals["a"] = time.Second
	s := p.Snapshot()
	s["a"] = 0
	if p.Get("a") != time.Second {
		t.Error("snapshot aliases profiler state")
	}
}

func TestTopN(t *testing.T) {
	p := New()
	p.frameTotals["engine.Render"] = 4200 * time.Microsecond
	p.frameTotals["engine.Input"] = 100 * time.Microsecond
	p.frameTotals["b"] = 2 * time.Millisecond
	p.frameTotals["a"] = 2 * time.Millisecond

	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{-1, ""},
		{1, "engine.Render:4.2ms"},
		{3, "engine.Render:4.2ms, a:2ms, b:2ms"},
		{10, "engine.Render:4.2ms, a:2ms, b:2ms, engine.Input:0.1ms"},
	}
	for _, tt := range tests {
		if got := p.TopN(tt.n); got != tt.want {
			t.Errorf("TopN(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatMs(t *testing.T) {
	tests := map[time.Duration]string{
		0:                       "0ms",
		1500 * time.Microsecond: "1.5ms",
		16 * time.Millisecond:   "16ms",
		50 * time.Microsecond:   "0.1ms",
	}
	for d, want := range tests {
		if got := FormatMs(d); got != want {
			t.Errorf("FormatMs(%v) = %q, want %q", d, got, want)
		}
	}
}

func BenchmarkTrack(b *testing.B) {
	p := New()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Track("bench")()
	}
}
