package assets

import "fmt"

// Arena is a bump allocator over one fixed block. Allocations live until
// Reset; there is no per-allocation free.
type Arena struct {
	buf  []byte
	used int
}

// Span addresses bytes inside an Arena. It is only meaningful for the
// arena that produced it and only until that arena is Reset.
type Span struct {
	Offset int
	Len    int
}

func NewArena(size int) *Arena {
	return &Arena{buf: make([]byte, size)}
}

// Push reserves n zeroed bytes.
func (a *Arena) Push(n int) (Span, error) {
	if n < 0 || a.used+n > len(a.buf) {
		return Span{}, fmt.Errorf("%w: need %d bytes, %d of %d used", ErrArenaFull, n, a.used, len(a.buf))
	}
	s := Span{Offset: a.used, Len: n}
	a.used += n
	return s, nil
}

// Bytes resolves a span. The returned slice has its capacity clipped so
// appends cannot spill into the next allocation.
func (a *Arena) Bytes(s Span) ([]byte, error) {
	end := s.Offset + s.Len
	if s.Offset < 0 || s.Len < 0 || end > a.used {
		return nil, fmt.Errorf("%w: [%d,%d) with %d used", ErrInvalidSpan, s.Offset, end, a.used)
	}
	return a.buf[s.Offset:end:end], nil
}

// Alloc is Push followed by Bytes.
func (a *Arena) Alloc(n int) ([]byte, Span, error) {
	s, err := a.Push(n)
	if err != nil {
		return nil, Span{}, err
	}
	b, err := a.Bytes(s)
	return b, s, err
}

func (a *Arena) Used() int { return a.used }
func (a *Arena) Cap() int  { return len(a.buf) }

// Reset releases every allocation at once and zeroes the memory.
func (a *Arena) Reset() {
	clear(a.buf[:a.used])
	a.used = 0
}
