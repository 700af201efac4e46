package deque

import (
	"testing"
)

func implementations() map[string]func(capacity int) Deque[int] {
	return map[string]func(capacity int) Deque[int]{
		"array": func(c int) Deque[int] { return NewArrDeque[int](c) },
		"list":  func(c int) Deque[int] { return NewListDeque[int](c) },
	}
}

func TestDequeOrder(t *testing.T) {
	for name, newDeque := range implementations() {
		d := newDeque(4)
		d.AddLast(2)
		d.AddLast(3)
		d.AddFirst(1)
		d.AddFirst(0)
		if !d.IsFull() || d.AddLast(9) || d.AddFirst(9) {
			t.Fatalf("%s: deque should be full at 4", name)
		}
		got := ToSlice(d)
		for i, v := range got {
			if v != i {
				t.Fatalf("%s: got %v", name, got)
			}
		}
		d.Set(2, 7)
		if d.Get(2) != 7 {
			t.Fatalf("%s: Set/Get mismatch", name)
		}
		if v, ok := d.RemoveFirst(); !ok || v != 0 {
			t.Fatalf("%s: RemoveFirst = %v %v", name, v, ok)
		}
		if v, ok := d.RemoveLast(); !ok || v != 3 {
			t.Fatalf("%s: RemoveLast = %v %v", name, v, ok)
		}
		d.RemoveLast()
		d.RemoveLast()
		if !d.IsEmpty() {
			t.Fatalf("%s: expected empty, size %d", name, d.Size())
		}
		if _, ok := d.RemoveFirst(); ok {
			t.Fatalf("%s: RemoveFirst on empty deque", name)
		}
	}
}

func TestPushBounded(t *testing.T) {
	for name, newDeque := range implementations() {
		d := newDeque(3)
		for i := 0; i < 10; i++ {
			PushBounded(d, i)
		}
		got := ToSlice(d)
		if len(got) != 3 || got[0] != 7 || got[2] != 9 {
			t.Fatalf("%s: got %v", name, got)
		}
	}
}

func TestListDequeUnbounded(t *testing.T) {
	d := NewListDeque[string](0)
	for i := 0; i < 100; i++ {
		d.AddLast("x")
	}
	if d.IsFull() || d.Size() != 100 {
		t.Fatalf("size %d", d.Size())
	}
}

func BenchmarkArrDeque_PushBounded(b *testing.B) {
	d := NewArrDeque[float64](64)
	for i := 0; i < b.N; i++ {
		PushBounded[float64](d, float64(i))
	}
}

func BenchmarkListDeque_PushBounded(b *testing.B) {
	d := NewListDeque[float64](64)
	for i := 0; i < b.N; i++ {
		PushBounded[float64](d, float64(i))
	}
}
