package deque

import "testing"

func TestPushPopFrontOrder(t *testing.T) {
	d := New[int](4)
	for i := 1; i <= 5; i++ {
		d.PushBack(i)
	}
	if d.Len() != 5 {
		t.Fatalf("Len = %d, want 5", d.Len())
	}
	for i := 1; i <= 5; i++ {
		v, ok := d.PopFront()
		if !ok || v != i {
			t.Fatalf("PopFront = %d, %v, want %d", v, ok, i)
		}
	}
	if _, ok := d.PopFront(); ok {
		t.Fatalf("PopFront on empty deque returned ok")
	}
}

func TestPopBack(t *testing.T) {
	d := New[string](4)
	d.PushBack("a")
	d.PushBack("b")
	d.PushBack("c")
	v, ok := d.PopBack()
	if !ok || v != "c" {
		t.Fatalf("PopBack = %q, %v, want c", v, ok)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
}

func TestGrowBeyondInitialCapacity(t *testing.T) {
	d := New[int](1)
	for i := 0; i < 200; i++ {
		d.PushBack(i)
	}
	if d.Len() != 200 {
		t.Fatalf("Len = %d, want 200", d.Len())
	}
	for i := 0; i < 200; i++ {
		v, ok := d.PopFront()
		if !ok || v != i {
			t.Fatalf("PopFront at %d = %d, %v", i, v, ok)
		}
	}
}
