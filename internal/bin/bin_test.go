package bin

import "testing"

func TestCursorRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	c := New(buf)
	if err := c.PutU16(0xBEEF); err != nil {
		t.Fatalf("PutU16: %v", err)
	}
	if err := c.PutU32(0xCAFEBABE); err != nil {
		t.Fatalf("PutU32: %v", err)
	}
	if err := c.PutU64(0x0102030405060708); err != nil {
		t.Fatalf("PutU64: %v", err)
	}
	if err := c.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if v, err := c.FetchU16(); err != nil || v != 0xBEEF {
		t.Fatalf("FetchU16 = %x, %v", v, err)
	}
	if v, err := c.FetchU32(); err != nil || v != 0xCAFEBABE {
		t.Fatalf("FetchU32 = %x, %v", v, err)
	}
	if v, err := c.FetchU64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("FetchU64 = %x, %v", v, err)
	}
}

func TestCursorBoundsChecked(t *testing.T) {
	c := New(make([]byte, 4))
	if err := c.Advance(5); err != ErrShortRegion {
		t.Fatalf("Advance(5) = %v, want ErrShortRegion", err)
	}
	if _, err := c.FetchU64(); err != ErrShortRegion {
		t.Fatalf("FetchU64 on 4-byte region = %v, want ErrShortRegion", err)
	}
	if err := c.Seek(-1); err != ErrShortRegion {
		t.Fatalf("Seek(-1) = %v, want ErrShortRegion", err)
	}
	if err := c.Seek(100); err != ErrShortRegion {
		t.Fatalf("Seek(100) = %v, want ErrShortRegion", err)
	}
}

func TestStoreBytesAndZero(t *testing.T) {
	c := New(make([]byte, 8))
	if err := c.StoreBytes([]byte("abcd")); err != nil {
		t.Fatalf("StoreBytes: %v", err)
	}
	if err := c.Zero(4); err != nil {
		t.Fatalf("Zero: %v", err)
	}
	if err := c.Seek(0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got, err := c.FetchBytes(8)
	if err != nil {
		t.Fatalf("FetchBytes: %v", err)
	}
	want := []byte{'a', 'b', 'c', 'd', 0, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestAtU32AtU64(t *testing.T) {
	buf := make([]byte, 16)
	if err := PutAtU32(buf, 0, 42); err != nil {
		t.Fatalf("PutAtU32: %v", err)
	}
	if err := PutAtU64(buf, 8, 99); err != nil {
		t.Fatalf("PutAtU64: %v", err)
	}
	if v, err := AtU32(buf, 0); err != nil || v != 42 {
		t.Fatalf("AtU32 = %d, %v", v, err)
	}
	if v, err := AtU64(buf, 8); err != nil || v != 99 {
		t.Fatalf("AtU64 = %d, %v", v, err)
	}
	if _, err := AtU32(buf, 14); err != ErrShortRegion {
		t.Fatalf("AtU32 past end = %v, want ErrShortRegion", err)
	}
}

func TestAlign8(t *testing.T) {
	cases := map[int]int{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 15: 16, 16: 16}
	for in, want := range cases {
		if got := Align8(in); got != want {
			t.Errorf("Align8(%d) = %d, want %d", in, got, want)
		}
	}
}
