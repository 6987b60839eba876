package mmapfile

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesWithGrowthStepSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	f, created, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Release()
	if !created {
		t.Fatalf("created = false, want true")
	}
	if len(f.Bytes()) != GrowthStep {
		t.Fatalf("len(Bytes()) = %d, want %d", len(f.Bytes()), GrowthStep)
	}
}

func TestOpenReopenExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	f1, created, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !created {
		t.Fatalf("first Open created = false, want true")
	}
	f1.Bytes()[0] = 'A'
	if err := f1.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := f1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	f2, created, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f2.Release()
	if created {
		t.Fatalf("second Open created = true, want false")
	}
	if f2.Bytes()[0] != 'A' {
		t.Fatalf("reopened byte = %q, want A", f2.Bytes()[0])
	}
}

func TestEnsureMappedGrowsOnExtend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	f, _, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Release()

	target := GrowthStep + 1
	if err := f.LockExcl(); err != nil {
		t.Fatalf("LockExcl: %v", err)
	}
	defer f.Unlock()
	if err := f.EnsureMapped(target, true); err != nil {
		t.Fatalf("EnsureMapped: %v", err)
	}
	if len(f.Bytes()) < target {
		t.Fatalf("len(Bytes()) = %d, want >= %d", len(f.Bytes()), target)
	}
}

func TestEnsureMappedNoExtendWithoutMayExtendStaysWithinFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	f, _, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Release()

	if err := f.EnsureMapped(GrowthStep, false); err != nil {
		t.Fatalf("EnsureMapped within current size: %v", err)
	}
}

func TestLockExclSharedUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	f, _, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Release()

	if err := f.LockExcl(); err != nil {
		t.Fatalf("LockExcl: %v", err)
	}
	if err := f.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := f.LockShared(); err != nil {
		t.Fatalf("LockShared: %v", err)
	}
	if err := f.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestLoadStoreLen32RoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	if err := StoreLen32(buf, 4, 0xdeadbeef); err != nil {
		t.Fatalf("StoreLen32: %v", err)
	}
	v, err := LoadLen32(buf, 4)
	if err != nil || v != 0xdeadbeef {
		t.Fatalf("LoadLen32 = %x, %v, want deadbeef", v, err)
	}
	if _, err := LoadLen32(buf, 13); err == nil {
		t.Fatalf("LoadLen32 out of range = nil error, want error")
	}
}

func TestStoreLen32IsBigEndianOnDisk(t *testing.T) {
	buf := make([]byte, 4)
	if err := StoreLen32(buf, 0, 0xdeadbeef); err != nil {
		t.Fatalf("StoreLen32: %v", err)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("buf = % x, want big-endian % x", buf, want)
		}
	}
}

func TestStoreLen64IsBigEndianOnDisk(t *testing.T) {
	buf := make([]byte, 8)
	if err := StoreLen64(buf, 0, 0x0102030405060708); err != nil {
		t.Fatalf("StoreLen64: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("buf = % x, want big-endian % x", buf, want)
		}
	}
}

func TestLoadStoreLen64RoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	if err := StoreLen64(buf, 0, 0x0102030405060708); err != nil {
		t.Fatalf("StoreLen64: %v", err)
	}
	v, err := LoadLen64(buf, 0)
	if err != nil || v != 0x0102030405060708 {
		t.Fatalf("LoadLen64 = %x, %v, want 0102030405060708", v, err)
	}
	if err := StoreLen64(buf, 9, 1); err == nil {
		t.Fatalf("StoreLen64 out of range = nil error, want error")
	}
}
