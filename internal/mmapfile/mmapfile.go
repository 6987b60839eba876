// Package mmapfile manages a single growable memory-mapped file shared
// by cooperating processes: open-or-create, grow-and-remap, and
// whole-file advisory locking. The terms and dtmap stores build their
// append protocols on top of this.
package mmapfile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

// GrowthStep is the unit a mapping/file is rounded up to on every
// extension, per §4.1.
const GrowthStep = 32 * 1024

const zeroLenRetries = 10
const zeroLenRetryDelay = 2 * time.Millisecond

// File is a growable mmap'd file with advisory locking. It is not safe
// for concurrent use by multiple goroutines; callers serialize access
// the same way the on-disk protocol serializes access across processes.
type File struct {
	f   *os.File
	m   mmap.MMap
	len int // current mapping length (rounded to GrowthStep)
}

// Open opens path, creating it with an initial length of GrowthStep if
// it does not exist. created reports whether this call created the
// file. When created is true, Open returns still holding the exclusive
// lock, with the file already mapped at GrowthStep; the caller writes
// the header and then releases the lock with Unlock.
//
// Concurrent openers of a file mid-creation (size observed as 0 after
// acquiring a shared lock) retry up to a bound before failing with a
// system error, per §4.1.
func Open(path string) (file *File, created bool, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}

	file = &File{f: f}
	if fi.Size() == 0 {
		if err = unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
			return nil, false, fmt.Errorf("lock_excl %s: %w", path, err)
		}
		fi, err = f.Stat()
		if err != nil {
			unix.Flock(int(f.Fd()), unix.LOCK_UN)
			return nil, false, fmt.Errorf("stat %s: %w", path, err)
		}
		if fi.Size() == 0 {
			if err = unix.Ftruncate(int(f.Fd()), GrowthStep); err != nil {
				unix.Flock(int(f.Fd()), unix.LOCK_UN)
				return nil, false, fmt.Errorf("truncate %s: %w", path, err)
			}
			created = true
			if err = file.remap(GrowthStep); err != nil {
				unix.Flock(int(f.Fd()), unix.LOCK_UN)
				return nil, false, err
			}
			return file, true, nil
		}
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}

	for attempt := 0; ; attempt++ {
		if err = unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
			return nil, false, fmt.Errorf("lock_shared %s: %w", path, err)
		}
		fi, err = f.Stat()
		if err != nil {
			unix.Flock(int(f.Fd()), unix.LOCK_UN)
			return nil, false, fmt.Errorf("stat %s: %w", path, err)
		}
		if fi.Size() > 0 {
			break
		}
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		if attempt >= zeroLenRetries {
			return nil, false, fmt.Errorf("open %s: %w", path, errors.New("i/o error: file stayed zero-length"))
		}
		time.Sleep(zeroLenRetryDelay)
	}
	unix.Flock(int(f.Fd()), unix.LOCK_UN)

	mapLen := roundUp(int(fi.Size()), GrowthStep)
	if err = file.remap(mapLen); err != nil {
		return nil, false, err
	}
	return file, false, nil
}

func roundUp(n, step int) int {
	if n <= 0 {
		return step
	}
	return (n + step - 1) / step * step
}

// Bytes returns the current mapping. The slice is invalidated by any
// subsequent call to EnsureMapped that remaps the file; callers must
// not retain it across such a call.
func (file *File) Bytes() []byte { return file.m }

// EnsureMapped makes sure the mapping covers at least targetLen bytes,
// rounded up to GrowthStep. If mayExtend is set and the backing file is
// shorter than that, it is extended first via ftruncate — the caller
// must already hold the exclusive lock in that case. The old mapping,
// if any, is only torn down after the new one is installed.
func (file *File) EnsureMapped(targetLen int, mayExtend bool) error {
	want := roundUp(targetLen, GrowthStep)
	if want <= file.len {
		return nil
	}
	if mayExtend {
		fi, err := file.f.Stat()
		if err != nil {
			return fmt.Errorf("stat: %w", err)
		}
		if int(fi.Size()) < want {
			if err := unix.Ftruncate(int(file.f.Fd()), int64(want)); err != nil {
				return fmt.Errorf("truncate: %w", err)
			}
		}
	}
	return file.remap(want)
}

func (file *File) remap(newLen int) error {
	old := file.m
	m, err := mmap.MapRegion(file.f, newLen, mmap.RDWR, 0, 0)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	if old != nil {
		old.Unmap()
	}
	file.m = m
	file.len = newLen
	return nil
}

// LockExcl acquires an exclusive whole-file advisory lock, blocking
// until it is available.
func (file *File) LockExcl() error {
	if err := unix.Flock(int(file.f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock_excl: %w", err)
	}
	return nil
}

// LockShared acquires a shared whole-file advisory lock, blocking until
// it is available.
func (file *File) LockShared() error {
	if err := unix.Flock(int(file.f.Fd()), unix.LOCK_SH); err != nil {
		return fmt.Errorf("lock_shared: %w", err)
	}
	return nil
}

// Unlock releases whichever lock this handle currently holds.
func (file *File) Unlock() error {
	if err := unix.Flock(int(file.f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	return nil
}

// Sync flushes the mapping to disk. Per §4.4 this is optional/async in
// the on-disk protocol; callers may ignore its error for best-effort
// durability.
func (file *File) Sync() error {
	if file.m == nil {
		return nil
	}
	if err := file.m.Flush(); err != nil {
		return fmt.Errorf("msync: %w", err)
	}
	return nil
}

// Release unmaps and closes the file.
func (file *File) Release() error {
	var err error
	if file.m != nil {
		err = file.m.Unmap()
		file.m = nil
	}
	if cerr := file.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	return nil
}
