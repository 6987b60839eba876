package mmapfile

import (
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/rmind/nxsearch/internal/bin"
)

// hostLittleEndian reports whether the host's native integer byte order
// is little-endian. The data-length/counter fields below are always
// big-endian on disk (§3); on a little-endian host the word a plain
// atomic op loads/stores has to be byte-swapped to match.
var hostLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// LoadLen32 performs an acquire load of a 4-byte big-endian data-length
// field at offset off within base. Used for the terms file's data_length
// header field (§3, §9): a reader observing this value is guaranteed to
// see every byte published at offsets below header_size+value.
func LoadLen32(base []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(base) {
		return 0, bin.ErrShortRegion
	}
	p := (*uint32)(unsafe.Pointer(&base[off]))
	v := atomic.LoadUint32(p)
	if hostLittleEndian {
		v = bits.ReverseBytes32(v)
	}
	return v, nil
}

// StoreLen32 performs a release store of a 4-byte big-endian data-length
// field.
func StoreLen32(base []byte, off int, v uint32) error {
	if off < 0 || off+4 > len(base) {
		return bin.ErrShortRegion
	}
	p := (*uint32)(unsafe.Pointer(&base[off]))
	if hostLittleEndian {
		v = bits.ReverseBytes32(v)
	}
	atomic.StoreUint32(p, v)
	return nil
}

// LoadLen64 performs an acquire load of an 8-byte big-endian data-length
// field, as used by the dtmap file header (§3) and the terms file's
// per-term occurrence counter.
func LoadLen64(base []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(base) {
		return 0, bin.ErrShortRegion
	}
	p := (*uint64)(unsafe.Pointer(&base[off]))
	v := atomic.LoadUint64(p)
	if hostLittleEndian {
		v = bits.ReverseBytes64(v)
	}
	return v, nil
}

// StoreLen64 performs a release store of an 8-byte big-endian
// data-length field.
func StoreLen64(base []byte, off int, v uint64) error {
	if off < 0 || off+8 > len(base) {
		return bin.ErrShortRegion
	}
	p := (*uint64)(unsafe.Pointer(&base[off]))
	if hostLittleEndian {
		v = bits.ReverseBytes64(v)
	}
	atomic.StoreUint64(p, v)
	return nil
}
