package nvstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DefaultSize is the image size used when none is configured.
	DefaultSize = 1024

	// Erased is the value of a cell that has never been written.
	Erased byte = 0xFF

	imagePermissions = 0600
	dirPermissions   = 0750
)

// EEPROM is an in-memory EEPROM image, optionally backed by a file.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type EEPROM struct {
	mu     sync.Mutex
	data   []byte
	path   string
	writes int
}

// NewEEPROM returns an erased, memory-only image of size bytes.
func NewEEPROM(size int) *EEPROM {
	data := make([]byte, size)
	for i := range data {
		data[i] = Erased
	}
	return &EEPROM{data: data}
}

// OpenEEPROM loads the image at path, or starts from an erased image when
// the file does not exist yet. Every later write is persisted to path.
//
// Parameters:
//   - path: Image file location
//   - size: Image size in bytes; an existing file must match it
//
// Returns:
//   - *EEPROM: Loaded image
//   - error: ErrImageSize on a size mismatch, or the read error
func OpenEEPROM(path string, size int) (*EEPROM, error) {
	e := NewEEPROM(size)
	e.path = path

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return e, nil
	case err != nil:
		return nil, fmt.Errorf("reading EEPROM image: %w", err)
	case len(raw) != size:
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrImageSize, path, len(raw), size)
	}

	copy(e.data, raw)
	return e, nil
}

// Size returns the image size in bytes.
func (e *EEPROM) Size() int {
	return len(e.data)
}

// Path returns the backing file, or "" for a memory-only image.
func (e *EEPROM) Path() string {
	return e.path
}

// Writes returns the number of cells physically written since creation.
// Updates that match the current contents do not count.
func (e *EEPROM) Writes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writes
}

// ByteAt returns the cell at addr.
func (e *EEPROM) ByteAt(addr int) (byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.check(addr, 1); err != nil {
		return 0, err
	}
	return e.data[addr], nil
}

// ReadBlock returns a copy of n cells starting at addr.
func (e *EEPROM) ReadBlock(addr, n int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.check(addr, n); err != nil {
		return nil, err
	}
	return bytes.Clone(e.data[addr : addr+n]), nil
}

// UpdateByte writes v at addr unless the cell already holds v.
func (e *EEPROM) UpdateByte(addr int, v byte) error {
	return e.UpdateBlock(addr, []byte{v})
}

// UpdateBlock writes src at addr, skipping cells that already match. The
// backing file is rewritten only when at least one cell changed.
func (e *EEPROM) UpdateBlock(addr int, src []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.check(addr, len(src)); err != nil {
		return err
	}

	changed := 0
	for i, v := range src {
		if e.data[addr+i] != v {
			e.data[addr+i] = v
			changed++
		}
	}
	if changed == 0 {
		return nil
	}
	e.writes += changed
	return e.persist()
}

// Word returns a 32-bit little-endian view at addr that implements
// pinauth.WordStore.
func (e *EEPROM) Word(addr int) *Word {
	return &Word{image: e, addr: addr}
}

func (e *EEPROM) check(addr, n int) error {
	if addr < 0 || n < 0 || addr+n > len(e.data) {
		return fmt.Errorf("%w: [%#04x, %#04x) outside %d bytes", ErrOutOfRange, addr, addr+n, len(e.data))
	}
	return nil
}

// persist writes the image to a temp file next to path and renames it into
// place, so a crash never leaves a truncated image. Callers hold e.mu.
func (e *EEPROM) persist() error {
	if e.path == "" {
		return nil
	}

	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(e.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Gone after a successful rename

	if _, err := tmp.Write(e.data); err != nil {
		tmp.Close() //nolint:errcheck // Already failing
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck // Already failing
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := os.Chmod(tmp.Name(), imagePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := os.Rename(tmp.Name(), e.path); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Word is a 32-bit little-endian word inside an EEPROM image.
type Word struct {
	image *EEPROM
	addr  int
}

// LoadWord reads the word. A word whose four cells are all erased reports
// ok == false.
func (w *Word) LoadWord(_ context.Context) (uint32, bool, error) {
	raw, err := w.image.ReadBlock(w.addr, 4)
	if err != nil {
		return 0, false, err
	}
	if bytes.Equal(raw, []byte{Erased, Erased, Erased, Erased}) {
		return 0, false, nil
	}
	return binary.LittleEndian.Uint32(raw), true, nil
}

// StoreWord writes the word, touching only the bytes that differ.
func (w *Word) StoreWord(_ context.Context, value uint32) error {
	return w.image.UpdateBlock(w.addr, binary.LittleEndian.AppendUint32(nil, value))
}
